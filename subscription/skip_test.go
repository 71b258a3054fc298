package subscription

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"rasoi/models"
	"rasoi/schedule"
	"rasoi/utils"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, schedule.Location())
}

func TestValidateSkipWindow(t *testing.T) {
	now := time.Date(2026, time.March, 2, 15, 0, 0, 0, schedule.Location())

	cases := []struct {
		name string
		meal time.Time
		ok   bool
	}{
		{"yesterday", day(2026, time.March, 1), false},
		{"today", day(2026, time.March, 2), true},
		{"tomorrow", day(2026, time.March, 3), true},
		{"two days out", day(2026, time.March, 4), true},
		{"three days out", day(2026, time.March, 5), false},
		{"a week out", day(2026, time.March, 9), false},
	}
	for _, c := range cases {
		err := ValidateSkipWindow(now, c.meal)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected rejection", c.name)
		}
	}
}

func TestValidateSkipWindowErrorsAreBadRequests(t *testing.T) {
	now := time.Date(2026, time.March, 2, 15, 0, 0, 0, schedule.Location())

	for _, meal := range []time.Time{day(2026, time.March, 1), day(2026, time.March, 7)} {
		err := ValidateSkipWindow(now, meal)
		var apiErr *utils.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
			t.Errorf("meal %s: expected a 400, got %v", meal.Format("2006-01-02"), err)
		}
	}
}

func TestValidateSkipWindowIgnoresTimeOfDay(t *testing.T) {
	// late evening on day N still counts as day N; the window is calendar
	// days, not rolling hours
	now := time.Date(2026, time.March, 2, 23, 59, 0, 0, schedule.Location())
	if err := ValidateSkipWindow(now, day(2026, time.March, 4)); err != nil {
		t.Fatalf("upper boundary rejected: %v", err)
	}
	if err := ValidateSkipWindow(now, day(2026, time.March, 2)); err != nil {
		t.Fatalf("same-day skip rejected: %v", err)
	}
}

func TestFilterSlotRange(t *testing.T) {
	slots := schedule.Generate(day(2026, time.March, 2), models.ShiftMorning, 10, 10)

	if got := filterSlotRange(slots, time.Time{}, time.Time{}); len(got) != len(slots) {
		t.Fatalf("open range dropped slots: %d of %d", len(got), len(slots))
	}

	start, end := day(2026, time.March, 3), day(2026, time.March, 4)
	got := filterSlotRange(slots, start, end)
	if len(got) == 0 {
		t.Fatal("bounded range returned nothing")
	}
	for _, s := range got {
		if s.Date.Before(start) || s.Date.After(end) {
			t.Errorf("slot %s %s outside [%s, %s]",
				s.Date.Format("2006-01-02"), s.Shift,
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
	}

	// start-only and end-only bounds
	if got := filterSlotRange(slots, start, time.Time{}); got[0].Date.Before(start) {
		t.Error("start-only bound kept an earlier slot")
	}
	if got := filterSlotRange(slots, time.Time{}, end); got[len(got)-1].Date.After(end) {
		t.Error("end-only bound kept a later slot")
	}
}

func TestExhausted(t *testing.T) {
	sub := models.Subscription{
		Status:     models.SubscriptionActive,
		MealCounts: models.MealCounts{TotalMeals: 10, Delivered: 4, Skipped: 6},
	}
	if !exhausted(sub) {
		t.Error("active subscription with zero meals remaining should read exhausted")
	}

	sub.MealCounts.MealsRemaining = 1
	if exhausted(sub) {
		t.Error("subscription with meals remaining reported exhausted")
	}

	sub.MealCounts.MealsRemaining = 0
	sub.Status = models.SubscriptionCompleted
	if exhausted(sub) {
		t.Error("already-completed subscription reported exhausted")
	}
}
