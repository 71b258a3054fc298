package bids

import (
	"testing"
	"time"

	"rasoi/models"
)

var ist = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}()

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, ist)
}

func TestComputeBidDeadlineFutureDate(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0)
	tomorrow := at(2026, time.March, 3, 0, 0)

	cases := []struct {
		slot models.DeliverySlotName
		hour int
	}{
		{models.SlotLunch, 10},
		{models.SlotDinner, 16},
		{models.SlotAnytime, 14},
		{models.DeliverySlotName("brunch"), 14}, // unknown slot falls back
	}
	for _, c := range cases {
		got := ComputeBidDeadline(tomorrow, c.slot, now)
		want := at(2026, time.March, 3, c.hour, 0)
		if !got.Equal(want) {
			t.Errorf("slot %s: deadline = %s, want %s", c.slot, got, want)
		}
	}
}

func TestComputeBidDeadlineSameDayFloor(t *testing.T) {
	// lunch cutoff already passed; the window floors at now+2h
	now := at(2026, time.March, 2, 11, 0)
	today := at(2026, time.March, 2, 0, 0)

	got := ComputeBidDeadline(today, models.SlotLunch, now)
	want := now.Add(MinSameDayWindow)
	if !got.Equal(want) {
		t.Fatalf("deadline = %s, want %s", got, want)
	}

	// dinner cutoff still ahead of the floor; the cutoff stands
	got = ComputeBidDeadline(today, models.SlotDinner, now)
	want = at(2026, time.March, 2, 16, 0)
	if !got.Equal(want) {
		t.Fatalf("dinner deadline = %s, want %s", got, want)
	}
}

func TestValidateRequestInput(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0)
	valid := func() *models.CustomMealRequest {
		return &models.CustomMealRequest{
			DishName:     "Litti Chokha",
			Quantity:     2,
			DeliveryDate: at(2026, time.March, 4, 0, 0),
			Budget:       models.Budget{Preferred: 120},
		}
	}

	if err := ValidateRequestInput(valid(), now); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r := valid()
	r.DishName = ""
	if err := ValidateRequestInput(r, now); err == nil {
		t.Error("missing dish name accepted")
	}

	r = valid()
	r.Quantity = 0
	if err := ValidateRequestInput(r, now); err == nil {
		t.Error("zero quantity accepted")
	}

	r = valid()
	r.DeliveryDate = at(2026, time.March, 1, 0, 0)
	if err := ValidateRequestInput(r, now); err == nil {
		t.Error("past delivery date accepted")
	}

	r = valid()
	r.DeliveryDate = at(2026, time.March, 10, 0, 0)
	if err := ValidateRequestInput(r, now); err == nil {
		t.Error("delivery date beyond 7 days accepted")
	}

	// exactly 7 days out is the boundary and stays valid
	r = valid()
	r.DeliveryDate = at(2026, time.March, 9, 0, 0)
	if err := ValidateRequestInput(r, now); err != nil {
		t.Errorf("7-day boundary rejected: %v", err)
	}

	r = valid()
	r.Budget.Preferred = 20
	if err := ValidateRequestInput(r, now); err == nil {
		t.Error("preferred budget below floor accepted")
	}

	// zero preferred budget means "no preference", not "below floor"
	r = valid()
	r.Budget.Preferred = 0
	if err := ValidateRequestInput(r, now); err != nil {
		t.Errorf("unset preferred budget rejected: %v", err)
	}
}

func TestTimeRemaining(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0)
	if got := TimeRemaining(now.Add(90*time.Minute), now); got != 90 {
		t.Errorf("remaining = %d, want 90", got)
	}
	if got := TimeRemaining(now.Add(-time.Hour), now); got != 0 {
		t.Errorf("past deadline remaining = %d, want 0", got)
	}
}

func TestUrgency(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0)
	cases := []struct {
		lead time.Duration
		want string
	}{
		{30 * time.Minute, "high"},
		{60 * time.Minute, "high"},
		{2 * time.Hour, "medium"},
		{5 * time.Hour, "low"},
	}
	for _, c := range cases {
		if got := Urgency(now.Add(c.lead), now); got != c.want {
			t.Errorf("urgency at %v = %s, want %s", c.lead, got, c.want)
		}
	}
}

func TestEffectiveStatusExpiry(t *testing.T) {
	now := at(2026, time.March, 2, 9, 0)
	r := &models.CustomMealRequest{
		Status:    models.RequestBidding,
		ExpiresAt: now.Add(-time.Minute),
	}
	if got := r.EffectiveStatus(now); got != models.RequestExpired {
		t.Errorf("stale bidding request reads %s, want expired", got)
	}

	r.Status = models.RequestAccepted
	if got := r.EffectiveStatus(now); got != models.RequestAccepted {
		t.Errorf("accepted request flipped to %s on expiry", got)
	}

	r.Status = models.RequestOpen
	r.ExpiresAt = now.Add(time.Hour)
	if got := r.EffectiveStatus(now); got != models.RequestOpen {
		t.Errorf("live open request reads %s", got)
	}
}
