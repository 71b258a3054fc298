package schedule

import (
	"testing"
	"time"

	"rasoi/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, tz)
}

func TestGenerateAllocatesExactMealCount(t *testing.T) {
	// Monday start
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 20, 30)
	if len(slots) != 30 {
		t.Fatalf("expected 30 slots, got %d", len(slots))
	}
	for i, s := range slots {
		if s.ThaliNumber != i+1 {
			t.Errorf("slot %d: thali number = %d, want %d", i, s.ThaliNumber, i+1)
		}
	}
}

func TestGenerateNoSundayEvenings(t *testing.T) {
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 60, 90)
	for _, s := range slots {
		if s.Date.Weekday() == time.Sunday && s.Shift == models.ShiftEvening {
			t.Fatalf("Sunday evening slot generated on %s", s.Date.Format("2006-01-02"))
		}
	}
}

func TestGenerateSundayMorningsAreSpecial(t *testing.T) {
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 60, 90)
	seenSunday := false
	for _, s := range slots {
		if s.Date.Weekday() == time.Sunday {
			seenSunday = true
			if !s.IsSunday || !s.IsSpecial {
				t.Errorf("Sunday morning on %s not flagged special", s.Date.Format("2006-01-02"))
			}
		} else if s.IsSunday || s.IsSpecial {
			t.Errorf("weekday slot on %s flagged as Sunday", s.Date.Format("2006-01-02"))
		}
	}
	if !seenSunday {
		t.Fatal("schedule never crossed a Sunday")
	}
}

func TestGenerateSaturdayStartThreeMeals(t *testing.T) {
	// 2026-03-07 is a Saturday
	slots := Generate(date(2026, time.March, 7), models.ShiftMorning, 10, 3)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}

	want := []struct {
		day   int
		shift models.Shift
	}{
		{7, models.ShiftMorning},
		{7, models.ShiftEvening},
		{8, models.ShiftMorning}, // Sunday, evening suppressed
	}
	for i, w := range want {
		if slots[i].Date.Day() != w.day || slots[i].Shift != w.shift {
			t.Errorf("slot %d = %s %s, want day %d %s",
				i, slots[i].Date.Format("2006-01-02"), slots[i].Shift, w.day, w.shift)
		}
	}
	if !slots[2].IsSpecial {
		t.Error("Sunday morning slot should be special")
	}
}

func TestGenerateEveningStartSkipsFirstMorning(t *testing.T) {
	// Monday start on the evening shift
	slots := Generate(date(2026, time.March, 2), models.ShiftEvening, 10, 4)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if slots[0].Shift != models.ShiftEvening || slots[0].Date.Day() != 2 {
		t.Fatalf("first slot = %s %s, want Mar 2 evening",
			slots[0].Date.Format("2006-01-02"), slots[0].Shift)
	}
	if slots[1].Shift != models.ShiftMorning || slots[1].Date.Day() != 3 {
		t.Fatalf("second slot = %s %s, want Mar 3 morning",
			slots[1].Date.Format("2006-01-02"), slots[1].Shift)
	}
}

func TestGenerateSundayEveningStart(t *testing.T) {
	// 2026-03-08 is a Sunday: morning skipped (evening start) and evening
	// suppressed (Sunday), so day zero yields nothing.
	slots := Generate(date(2026, time.March, 8), models.ShiftEvening, 10, 2)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Date.Day() != 9 || slots[0].Shift != models.ShiftMorning {
		t.Fatalf("first slot = %s %s, want Mar 9 morning",
			slots[0].Date.Format("2006-01-02"), slots[0].Shift)
	}
}

func TestGenerateSingleMeal(t *testing.T) {
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 10, 1)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Shift != models.ShiftMorning || slots[0].ThaliNumber != 1 {
		t.Fatalf("unexpected slot: %+v", slots[0])
	}
}

func TestGenerateSafetyCap(t *testing.T) {
	// duration far too small for the meal count; walk stops at the cap
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 2, 100)
	if len(slots) >= 100 {
		t.Fatalf("expected truncated schedule, got %d slots", len(slots))
	}
}

func TestSpan(t *testing.T) {
	slots := Generate(date(2026, time.March, 2), models.ShiftMorning, 10, 6)
	first, last := Span(slots)
	if !first.Equal(date(2026, time.March, 2)) {
		t.Errorf("first = %s, want Mar 2", first.Format("2006-01-02"))
	}
	if !last.Equal(slots[len(slots)-1].Date) {
		t.Errorf("last = %s, want %s", last.Format("2006-01-02"),
			slots[len(slots)-1].Date.Format("2006-01-02"))
	}

	first, last = Span(nil)
	if !first.IsZero() || !last.IsZero() {
		t.Error("empty schedule should span zero times")
	}
}

func TestParsedDatesStayOnTheirDay(t *testing.T) {
	// dates parsed in Location never shift across a day boundary under
	// Midnight, whatever zone the host runs in
	parsed, err := time.ParseInLocation("2006-01-02", "2026-03-02", Location())
	if err != nil {
		t.Fatal(err)
	}
	if !Midnight(parsed).Equal(date(2026, time.March, 2)) {
		t.Fatalf("midnight of parsed date = %s", Midnight(parsed))
	}
}

func TestMidnightNormalizes(t *testing.T) {
	noon := time.Date(2026, time.March, 2, 12, 30, 0, 0, tz)
	m := Midnight(noon)
	if m.Hour() != 0 || m.Minute() != 0 || m.Day() != 2 {
		t.Fatalf("midnight = %s", m)
	}
}
