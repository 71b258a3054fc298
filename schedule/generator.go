// Package schedule computes the full delivery slot list for a subscription at
// creation time. The generator is deterministic and does no I/O.
package schedule

import (
	"time"

	"rasoi/models"
)

// TimezoneName is the single named zone all schedules are computed in.
const TimezoneName = "Asia/Kolkata"

// safetyMargin bounds the day walk past durationDays so a bad input can never
// loop forever. Hitting it is an anomaly, not a business rule.
const safetyMargin = 5

var tz = loadZone()

func loadZone() *time.Location {
	loc, err := time.LoadLocation(TimezoneName)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// Location is the schedule zone. Handlers parse user-supplied dates in it so
// a server running in another zone cannot shift them across a day boundary.
func Location() *time.Location { return tz }

// Midnight normalizes t to 00:00 in the schedule zone.
func Midnight(t time.Time) time.Time {
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// Generate walks forward one day at a time from startDate and allocates
// exactly totalMeals slots, two per day (morning, evening), honoring two
// domain rules: no evening delivery on Sundays, and the first day starts on
// whichever shift the customer picked. Sunday mornings are flagged special
// (lunch-only thali). ThaliNumber is the 1-based running meal count.
//
// The returned list can be shorter than totalMeals only when the safety cap
// is hit; callers should log that case.
func Generate(startDate time.Time, startShift models.Shift, durationDays, totalMeals int) []models.DeliverySlot {
	slots := make([]models.DeliverySlot, 0, totalMeals)
	mealsRemaining := totalMeals
	cursor := Midnight(startDate)

	for day := 0; mealsRemaining > 0 && day < durationDays+safetyMargin; day++ {
		isSunday := cursor.Weekday() == time.Sunday

		// morning slot: suppressed only when the customer starts on evening
		skipMorning := day == 0 && startShift == models.ShiftEvening
		if !skipMorning && mealsRemaining > 0 {
			slots = append(slots, models.DeliverySlot{
				Date:        cursor,
				Shift:       models.ShiftMorning,
				IsSunday:    isSunday,
				IsSpecial:   isSunday,
				ThaliNumber: totalMeals - mealsRemaining + 1,
			})
			mealsRemaining--
		}

		// evening slot: never delivered on Sundays
		if !isSunday && mealsRemaining > 0 {
			slots = append(slots, models.DeliverySlot{
				Date:        cursor,
				Shift:       models.ShiftEvening,
				IsSunday:    false,
				ThaliNumber: totalMeals - mealsRemaining + 1,
			})
			mealsRemaining--
		}

		cursor = cursor.AddDate(0, 0, 1)
	}

	return slots
}

// Span returns the first and last delivery dates of a generated schedule.
// Subscription duration derives from these, not from an independent input.
func Span(slots []models.DeliverySlot) (first, last time.Time) {
	if len(slots) == 0 {
		return
	}
	return slots[0].Date, slots[len(slots)-1].Date
}
