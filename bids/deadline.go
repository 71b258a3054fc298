package bids

import (
	"time"

	"rasoi/models"
	"rasoi/schedule"
	"rasoi/utils"
)

// Bidding cutoffs keyed by requested delivery slot, as time of day on the
// delivery date.
var slotCutoffHour = map[models.DeliverySlotName]int{
	models.SlotLunch:   10,
	models.SlotDinner:  16,
	models.SlotAnytime: 14,
}

// MinSameDayWindow is the shortest bidding window a same-day request gets,
// even when the slot's nominal cutoff has already passed.
const MinSameDayWindow = 2 * time.Hour

// ExpiryGrace is how long after the deadline a request stays readable before
// it reads as expired.
const ExpiryGrace = time.Hour

// MinPreferredBudget is the floor for budget.preferred, in currency units.
const MinPreferredBudget = 50.0

// MaxBroadcastRadiusKm caps how far a broadcast request reaches.
const MaxBroadcastRadiusKm = 25.0

// ComputeBidDeadline places the deadline at the slot cutoff on the delivery
// date, raised to now+2h for same-day requests so there is always a bidding
// window.
func ComputeBidDeadline(deliveryDate time.Time, slot models.DeliverySlotName, now time.Time) time.Time {
	hour, ok := slotCutoffHour[slot]
	if !ok {
		hour = slotCutoffHour[models.SlotAnytime]
	}
	day := schedule.Midnight(deliveryDate)
	deadline := day.Add(time.Duration(hour) * time.Hour)

	if schedule.Midnight(now).Equal(day) {
		if floor := now.Add(MinSameDayWindow); floor.After(deadline) {
			deadline = floor
		}
	}
	return deadline
}

// ValidateRequestInput checks the pre-mutation business rules for a new
// custom meal request.
func ValidateRequestInput(req *models.CustomMealRequest, now time.Time) error {
	if req.DishName == "" {
		return utils.ValidationError("Dish name is required")
	}
	if req.Quantity < 1 {
		return utils.ValidationError("Quantity must be at least 1")
	}

	today := schedule.Midnight(now)
	day := schedule.Midnight(req.DeliveryDate)
	if day.Before(today) {
		return utils.ValidationError("Delivery date cannot be in the past")
	}
	if day.After(today.AddDate(0, 0, 7)) {
		return utils.ValidationError("Delivery date must be within the next 7 days")
	}

	if req.Budget.Preferred != 0 && req.Budget.Preferred < MinPreferredBudget {
		return utils.ValidationError("Preferred budget must be at least 50")
	}
	return nil
}

// TimeRemaining reports whole minutes until the bid deadline, floored at 0.
func TimeRemaining(deadline, now time.Time) int {
	mins := int(deadline.Sub(now).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// Urgency buckets time remaining for sort tie-breaking on the seller feed.
func Urgency(deadline, now time.Time) string {
	mins := TimeRemaining(deadline, now)
	switch {
	case mins <= 60:
		return "high"
	case mins <= 180:
		return "medium"
	default:
		return "low"
	}
}

func urgencyScore(u string) int {
	switch u {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}
