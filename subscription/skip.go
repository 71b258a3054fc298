package subscription

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/schedule"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SkipNoticeDays is how far ahead a meal may be skipped.
const SkipNoticeDays = 2

// ValidateSkipWindow enforces the skip window: a meal can be skipped from
// today up to two calendar days ahead, never retroactively.
func ValidateSkipWindow(now, mealDate time.Time) error {
	today := schedule.Midnight(now)
	day := schedule.Midnight(mealDate)
	if day.Before(today) {
		return utils.BadRequestError("Past meals cannot be skipped")
	}
	if day.After(today.AddDate(0, 0, SkipNoticeDays)) {
		return utils.BadRequestError("Meals can only be skipped up to 2 days in advance")
	}
	return nil
}

type skipMealInput struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Shift  string `json:"shift"`
	Reason string `json:"reason"`
}

// PUT /api/subscriptions/:id/skip
//
// The slot flip, count adjustment, and skipped-meals append ride a single
// update whose filter pins the exact slot; a second skip of the same slot
// matches nothing.
func SkipMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input skipMealInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mealDate, err := time.ParseInLocation("2006-01-02", input.Date, schedule.Location())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	shift := models.Shift(input.Shift)
	if shift != models.ShiftMorning && shift != models.ShiftEvening {
		utils.RespondError(w, utils.ValidationError("shift must be morning or evening"))
		return
	}
	if err := ValidateSkipWindow(now, mealDate); err != nil {
		utils.RespondError(w, err)
		return
	}

	day := schedule.Midnight(mealDate)
	filter := bson.M{
		"subscriptionId": ps.ByName("id"),
		"userId":         userID,
		"status":         models.SubscriptionActive,
		"deliverySchedule": bson.M{"$elemMatch": bson.M{
			"date":      day,
			"shift":     shift,
			"isSkipped": false,
			"delivered": false,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"deliverySchedule.$[slot].isSkipped":  true,
			"deliverySchedule.$[slot].skipReason": input.Reason,
			"deliverySchedule.$[slot].skippedAt":  now,
			"updatedAt":                           now,
		},
		"$inc": bson.M{
			"mealCounts.skipped":        1,
			"mealCounts.mealsRemaining": -1,
		},
		"$push": bson.M{
			"skippedMeals": models.SkippedMeal{
				Date:      day,
				Shift:     shift,
				Reason:    input.Reason,
				SkippedAt: now,
			},
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"slot.date":      day,
			"slot.shift":     shift,
			"slot.isSkipped": false,
		}},
	})

	res, err := db.SubscriptionsCollection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		log.Printf("skip update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to skip meal")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("No delivery found for the specified date and shift"))
		return
	}

	var sub models.Subscription
	if err := db.SubscriptionsCollection.FindOne(ctx, bson.M{"subscriptionId": ps.ByName("id")}).Decode(&sub); err != nil {
		log.Printf("skip reload failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// a skip can exhaust the subscription just like a delivery can
	if err := completeIfExhausted(ctx, &sub); err != nil {
		log.Printf("completion check failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"subscriptionId": sub.SubscriptionID,
		"mealCounts":     sub.MealCounts,
		"skipped":        utils.M{"date": input.Date, "shift": shift},
	})
}

// PUT /api/subscriptions/:id/resume
//
// Undoes a skip before the advance-notice window closes.
func ResumeMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input skipMealInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	mealDate, err := time.ParseInLocation("2006-01-02", input.Date, schedule.Location())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	shift := models.Shift(input.Shift)
	if shift != models.ShiftMorning && shift != models.ShiftEvening {
		utils.RespondError(w, utils.ValidationError("shift must be morning or evening"))
		return
	}
	if err := ValidateSkipWindow(now, mealDate); err != nil {
		utils.RespondError(w, err)
		return
	}

	day := schedule.Midnight(mealDate)
	filter := bson.M{
		"subscriptionId": ps.ByName("id"),
		"userId":         userID,
		"status":         models.SubscriptionActive,
		"deliverySchedule": bson.M{"$elemMatch": bson.M{
			"date":      day,
			"shift":     shift,
			"isSkipped": true,
			"delivered": false,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"deliverySchedule.$[slot].isSkipped": false,
			"updatedAt":                          now,
		},
		"$unset": bson.M{
			"deliverySchedule.$[slot].skipReason": "",
			"deliverySchedule.$[slot].skippedAt":  "",
		},
		"$inc": bson.M{
			"mealCounts.skipped":        -1,
			"mealCounts.mealsRemaining": 1,
		},
		"$pull": bson.M{
			"skippedMeals": bson.M{"date": day, "shift": shift},
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"slot.date":      day,
			"slot.shift":     shift,
			"slot.isSkipped": true,
		}},
	})

	res, err := db.SubscriptionsCollection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		log.Printf("resume update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to resume meal")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("No skipped delivery found for the specified date and shift"))
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"resumed": utils.M{"date": input.Date, "shift": shift},
	})
}

type scheduleDay struct {
	Date  string                `json:"date"`
	Slots []models.DeliverySlot `json:"slots"`
}

// filterSlotRange narrows a schedule to [start, end]; a zero bound is open.
func filterSlotRange(slots []models.DeliverySlot, start, end time.Time) []models.DeliverySlot {
	out := make([]models.DeliverySlot, 0, len(slots))
	for _, s := range slots {
		if !start.IsZero() && s.Date.Before(start) {
			continue
		}
		if !end.IsZero() && s.Date.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GET /api/subscriptions/:id/schedule?start=YYYY-MM-DD&end=YYYY-MM-DD
func GetDeliverySchedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	var start, end time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, schedule.Location())
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		start = schedule.Midnight(parsed)
	}
	if s := r.URL.Query().Get("end"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, schedule.Location())
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		end = schedule.Midnight(parsed)
	}

	var sub models.Subscription
	if err := db.SubscriptionsCollection.FindOne(ctx, bson.M{
		"subscriptionId": ps.ByName("id"),
		"userId":         userID,
	}).Decode(&sub); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	byDate := map[string][]models.DeliverySlot{}
	for _, slot := range filterSlotRange(sub.DeliverySchedule, start, end) {
		key := slot.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], slot)
	}
	days := make([]scheduleDay, 0, len(byDate))
	for date, slots := range byDate {
		days = append(days, scheduleDay{Date: date, Slots: slots})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"subscriptionId": sub.SubscriptionID,
		"status":         sub.Status,
		"mealCounts":     sub.MealCounts,
		"schedule":       days,
	})
}
