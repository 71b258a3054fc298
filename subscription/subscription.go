package subscription

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/notify"
	"rasoi/pay"
	"rasoi/schedule"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createSubscriptionInput struct {
	PlanID     string `json:"planId"`
	StartDate  string `json:"startDate"` // YYYY-MM-DD
	StartShift string `json:"startShift"`
	TotalMeals int    `json:"totalMeals"` // optional, defaults to plan meals/day * 30
}

// POST /api/subscriptions
//
// The full delivery schedule is generated synchronously before the payment
// order exists; subscription insert, payment-order insert, and the user's
// active flag move in one transaction.
func CreateSubscription(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input createSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	startDate, err := time.ParseInLocation("2006-01-02", input.StartDate, schedule.Location())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	if schedule.Midnight(startDate).Before(schedule.Midnight(now)) {
		utils.RespondError(w, utils.ValidationError("Start date cannot be in the past"))
		return
	}

	startShift := models.Shift(input.StartShift)
	if startShift != models.ShiftMorning && startShift != models.ShiftEvening && startShift != models.ShiftBoth {
		utils.RespondError(w, utils.ValidationError("startShift must be morning, evening or both"))
		return
	}

	var plan models.MealPlan
	err = db.MealPlansCollection.FindOne(ctx, bson.M{"planId": input.PlanID, "active": true}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Meal plan not found")
		return
	}
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	totalMeals := input.TotalMeals
	if totalMeals <= 0 {
		totalMeals = plan.MealsPerDay * 30
	}
	mealsPerDay := plan.MealsPerDay
	if mealsPerDay <= 0 {
		mealsPerDay = 2
	}
	// generous walking room; actual duration derives from the schedule
	walkDays := totalMeals/mealsPerDay + totalMeals + 7

	slots := schedule.Generate(startDate, startShift, walkDays, totalMeals)
	if len(slots) < totalMeals {
		log.Printf("schedule generation hit safety cap: subscription for %s got %d of %d meals",
			userID, len(slots), totalMeals)
	}
	first, last := schedule.Span(slots)
	durationDays := int(last.Sub(first).Hours()/24) + 1

	perMeal := plan.PricePerDay / float64(mealsPerDay)
	amount := perMeal * float64(len(slots))

	sub := models.Subscription{
		SubscriptionID: utils.GetUUID(),
		UserID:         userID,
		PlanID:         plan.PlanID,
		SellerID:       plan.SellerID,
		PlanType:       plan.PlanType,
		DurationDays:   durationDays,
		StartDate:      schedule.Midnight(startDate),
		StartShift:     startShift,
		Timezone:       schedule.TimezoneName,
		PerMealPrice:   perMeal,
		MealCounts: models.MealCounts{
			TotalMeals:     len(slots),
			MealsRemaining: len(slots),
		},
		DeliverySchedule: slots,
		Status:           models.SubscriptionPendingPayment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var paymentOrder pay.PaymentOrder

	session, err := db.Client.StartSession()
	if err != nil {
		log.Printf("session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		paymentOrder, err = pay.CreatePaymentOrder(sc, userID, amount, sub.SubscriptionID)
		if err != nil {
			return nil, err
		}
		sub.PaymentOrderID = paymentOrder.OrderID

		if _, err := db.SubscriptionsCollection.InsertOne(sc, sub); err != nil {
			return nil, err
		}
		if _, err := db.UserCollection.UpdateOne(sc,
			bson.M{"userId": userID},
			bson.M{"$set": bson.M{"hasActiveSubscription": true}},
		); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("subscription transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	if err := notify.Notify(ctx, userID, "subscription_created",
		"Subscription created",
		"Complete the payment to start your meal deliveries",
		utils.M{"subscriptionId": sub.SubscriptionID, "paymentOrderId": paymentOrder.OrderID}); err != nil {
		log.Printf("subscription notification failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusCreated, utils.M{
		"subscription": sub,
		"paymentOrder": paymentOrder,
	})
}

type confirmPaymentInput struct {
	PaymentOrderID string `json:"paymentOrderId"`
	PaymentID      string `json:"paymentId"`
	Signature      string `json:"signature"`
}

// POST /api/subscriptions/payment/confirm
func ConfirmPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input confirmPaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !pay.VerifySignature(input.PaymentOrderID, input.PaymentID, input.Signature) {
		utils.RespondError(w, utils.BadRequestError("Invalid payment signature"))
		return
	}

	session, err := db.Client.StartSession()
	if err != nil {
		log.Printf("session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer session.EndSession(ctx)

	var sub models.Subscription
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		ok, err := pay.MarkPaid(sc, input.PaymentOrderID, input.PaymentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.NotFoundError("Payment order not found or already processed")
		}

		if err := db.SubscriptionsCollection.FindOne(sc, bson.M{
			"paymentOrderId": input.PaymentOrderID,
			"userId":         userID,
		}).Decode(&sub); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NotFoundError("Subscription not found")
			}
			return nil, err
		}

		if !models.CanTransitionSubscription(sub.Status, models.SubscriptionActive) {
			return nil, utils.BadRequestError("Subscription cannot be activated in its current status")
		}

		if _, err := db.SubscriptionsCollection.UpdateOne(sc,
			bson.M{"subscriptionId": sub.SubscriptionID},
			bson.M{"$set": bson.M{"status": models.SubscriptionActive, "updatedAt": now}},
		); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if err := notify.Notify(ctx, userID, "subscription_active",
		"Subscription active",
		"Your meal deliveries start on "+sub.StartDate.Format("Jan 2"),
		utils.M{"subscriptionId": sub.SubscriptionID}); err != nil {
		log.Printf("activation notification failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"subscriptionId": sub.SubscriptionID,
		"status":         models.SubscriptionActive,
	})
}

// GET /api/subscriptions
func GetMySubscriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{"userId": userID}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	total, err := db.SubscriptionsCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit)).
		SetProjection(bson.M{"deliverySchedule": 0}) // heavy; fetch via the schedule endpoint

	cur, err := db.SubscriptionsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	subs := []models.Subscription{}
	if err := cur.All(ctx, &subs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode subscriptions")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"subscriptions": subs,
		"pagination":    utils.Paginate(total, opts.Page, opts.Limit),
	})
}

// PUT /api/subscriptions/:id/cancel
func CancelSubscription(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var sub models.Subscription
	if err := db.SubscriptionsCollection.FindOne(ctx, bson.M{
		"subscriptionId": ps.ByName("id"),
		"userId":         userID,
	}).Decode(&sub); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	if !models.CanTransitionSubscription(sub.Status, models.SubscriptionCancelled) {
		utils.RespondError(w, utils.BadRequestError("Subscription cannot be cancelled in its current status"))
		return
	}

	session, err := db.Client.StartSession()
	if err != nil {
		log.Printf("session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := db.SubscriptionsCollection.UpdateOne(sc,
			bson.M{"subscriptionId": sub.SubscriptionID, "status": sub.Status},
			bson.M{"$set": bson.M{"status": models.SubscriptionCancelled, "updatedAt": now}},
		); err != nil {
			return nil, err
		}
		if _, err := db.UserCollection.UpdateOne(sc,
			bson.M{"userId": userID},
			bson.M{"$set": bson.M{"hasActiveSubscription": false}},
		); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("cancel transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel subscription")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"subscriptionId": sub.SubscriptionID,
		"status":         models.SubscriptionCancelled,
	})
}
