package bids

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/notify"
	"rasoi/ratelim"
	"rasoi/schedule"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createRequestInput struct {
	DishName            string        `json:"dishName"`
	Category            string        `json:"category"`
	Quantity            int           `json:"quantity"`
	SpiceLevel          string        `json:"spiceLevel"`
	DietaryRestrictions []string      `json:"dietaryRestrictions"`
	Budget              models.Budget `json:"budget"`
	DeliveryDate        string        `json:"deliveryDate"` // YYYY-MM-DD
	DeliverySlot        string        `json:"deliverySlot"`
	TargetSellers       []string      `json:"targetSellers"`
	BroadcastRadius     float64       `json:"broadcastRadius"`
	AddOns              []string      `json:"addOns"`
}

// POST /api/custom-requests
func CreateRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input createRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	deliveryDate, err := time.ParseInLocation("2006-01-02", input.DeliveryDate, schedule.Location())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid delivery date, expected YYYY-MM-DD")
		return
	}

	req := models.CustomMealRequest{
		RequestID:           utils.GetUUID(),
		UserID:              userID,
		DishName:            input.DishName,
		Category:            input.Category,
		Quantity:            input.Quantity,
		SpiceLevel:          input.SpiceLevel,
		DietaryRestrictions: input.DietaryRestrictions,
		Budget:              input.Budget,
		DeliveryDate:        schedule.Midnight(deliveryDate),
		DeliverySlot:        models.DeliverySlotName(input.DeliverySlot),
		TargetSellers:       input.TargetSellers,
		BroadcastRadius:     input.BroadcastRadius,
		AddOns:              input.AddOns,
		Status:              models.RequestOpen,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.DeliverySlot == "" {
		req.DeliverySlot = models.SlotAnytime
	}
	if req.BroadcastRadius > MaxBroadcastRadiusKm {
		req.BroadcastRadius = MaxBroadcastRadiusKm
	}

	if err := ValidateRequestInput(&req, now); err != nil {
		utils.RespondError(w, err)
		return
	}

	// daily cap, bounded to the calendar day
	count, err := db.CustomRequestCollection.CountDocuments(ctx, bson.M{
		"userId":    userID,
		"createdAt": bson.M{"$gte": schedule.Midnight(now)},
	})
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count >= ratelim.DailyRequestCap {
		utils.RespondError(w, utils.RateLimitError("Daily custom request limit reached"))
		return
	}

	req.BidDeadline = ComputeBidDeadline(req.DeliveryDate, req.DeliverySlot, now)
	req.ExpiresAt = req.BidDeadline.Add(ExpiryGrace)

	sellers, err := resolveTargets(ctx, &req)
	if err != nil {
		log.Printf("target resolution failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve sellers")
		return
	}

	if _, err := db.CustomRequestCollection.InsertOne(ctx, req); err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create request")
		return
	}

	notified := notify.FanOut(ctx, sellers, "new_custom_request",
		"New custom meal request",
		req.DishName+" requested for "+req.DeliveryDate.Format("Jan 2"),
		utils.M{"requestId": req.RequestID, "bidDeadline": req.BidDeadline},
	)

	if err := notify.Notify(ctx, userID, "request_created",
		"Request sent to kitchens",
		"Your request is open for bids until "+req.BidDeadline.Format("3:04 PM"),
		utils.M{"requestId": req.RequestID}); err != nil {
		log.Printf("requester confirmation failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusCreated, utils.M{
		"request":             req,
		"restaurantsNotified": notified,
		"timeRemaining":       TimeRemaining(req.BidDeadline, now),
	})
}

// GET /api/custom-requests
func GetMyRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)
	now := time.Now()

	filter := bson.M{"userId": userID}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	total, err := db.CustomRequestCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := db.CustomRequestCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	requests := []bson.M{}
	for cur.Next(ctx) {
		var req models.CustomMealRequest
		if err := cur.Decode(&req); err != nil {
			continue
		}
		row := bson.M{
			"request":       req,
			"status":        req.EffectiveStatus(now),
			"timeRemaining": TimeRemaining(req.BidDeadline, now),
		}
		requests = append(requests, row)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"requests":   requests,
		"pagination": utils.Paginate(total, opts.Page, opts.Limit),
	})
}

// GET /api/custom-requests/:id — requester view with all bids
func GetRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	var req models.CustomMealRequest
	err := db.CustomRequestCollection.FindOne(ctx, bson.M{
		"requestId": ps.ByName("id"),
		"userId":    userID,
	}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	cur, err := db.BidsCollection.Find(ctx, bson.M{"requestId": req.RequestID},
		options.Find().SetSort(bson.M{"price": 1}))
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	bids := []models.Bid{}
	if err := cur.All(ctx, &bids); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode bids")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"request": req,
		"status":  req.EffectiveStatus(time.Now()),
		"bids":    bids,
	})
}

// PUT /api/custom-requests/:id/cancel
func CancelRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	requestID := ps.ByName("id")
	now := time.Now()

	var body struct {
		Reason string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	var affectedChefs []string

	session, err := db.Client.StartSession()
	if err != nil {
		log.Printf("session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var req models.CustomMealRequest
		if err := db.CustomRequestCollection.FindOne(sc, bson.M{
			"requestId": requestID,
			"userId":    userID,
		}).Decode(&req); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NotFoundError("Request not found")
			}
			return nil, err
		}

		if !models.CanTransitionRequest(req.Status, models.RequestCancelled) {
			return nil, utils.BadRequestError("Request cannot be cancelled in its current status")
		}
		accepted, err := db.BidsCollection.CountDocuments(sc, bson.M{
			"requestId": requestID,
			"status":    models.BidAccepted,
		})
		if err != nil {
			return nil, err
		}
		if accepted > 0 {
			return nil, utils.BadRequestError("Cannot cancel a request with an accepted bid")
		}
		if now.After(req.BidDeadline) {
			return nil, utils.BadRequestError("Bidding deadline has passed")
		}

		cur, err := db.BidsCollection.Find(sc, bson.M{
			"requestId": requestID,
			"status":    models.BidPending,
		})
		if err != nil {
			return nil, err
		}
		for cur.Next(sc) {
			var b models.Bid
			if cur.Decode(&b) == nil {
				affectedChefs = append(affectedChefs, b.ChefID)
			}
		}
		cur.Close(sc)

		if _, err := db.CustomRequestCollection.UpdateOne(sc,
			bson.M{"requestId": requestID},
			bson.M{"$set": bson.M{
				"status":       models.RequestCancelled,
				"cancelReason": body.Reason,
				"updatedAt":    now,
			}},
		); err != nil {
			return nil, err
		}

		if _, err := db.BidsCollection.UpdateMany(sc,
			bson.M{"requestId": requestID, "status": models.BidPending},
			bson.M{"$set": bson.M{"status": models.BidWithdrawn, "updatedAt": now}},
		); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	notify.FanOut(ctx, affectedChefs, "request_cancelled",
		"Request cancelled",
		"A custom meal request you bid on was cancelled by the customer",
		utils.M{"requestId": requestID, "reason": body.Reason},
	)

	utils.RespondSuccess(w, http.StatusOK, utils.M{"requestId": requestID, "status": models.RequestCancelled})
}

// POST /api/custom-requests/:id/addons
func AddAddon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	var body struct {
		Addon string `json:"addon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Addon == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Addon name is required")
		return
	}

	// addon changes are legal only while the request is still open
	res, err := db.CustomRequestCollection.UpdateOne(ctx,
		bson.M{"requestId": ps.ByName("id"), "userId": userID, "status": models.RequestOpen},
		bson.M{"$addToSet": bson.M{"addOns": body.Addon}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("Addons can only be changed while the request is open"))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"addon": body.Addon})
}

// DELETE /api/custom-requests/:id/addons/:addon
func RemoveAddon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	res, err := db.CustomRequestCollection.UpdateOne(ctx,
		bson.M{"requestId": ps.ByName("id"), "userId": userID, "status": models.RequestOpen},
		bson.M{"$pull": bson.M{"addOns": ps.ByName("addon")}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("Addons can only be changed while the request is open"))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"removed": ps.ByName("addon")})
}
