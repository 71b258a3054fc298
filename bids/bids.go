package bids

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/notify"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type createBidInput struct {
	RequestID            string    `json:"requestId"`
	Price                float64   `json:"price"`
	Message              string    `json:"message"`
	ProposedDeliveryTime time.Time `json:"proposedDeliveryTime"`
}

// POST /api/bids
func CreateBid(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	chefID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input createBidInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.RequestID == "" || input.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "requestId and a positive price are required")
		return
	}

	var req models.CustomMealRequest
	err := db.CustomRequestCollection.FindOne(ctx, bson.M{"requestId": input.RequestID}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Request not found")
		return
	}
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	status := req.EffectiveStatus(now)
	if status != models.RequestOpen && status != models.RequestBidding {
		utils.RespondError(w, utils.BadRequestError("Request is no longer open for bidding"))
		return
	}
	if now.After(req.BidDeadline) {
		utils.RespondError(w, utils.BadRequestError("Bidding deadline has passed"))
		return
	}
	if req.UserID == chefID {
		utils.RespondError(w, utils.BadRequestError("You cannot bid on your own request"))
		return
	}

	bid := models.Bid{
		BidID:                utils.GetUUID(),
		RequestID:            input.RequestID,
		ChefID:               chefID,
		Price:                input.Price,
		Message:              input.Message,
		ProposedDeliveryTime: input.ProposedDeliveryTime,
		Status:               models.BidPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// the unique (requestId, chefId) index backs this against racing inserts
	if _, err := db.BidsCollection.InsertOne(ctx, bid); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondError(w, utils.BadRequestError("You have already bid on this request"))
			return
		}
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create bid")
		return
	}

	// first bid moves the request into bidding; no-op for later bids
	if _, err := db.CustomRequestCollection.UpdateOne(ctx,
		bson.M{"requestId": input.RequestID, "status": models.RequestOpen},
		bson.M{"$set": bson.M{"status": models.RequestBidding, "updatedAt": now}},
	); err != nil {
		log.Printf("status flip failed: %v", err)
	}

	if err := notify.Notify(ctx, req.UserID, "new_bid",
		"New bid received",
		"A kitchen offered your "+req.DishName,
		utils.M{"requestId": req.RequestID, "bidId": bid.BidID, "price": bid.Price}); err != nil {
		log.Printf("bid notification failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusCreated, utils.M{"bid": bid})
}

// GET /api/bids — the calling chef's bids
func GetMyBids(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	chefID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{"chefId": chefID}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}

	total, err := db.BidsCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := db.BidsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	bidsList := []models.Bid{}
	if err := cur.All(ctx, &bidsList); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode bids")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"bids":       bidsList,
		"pagination": utils.Paginate(total, opts.Page, opts.Limit),
	})
}

// PUT /api/bids/:id/accept
//
// Accepting is all-or-nothing: the bid flips to accepted, every other
// pending bid on the request flips to rejected, the request records the
// winner, and the order is materialized — in one transaction. The bid flip
// itself is a conditional write on status=pending, so two racing accepts
// yield exactly one winner.
func AcceptBid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	bidID := ps.ByName("id")
	now := time.Now()

	var bid models.Bid
	var order models.Order

	session, err := db.Client.StartSession()
	if err != nil {
		log.Printf("session error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := db.BidsCollection.FindOne(sc, bson.M{"bidId": bidID}).Decode(&bid); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, utils.NotFoundError("Bid not found")
			}
			return nil, err
		}

		var req models.CustomMealRequest
		if err := db.CustomRequestCollection.FindOne(sc, bson.M{"requestId": bid.RequestID}).Decode(&req); err != nil {
			return nil, err
		}
		if req.UserID != userID {
			return nil, utils.ForbiddenError("Only the requester can accept a bid")
		}
		if !models.CanTransitionRequest(req.Status, models.RequestAccepted) {
			return nil, utils.BadRequestError("Request is not open for acceptance")
		}

		res, err := db.BidsCollection.UpdateOne(sc,
			bson.M{"bidId": bidID, "status": models.BidPending},
			bson.M{"$set": bson.M{"status": models.BidAccepted, "updatedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount == 0 {
			return nil, utils.NotFoundError("Bid not found or already processed")
		}

		if _, err := db.BidsCollection.UpdateMany(sc,
			bson.M{"requestId": bid.RequestID, "bidId": bson.M{"$ne": bidID}, "status": models.BidPending},
			bson.M{"$set": bson.M{"status": models.BidRejected, "updatedAt": now}},
		); err != nil {
			return nil, err
		}

		if _, err := db.CustomRequestCollection.UpdateOne(sc,
			bson.M{"requestId": bid.RequestID},
			bson.M{"$set": bson.M{
				"status":      models.RequestAccepted,
				"acceptedBid": bidID,
				"chefId":      bid.ChefID,
				"updatedAt":   now,
			}},
		); err != nil {
			return nil, err
		}

		order = models.Order{
			OrderID:      utils.GetUUID(),
			UserID:       req.UserID,
			SellerID:     bid.ChefID,
			Source:       models.OrderFromBid,
			RequestID:    req.RequestID,
			BidID:        bidID,
			Date:         req.DeliveryDate,
			Amount:       bid.Price,
			DeliveryCode: utils.GenerateRandomDigitString(8),
			Status:       "created",
			CreatedAt:    now,
		}
		if _, err := db.OrdersCollection.InsertOne(sc, order); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if err := notify.Notify(ctx, bid.ChefID, "bid_accepted",
		"Your bid was accepted",
		"Start preparing — the customer picked your offer",
		utils.M{"requestId": bid.RequestID, "bidId": bidID, "orderId": order.OrderID}); err != nil {
		log.Printf("winner notification failed: %v", err)
	}

	bid.Status = models.BidAccepted
	utils.RespondSuccess(w, http.StatusOK, utils.M{"bid": bid, "order": order})
}

// PUT /api/bids/:id/reject
func RejectBid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	bidID := ps.ByName("id")
	now := time.Now()

	var bid models.Bid
	if err := db.BidsCollection.FindOne(ctx, bson.M{"bidId": bidID}).Decode(&bid); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Bid not found")
		return
	}

	var req models.CustomMealRequest
	if err := db.CustomRequestCollection.FindOne(ctx, bson.M{"requestId": bid.RequestID}).Decode(&req); err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if req.UserID != userID {
		utils.RespondError(w, utils.ForbiddenError("Only the requester can reject a bid"))
		return
	}

	res, err := db.BidsCollection.UpdateOne(ctx,
		bson.M{"bidId": bidID, "status": models.BidPending},
		bson.M{"$set": bson.M{"status": models.BidRejected, "updatedAt": now}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondError(w, utils.NotFoundError("Bid not found or already processed"))
		return
	}

	if err := notify.Notify(ctx, bid.ChefID, "bid_rejected",
		"Bid not selected",
		"The customer declined your offer",
		utils.M{"requestId": bid.RequestID, "bidId": bidID}); err != nil {
		log.Printf("reject notification failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{"bidId": bidID, "status": models.BidRejected})
}

// PUT /api/bids/:id/withdraw
func WithdrawBid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	chefID := utils.GetUserIDFromRequest(r)
	bidID := ps.ByName("id")
	now := time.Now()

	var bid models.Bid
	if err := db.BidsCollection.FindOne(ctx, bson.M{"bidId": bidID}).Decode(&bid); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Bid not found")
		return
	}
	if bid.ChefID != chefID {
		utils.RespondError(w, utils.ForbiddenError("Only the bidding chef can withdraw"))
		return
	}

	res, err := db.BidsCollection.UpdateOne(ctx,
		bson.M{"bidId": bidID, "status": models.BidPending},
		bson.M{"$set": bson.M{"status": models.BidWithdrawn, "updatedAt": now}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondError(w, utils.NotFoundError("Bid not found or already processed"))
		return
	}

	var req models.CustomMealRequest
	if err := db.CustomRequestCollection.FindOne(ctx, bson.M{"requestId": bid.RequestID}).Decode(&req); err == nil {
		if err := notify.Notify(ctx, req.UserID, "bid_withdrawn",
			"A bid was withdrawn",
			"A kitchen withdrew its offer on "+req.DishName,
			utils.M{"requestId": bid.RequestID, "bidId": bidID}); err != nil {
			log.Printf("withdraw notification failed: %v", err)
		}
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{"bidId": bidID, "status": models.BidWithdrawn})
}
