package orders

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func listOrders(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx := r.Context()
	opts := utils.ParseQueryOptions(r)

	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	if src := r.URL.Query().Get("source"); src != "" {
		filter["source"] = src
	}

	total, err := db.OrdersCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := db.OrdersCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	list := []models.Order{}
	if err := cur.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode orders")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"orders":     list,
		"pagination": utils.Paginate(total, opts.Page, opts.Limit),
	})
}

// GET /api/orders
func GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listOrders(w, r, bson.M{"userId": utils.GetUserIDFromRequest(r)})
}

// GET /api/seller/orders
func GetSellerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	listOrders(w, r, bson.M{"sellerId": utils.GetUserIDFromRequest(r)})
}

// GET /api/orders/:id
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{
		"orderId": ps.ByName("id"),
		"$or":     []bson.M{{"userId": userID}, {"sellerId": userID}},
	}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"order": order})
}

type deliverInput struct {
	DeliveryCode string `json:"deliveryCode"`
}

// PUT /api/orders/:id/deliver
//
// The seller confirms handover by quoting the customer's delivery code.
func MarkDelivered(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	sellerID := utils.GetUserIDFromRequest(r)
	now := time.Now()

	var input deliverInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.DeliveryCode == "" {
		utils.RespondError(w, utils.ValidationError("deliveryCode is required"))
		return
	}

	res, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{
			"orderId":      ps.ByName("id"),
			"sellerId":     sellerID,
			"deliveryCode": input.DeliveryCode,
			"status":       "created",
		},
		bson.M{"$set": bson.M{"status": "delivered", "deliveredAt": now}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondError(w, utils.BadRequestError("Delivery code mismatch or order already processed"))
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"orderId": ps.ByName("id"),
		"status":  "delivered",
	})
}
