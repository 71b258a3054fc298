package notify

import (
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

// GET /api/notifications
func GetNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{"userId": userID}
	if r.URL.Query().Get("unread") == "true" {
		filter["read"] = false
	}

	total, err := db.NotificationsCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := db.NotificationsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	notifications := []models.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode notifications")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"notifications": notifications,
		"pagination":    utils.Paginate(total, opts.Page, opts.Limit),
	})
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	res, err := db.NotificationsCollection.UpdateOne(ctx,
		bson.M{"notificationId": ps.ByName("id"), "userId": userID},
		bson.M{"$set": bson.M{"read": true, "readAt": time.Now()}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"read": true})
}

// POST /api/notifications/read-all
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	res, err := db.NotificationsCollection.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": time.Now()}},
	)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"updated": res.ModifiedCount})
}
