package pay

import (
	"context"
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

// Credit appends a ledger entry and bumps the cached balance. Run inside a
// session context when part of a larger transaction.
func Credit(ctx context.Context, userID string, amount float64, reference, note string) error {
	txn := models.WalletTransaction{
		TxnID:     utils.GetUUID(),
		UserID:    userID,
		Amount:    amount,
		Kind:      "credit",
		Reference: reference,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if _, err := db.WalletCollection.InsertOne(ctx, txn); err != nil {
		return err
	}
	_, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$inc": bson.M{"walletBalance": amount}},
	)
	return err
}

func Debit(ctx context.Context, userID string, amount float64, reference, note string) error {
	txn := models.WalletTransaction{
		TxnID:     utils.GetUUID(),
		UserID:    userID,
		Amount:    amount,
		Kind:      "debit",
		Reference: reference,
		Note:      note,
		CreatedAt: time.Now(),
	}
	if _, err := db.WalletCollection.InsertOne(ctx, txn); err != nil {
		return err
	}
	_, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$inc": bson.M{"walletBalance": -amount}},
	)
	return err
}

// GET /api/wallet/balance
func GetBalance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"balance": user.WalletBalance})
}

// GET /api/wallet/transactions
func GetTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	filter := bson.M{"userId": userID}
	total, err := db.WalletCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := db.WalletCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	txns := []models.WalletTransaction{}
	if err := cur.All(ctx, &txns); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode transactions")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"transactions": txns,
		"pagination":   utils.Paginate(total, opts.Page, opts.Limit),
	})
}
