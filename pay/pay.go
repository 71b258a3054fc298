package pay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"rasoi/db"
	"rasoi/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// PaymentOrder is a gateway order awaiting client-side checkout, in the
// Razorpay create-order/confirm-signature shape.
type PaymentOrder struct {
	OrderID   string    `json:"orderId" bson:"orderId"`
	UserID    string    `json:"userId" bson:"userId"`
	Amount    float64   `json:"amount" bson:"amount"`
	Currency  string    `json:"currency" bson:"currency"`
	Receipt   string    `json:"receipt,omitempty" bson:"receipt,omitempty"`
	Status    string    `json:"status" bson:"status"` // created, paid, failed
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func gatewaySecret() []byte {
	if s := os.Getenv("PAYMENT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev-payment-secret")
}

// CreatePaymentOrder persists a gateway order. Callers inside a transaction
// pass the session context so the order rolls back with the rest.
func CreatePaymentOrder(ctx context.Context, userID string, amount float64, receipt string) (PaymentOrder, error) {
	order := PaymentOrder{
		OrderID:   "order_" + utils.GenerateRandomString(14),
		UserID:    userID,
		Amount:    amount,
		Currency:  "INR",
		Receipt:   receipt,
		Status:    "created",
		CreatedAt: time.Now(),
	}
	if _, err := db.PaymentOrdersCollection.InsertOne(ctx, order); err != nil {
		return PaymentOrder{}, err
	}
	return order, nil
}

// VerifySignature checks the gateway callback: HMAC-SHA256 of
// "<orderId>|<paymentId>" under the shared secret.
func VerifySignature(orderID, paymentID, signature string) bool {
	h := hmac.New(sha256.New, gatewaySecret())
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// MarkPaid flips a created order to paid. Returns false when the order was
// missing or already processed.
func MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	res, err := db.PaymentOrdersCollection.UpdateOne(ctx,
		bson.M{"orderId": orderID, "status": "created"},
		bson.M{"$set": bson.M{"status": "paid", "paymentId": paymentID, "paidAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
