package models

import "time"

type Notification struct {
	NotificationID string                 `json:"notificationId" bson:"notificationId"`
	UserID         string                 `json:"userId" bson:"userId"`
	Type           string                 `json:"type" bson:"type"`
	Title          string                 `json:"title" bson:"title"`
	Message        string                 `json:"message" bson:"message"`
	Data           map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Read           bool                   `json:"read" bson:"read"`
	CreatedAt      time.Time              `json:"createdAt" bson:"createdAt"`
}

type WalletTransaction struct {
	TxnID     string    `json:"txnId" bson:"txnId"`
	UserID    string    `json:"userId" bson:"userId"`
	Amount    float64   `json:"amount" bson:"amount"`
	Kind      string    `json:"kind" bson:"kind"` // credit, debit
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
