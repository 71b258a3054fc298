package models

import "time"

type OrderSource string

const (
	OrderFromBid  OrderSource = "custom_request"
	OrderFromAuto OrderSource = "auto_subscription"
)

type Order struct {
	OrderID        string      `json:"orderId" bson:"orderId"`
	UserID         string      `json:"userId" bson:"userId"`
	SellerID       string      `json:"sellerId" bson:"sellerId"`
	Source         OrderSource `json:"source" bson:"source"`
	RequestID      string      `json:"requestId,omitempty" bson:"requestId,omitempty"`
	BidID          string      `json:"bidId,omitempty" bson:"bidId,omitempty"`
	SubscriptionID string      `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	Shift          Shift       `json:"shift,omitempty" bson:"shift,omitempty"`
	Date           time.Time   `json:"date" bson:"date"`
	Amount         float64     `json:"amount" bson:"amount"`
	DeliveryCode   string      `json:"deliveryCode" bson:"deliveryCode"`
	Status         string      `json:"status" bson:"status"` // created, delivered, cancelled
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
}

type MealPlan struct {
	PlanID      string  `json:"planId" bson:"planId"`
	Name        string  `json:"name" bson:"name"`
	SellerID    string  `json:"sellerId" bson:"sellerId"`
	PlanType    string  `json:"planType" bson:"planType"`
	PricePerDay float64 `json:"pricePerDay" bson:"pricePerDay"`
	MealsPerDay int     `json:"mealsPerDay" bson:"mealsPerDay"`
	Active      bool    `json:"active" bson:"active"`
}
