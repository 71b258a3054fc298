package models

import "time"

// Bid is a chef's priced offer against an open custom meal request. At most
// one bid exists per (request, chef) pair, enforced by a unique index.
type Bid struct {
	BidID                string    `json:"bidId" bson:"bidId"`
	RequestID            string    `json:"requestId" bson:"requestId"`
	ChefID               string    `json:"chefId" bson:"chefId"`
	Price                float64   `json:"price" bson:"price"`
	Message              string    `json:"message,omitempty" bson:"message,omitempty"`
	ProposedDeliveryTime time.Time `json:"proposedDeliveryTime" bson:"proposedDeliveryTime"`
	Status               BidStatus `json:"status" bson:"status"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}
