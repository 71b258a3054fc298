package models

import "time"

type Budget struct {
	Min       float64 `json:"min" bson:"min"`
	Max       float64 `json:"max" bson:"max"`
	Preferred float64 `json:"preferred,omitempty" bson:"preferred,omitempty"`
}

type DeliverySlotName string

const (
	SlotLunch   DeliverySlotName = "lunch"
	SlotDinner  DeliverySlotName = "dinner"
	SlotAnytime DeliverySlotName = "anytime"
)

// CustomMealRequest is a user's ask for an off-menu dish, opened for bidding.
type CustomMealRequest struct {
	RequestID           string           `json:"requestId" bson:"requestId"`
	UserID              string           `json:"userId" bson:"userId"`
	DishName            string           `json:"dishName" bson:"dishName"`
	Category            string           `json:"category,omitempty" bson:"category,omitempty"`
	Quantity            int              `json:"quantity" bson:"quantity"`
	SpiceLevel          string           `json:"spiceLevel,omitempty" bson:"spiceLevel,omitempty"`
	DietaryRestrictions []string         `json:"dietaryRestrictions,omitempty" bson:"dietaryRestrictions,omitempty"`
	Budget              Budget           `json:"budget" bson:"budget"`
	DeliveryDate        time.Time        `json:"deliveryDate" bson:"deliveryDate"`
	DeliverySlot        DeliverySlotName `json:"deliverySlot" bson:"deliverySlot"`
	BidDeadline         time.Time        `json:"bidDeadline" bson:"bidDeadline"`
	ExpiresAt           time.Time        `json:"expiresAt" bson:"expiresAt"`
	TargetSellers       []string         `json:"targetSellers,omitempty" bson:"targetSellers,omitempty"`
	BroadcastRadius     float64          `json:"broadcastRadius,omitempty" bson:"broadcastRadius,omitempty"` // km
	AddOns              []string         `json:"addOns,omitempty" bson:"addOns,omitempty"`
	PhotoURL            string           `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	ThumbURL            string           `json:"thumbUrl,omitempty" bson:"thumbUrl,omitempty"`
	Status              RequestStatus    `json:"status" bson:"status"`
	AcceptedBid         string           `json:"acceptedBid,omitempty" bson:"acceptedBid,omitempty"`
	ChefID              string           `json:"chefId,omitempty" bson:"chefId,omitempty"`
	CancelReason        string           `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	CreatedAt           time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// EffectiveStatus evaluates lazy expiry: a request past its expiry window reads
// as expired even if the stored status was never flipped.
func (r *CustomMealRequest) EffectiveStatus(now time.Time) RequestStatus {
	if (r.Status == RequestOpen || r.Status == RequestBidding) && now.After(r.ExpiresAt) {
		return RequestExpired
	}
	return r.Status
}
