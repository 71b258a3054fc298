package models

import "time"

// GeoPoint is a GeoJSON point, indexed 2dsphere for broadcast targeting.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"` // always "Point"
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

type User struct {
	UserID        string    `json:"userId" bson:"userId"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash  string    `json:"-" bson:"passwordHash"`
	Roles         []string  `json:"roles" bson:"roles"` // user, seller, admin
	Active        bool      `json:"active" bson:"active"`
	EmailVerified bool      `json:"emailVerified" bson:"emailVerified"`
	DeviceToken   string    `json:"-" bson:"deviceToken,omitempty"`
	Location      *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
	KitchenName   string    `json:"kitchenName,omitempty" bson:"kitchenName,omitempty"`
	Cuisines      []string  `json:"cuisines,omitempty" bson:"cuisines,omitempty"`
	WalletBalance float64   `json:"walletBalance" bson:"walletBalance"`
	HasActiveSub  bool      `json:"hasActiveSubscription" bson:"hasActiveSubscription"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
