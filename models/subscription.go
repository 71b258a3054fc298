package models

import "time"

type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
	ShiftBoth    Shift = "both"
)

// DeliverySlot is one precomputed meal delivery within a subscription's
// schedule. The schedule is generated once at creation; slots are only
// mutated by skip/resume, never regenerated.
type DeliverySlot struct {
	Date        time.Time `json:"date" bson:"date"`
	Shift       Shift     `json:"shift" bson:"shift"`
	IsSunday    bool      `json:"isSunday" bson:"isSunday"`
	IsSpecial   bool      `json:"isSpecial" bson:"isSpecial"`
	ThaliNumber int       `json:"thaliNumber" bson:"thaliNumber"`
	IsSkipped   bool      `json:"isSkipped" bson:"isSkipped"`
	SkipReason  string    `json:"skipReason,omitempty" bson:"skipReason,omitempty"`
	SkippedAt   time.Time `json:"skippedAt,omitempty" bson:"skippedAt,omitempty"`
	Delivered   bool      `json:"delivered" bson:"delivered"`
	OrderID     string    `json:"orderId,omitempty" bson:"orderId,omitempty"`
}

// MealCounts must satisfy MealsRemaining = TotalMeals - Delivered - Skipped
// after every mutation.
type MealCounts struct {
	TotalMeals     int `json:"totalMeals" bson:"totalMeals"`
	Delivered      int `json:"delivered" bson:"delivered"`
	Skipped        int `json:"skipped" bson:"skipped"`
	MealsRemaining int `json:"mealsRemaining" bson:"mealsRemaining"`
}

func (m MealCounts) Consistent() bool {
	return m.Delivered+m.Skipped+m.MealsRemaining == m.TotalMeals
}

type SkippedMeal struct {
	Date      time.Time `json:"date" bson:"date"`
	Shift     Shift     `json:"shift" bson:"shift"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	SkippedAt time.Time `json:"skippedAt" bson:"skippedAt"`
}

type Subscription struct {
	SubscriptionID   string             `json:"subscriptionId" bson:"subscriptionId"`
	UserID           string             `json:"userId" bson:"userId"`
	PlanID           string             `json:"planId" bson:"planId"`
	SellerID         string             `json:"sellerId,omitempty" bson:"sellerId,omitempty"`
	PlanType         string             `json:"planType" bson:"planType"`
	DurationDays     int                `json:"durationDays" bson:"durationDays"`
	StartDate        time.Time          `json:"startDate" bson:"startDate"`
	StartShift       Shift              `json:"startShift" bson:"startShift"`
	Timezone         string             `json:"timezone" bson:"timezone"`
	PerMealPrice     float64            `json:"perMealPrice" bson:"perMealPrice"`
	MealCounts       MealCounts         `json:"mealCounts" bson:"mealCounts"`
	DeliverySchedule []DeliverySlot     `json:"deliverySchedule" bson:"deliverySchedule"`
	SkippedMeals     []SkippedMeal      `json:"skippedMeals,omitempty" bson:"skippedMeals,omitempty"`
	Status           SubscriptionStatus `json:"status" bson:"status"`
	PaymentOrderID   string             `json:"paymentOrderId,omitempty" bson:"paymentOrderId,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}
