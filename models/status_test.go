package models

import "testing"

func TestRequestTransitions(t *testing.T) {
	allowed := []struct{ from, to RequestStatus }{
		{RequestOpen, RequestBidding},
		{RequestOpen, RequestAccepted},
		{RequestOpen, RequestCancelled},
		{RequestOpen, RequestExpired},
		{RequestBidding, RequestAccepted},
		{RequestBidding, RequestCancelled},
		{RequestBidding, RequestExpired},
	}
	for _, c := range allowed {
		if !CanTransitionRequest(c.from, c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to RequestStatus }{
		{RequestAccepted, RequestCancelled},
		{RequestAccepted, RequestOpen},
		{RequestCancelled, RequestOpen},
		{RequestExpired, RequestBidding},
		{RequestBidding, RequestOpen},
	}
	for _, c := range denied {
		if CanTransitionRequest(c.from, c.to) {
			t.Errorf("%s -> %s should be denied", c.from, c.to)
		}
	}
}

func TestBidTransitionsOnlyFromPending(t *testing.T) {
	for _, to := range []BidStatus{BidAccepted, BidRejected, BidWithdrawn} {
		if !CanTransitionBid(BidPending, to) {
			t.Errorf("pending -> %s should be allowed", to)
		}
	}
	for _, from := range []BidStatus{BidAccepted, BidRejected, BidWithdrawn} {
		for _, to := range []BidStatus{BidPending, BidAccepted, BidRejected, BidWithdrawn} {
			if CanTransitionBid(from, to) {
				t.Errorf("%s -> %s should be denied; settled bids are final", from, to)
			}
		}
	}
}

func TestSubscriptionTransitions(t *testing.T) {
	if !CanTransitionSubscription(SubscriptionPendingPayment, SubscriptionActive) {
		t.Error("pending_payment -> active should be allowed")
	}
	if !CanTransitionSubscription(SubscriptionActive, SubscriptionCompleted) {
		t.Error("active -> completed should be allowed")
	}
	if CanTransitionSubscription(SubscriptionPendingPayment, SubscriptionCompleted) {
		t.Error("pending_payment -> completed should be denied")
	}
	if CanTransitionSubscription(SubscriptionCompleted, SubscriptionActive) {
		t.Error("completed -> active should be denied")
	}
	if CanTransitionSubscription(SubscriptionCancelled, SubscriptionActive) {
		t.Error("cancelled -> active should be denied")
	}
}

func TestMealCountsConsistent(t *testing.T) {
	ok := MealCounts{TotalMeals: 60, Delivered: 10, Skipped: 5, MealsRemaining: 45}
	if !ok.Consistent() {
		t.Error("consistent counts reported inconsistent")
	}
	bad := MealCounts{TotalMeals: 60, Delivered: 10, Skipped: 5, MealsRemaining: 44}
	if bad.Consistent() {
		t.Error("inconsistent counts reported consistent")
	}
}
