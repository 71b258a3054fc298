package models

// Statuses are closed sets with explicit transition tables. Mutators call
// CanTransition* before writing so illegal transitions are rejected in one
// place instead of ad hoc per handler.

type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestBidding   RequestStatus = "bidding"
	RequestAccepted  RequestStatus = "accepted"
	RequestCancelled RequestStatus = "cancelled"
	RequestExpired   RequestStatus = "expired"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestOpen:    {RequestBidding, RequestAccepted, RequestCancelled, RequestExpired},
	RequestBidding: {RequestAccepted, RequestCancelled, RequestExpired},
}

func CanTransitionRequest(from, to RequestStatus) bool {
	for _, s := range requestTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

var bidTransitions = map[BidStatus][]BidStatus{
	BidPending: {BidAccepted, BidRejected, BidWithdrawn},
}

func CanTransitionBid(from, to BidStatus) bool {
	for _, s := range bidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionActive         SubscriptionStatus = "active"
	SubscriptionCompleted      SubscriptionStatus = "completed"
	SubscriptionCancelled      SubscriptionStatus = "cancelled"
)

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionPendingPayment: {SubscriptionActive, SubscriptionCancelled},
	SubscriptionActive:         {SubscriptionCompleted, SubscriptionCancelled},
}

func CanTransitionSubscription(from, to SubscriptionStatus) bool {
	for _, s := range subscriptionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
