package bids

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type activeRequestRow struct {
	Request       models.CustomMealRequest `json:"request"`
	AlreadyBid    bool                     `json:"alreadyBid"`
	BidCount      int32                    `json:"bidCount"`
	LowestBid     float64                  `json:"lowestBid,omitempty"`
	AverageBid    float64                  `json:"averageBid,omitempty"`
	TimeRemaining int                      `json:"timeRemaining"`
	Urgency       string                   `json:"urgency"`
}

type bidStats struct {
	RequestID string  `bson:"_id"`
	Count     int32   `bson:"count"`
	Min       float64 `bson:"min"`
	Avg       float64 `bson:"avg"`
}

// GET /api/seller/active-requests — the seller's biddable feed
func GetActiveRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	sellerID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)
	now := time.Now()

	filter := bson.M{
		"status":      bson.M{"$in": []models.RequestStatus{models.RequestOpen, models.RequestBidding}},
		"bidDeadline": bson.M{"$gt": now},
		"expiresAt":   bson.M{"$gt": now},
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if slot := r.URL.Query().Get("slot"); slot != "" {
		filter["deliverySlot"] = slot
	}

	cur, err := db.CustomRequestCollection.Find(ctx, filter)
	if err != nil {
		log.Printf("DB error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	var requests []models.CustomMealRequest
	if err := cur.All(ctx, &requests); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode requests")
		return
	}

	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.RequestID)
	}

	stats, err := aggregateBidStats(ctx, ids)
	if err != nil {
		log.Printf("bid stats aggregation failed: %v", err)
		stats = map[string]bidStats{}
	}
	mine, err := sellerBidSet(ctx, sellerID, ids)
	if err != nil {
		log.Printf("seller bid lookup failed: %v", err)
		mine = map[string]bool{}
	}

	rows := make([]activeRequestRow, 0, len(requests))
	for _, req := range requests {
		st := stats[req.RequestID]
		rows = append(rows, activeRequestRow{
			Request:       req,
			AlreadyBid:    mine[req.RequestID],
			BidCount:      st.Count,
			LowestBid:     st.Min,
			AverageBid:    st.Avg,
			TimeRemaining: TimeRemaining(req.BidDeadline, now),
			Urgency:       Urgency(req.BidDeadline, now),
		})
	}

	// urgency first, then soonest deadline
	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := urgencyScore(rows[i].Urgency), urgencyScore(rows[j].Urgency)
		if si != sj {
			return si > sj
		}
		return rows[i].TimeRemaining < rows[j].TimeRemaining
	})

	total := int64(len(rows))
	start := (opts.Page - 1) * opts.Limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + opts.Limit
	if end > len(rows) {
		end = len(rows)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"requests":   rows[start:end],
		"pagination": utils.Paginate(total, opts.Page, opts.Limit),
	})
}

func aggregateBidStats(ctx context.Context, ids []string) (map[string]bidStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"requestId": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$requestId",
			"count": bson.M{"$sum": 1},
			"min":   bson.M{"$min": "$price"},
			"avg":   bson.M{"$avg": "$price"},
		}}},
	}

	cur, err := db.BidsCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	stats := map[string]bidStats{}
	for cur.Next(ctx) {
		var st bidStats
		if err := cur.Decode(&st); err != nil {
			continue
		}
		stats[st.RequestID] = st
	}
	return stats, cur.Err()
}

func sellerBidSet(ctx context.Context, sellerID string, ids []string) (map[string]bool, error) {
	cur, err := db.BidsCollection.Find(ctx, bson.M{
		"chefId":    sellerID,
		"requestId": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	mine := map[string]bool{}
	for cur.Next(ctx) {
		var b models.Bid
		if cur.Decode(&b) == nil {
			mine[b.RequestID] = true
		}
	}
	return mine, cur.Err()
}
