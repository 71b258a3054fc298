package bids

import (
	"context"
	"log"

	"rasoi/db"
	"rasoi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// resolveTargets returns the seller ids a new request is broadcast to.
// Explicit seller lists are filtered down to active sellers. Broadcast
// requests reach all active sellers, narrowed by a geo filter when the
// requester has a stored location and asked for a radius.
func resolveTargets(ctx context.Context, req *models.CustomMealRequest) ([]string, error) {
	filter := bson.M{"active": true, "roles": "seller"}

	if len(req.TargetSellers) > 0 {
		filter["userId"] = bson.M{"$in": req.TargetSellers}
		return sellerIDs(ctx, filter)
	}

	if req.BroadcastRadius > 0 {
		radius := req.BroadcastRadius
		if radius > MaxBroadcastRadiusKm {
			radius = MaxBroadcastRadiusKm
		}
		var requester models.User
		err := db.UserCollection.FindOne(ctx, bson.M{"userId": req.UserID}).Decode(&requester)
		if err == nil && requester.Location != nil {
			filter["location"] = bson.M{
				"$nearSphere": bson.M{
					"$geometry": bson.M{
						"type":        "Point",
						"coordinates": requester.Location.Coordinates,
					},
					"$maxDistance": radius * 1000, // meters
				},
			}
		} else if err != nil && err != mongo.ErrNoDocuments {
			log.Printf("requester lookup failed, broadcasting unfiltered: %v", err)
		}
	}

	return sellerIDs(ctx, filter)
}

func sellerIDs(ctx context.Context, filter bson.M) ([]string, error) {
	cur, err := db.UserCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			continue
		}
		ids = append(ids, u.UserID)
	}
	return ids, cur.Err()
}
