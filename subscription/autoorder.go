package subscription

import (
	"context"
	"log"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/notify"
	"rasoi/pay"
	"rasoi/schedule"
	"rasoi/utils"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProcessDailyOrders materializes orders for every active subscription's
// unskipped, undelivered slots dated today. Each subscription gets its own
// transaction so one bad document cannot wedge the whole run.
func ProcessDailyOrders(ctx context.Context, now time.Time) (int, error) {
	today := schedule.Midnight(now)

	cur, err := db.SubscriptionsCollection.Find(ctx, bson.M{
		"status": models.SubscriptionActive,
		"deliverySchedule": bson.M{"$elemMatch": bson.M{
			"date":      today,
			"isSkipped": false,
			"delivered": false,
		}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var subs []models.Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return 0, err
	}

	placed := 0
	for _, sub := range subs {
		n, err := processSubscription(ctx, sub, today, now)
		if err != nil {
			log.Printf("auto-order failed for subscription %s: %v", sub.SubscriptionID, err)
			continue
		}
		placed += n
	}
	return placed, nil
}

func processSubscription(ctx context.Context, sub models.Subscription, today, now time.Time) (int, error) {
	session, err := db.Client.StartSession()
	if err != nil {
		return 0, err
	}
	defer session.EndSession(ctx)

	var orders []models.Order
	var completed bool

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		orders = orders[:0]
		completed = false

		// reload inside the transaction; a concurrent skip may have landed
		var fresh models.Subscription
		if err := db.SubscriptionsCollection.FindOne(sc,
			bson.M{"subscriptionId": sub.SubscriptionID, "status": models.SubscriptionActive},
		).Decode(&fresh); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, nil
			}
			return nil, err
		}

		delivered := 0
		for _, slot := range fresh.DeliverySchedule {
			if !slot.Date.Equal(today) || slot.IsSkipped || slot.Delivered {
				continue
			}

			order := models.Order{
				OrderID:        utils.GetUUID(),
				UserID:         fresh.UserID,
				SellerID:       fresh.SellerID,
				Source:         models.OrderFromAuto,
				SubscriptionID: fresh.SubscriptionID,
				Shift:          slot.Shift,
				Date:           slot.Date,
				Amount:         fresh.PerMealPrice,
				DeliveryCode:   utils.GenerateRandomDigitString(8),
				Status:         "created",
				CreatedAt:      now,
			}
			if _, err := db.OrdersCollection.InsertOne(sc, order); err != nil {
				return nil, err
			}

			res, err := db.SubscriptionsCollection.UpdateOne(sc,
				bson.M{"subscriptionId": fresh.SubscriptionID},
				bson.M{
					"$set": bson.M{
						"deliverySchedule.$[slot].delivered": true,
						"deliverySchedule.$[slot].orderId":   order.OrderID,
						"updatedAt":                          now,
					},
					"$inc": bson.M{
						"mealCounts.delivered":      1,
						"mealCounts.mealsRemaining": -1,
					},
				},
				options.Update().SetArrayFilters(options.ArrayFilters{
					Filters: []interface{}{bson.M{
						"slot.date":      slot.Date,
						"slot.shift":     slot.Shift,
						"slot.delivered": false,
					}},
				}),
			)
			if err != nil {
				return nil, err
			}
			if res.ModifiedCount == 0 {
				continue
			}

			if fresh.SellerID != "" {
				if err := pay.Credit(sc, fresh.SellerID, order.Amount,
					order.OrderID, "Subscription meal delivery"); err != nil {
					return nil, err
				}
			}
			orders = append(orders, order)
			delivered++
		}

		remaining := fresh.MealCounts.MealsRemaining - delivered
		if remaining <= 0 && delivered > 0 {
			if _, err := db.SubscriptionsCollection.UpdateOne(sc,
				bson.M{"subscriptionId": fresh.SubscriptionID, "mealCounts.mealsRemaining": 0},
				bson.M{"$set": bson.M{"status": models.SubscriptionCompleted, "updatedAt": now}},
			); err != nil {
				return nil, err
			}
			if _, err := db.UserCollection.UpdateOne(sc,
				bson.M{"userId": fresh.UserID},
				bson.M{"$set": bson.M{"hasActiveSubscription": false}},
			); err != nil {
				return nil, err
			}
			completed = true
		}
		return nil, nil
	})
	if err != nil {
		return 0, err
	}

	for _, order := range orders {
		if err := notify.Notify(ctx, order.UserID, "meal_order_placed",
			"Meal on the way",
			"Your "+string(order.Shift)+" thali is scheduled for today. Delivery code: "+order.DeliveryCode,
			utils.M{"orderId": order.OrderID, "subscriptionId": order.SubscriptionID}); err != nil {
			log.Printf("auto-order notification failed: %v", err)
		}
	}
	if completed {
		if err := notify.Notify(ctx, sub.UserID, "subscription_completed",
			"Subscription completed",
			"All meals in your subscription have been delivered",
			utils.M{"subscriptionId": sub.SubscriptionID}); err != nil {
			log.Printf("completion notification failed: %v", err)
		}
	}
	return len(orders), nil
}

// exhausted reports whether an active subscription has no meals left.
func exhausted(sub models.Subscription) bool {
	return sub.Status == models.SubscriptionActive && sub.MealCounts.MealsRemaining == 0
}

// completeIfExhausted flips an exhausted subscription to completed and clears
// the user's active flag. The update is conditional on the stored remaining
// count so a concurrent resume wins.
func completeIfExhausted(ctx context.Context, sub *models.Subscription) error {
	if !exhausted(*sub) {
		return nil
	}
	res, err := db.SubscriptionsCollection.UpdateOne(ctx,
		bson.M{
			"subscriptionId":            sub.SubscriptionID,
			"status":                    models.SubscriptionActive,
			"mealCounts.mealsRemaining": 0,
		},
		bson.M{"$set": bson.M{"status": models.SubscriptionCompleted, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return nil
	}
	sub.Status = models.SubscriptionCompleted
	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"userId": sub.UserID},
		bson.M{"$set": bson.M{"hasActiveSubscription": false}},
	)
	return err
}

// StartAutoOrderScheduler runs the daily order job at 02:00 server time.
// Returns the cron so main can Stop it on shutdown.
func StartAutoOrderScheduler(ctx context.Context) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("0 2 * * *", func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		n, err := ProcessDailyOrders(runCtx, time.Now())
		if err != nil {
			log.Printf("daily order run failed: %v", err)
			return
		}
		log.Printf("daily order run placed %d orders", n)
	})
	if err != nil {
		log.Fatalf("failed to schedule daily orders: %v", err)
	}
	c.Start()
	return c
}
