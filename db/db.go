package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection          *mongo.Collection
	CustomRequestCollection *mongo.Collection
	BidsCollection          *mongo.Collection
	SubscriptionsCollection *mongo.Collection
	MealPlansCollection     *mongo.Collection
	OrdersCollection        *mongo.Collection
	NotificationsCollection *mongo.Collection
	WalletCollection        *mongo.Collection
	PaymentOrdersCollection *mongo.Collection
	IdempotencyCollection   *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("rasoidb")
	UserCollection = database.Collection("users")
	CustomRequestCollection = database.Collection("customrequests")
	BidsCollection = database.Collection("bids")
	SubscriptionsCollection = database.Collection("subscriptions")
	MealPlansCollection = database.Collection("mealplans")
	OrdersCollection = database.Collection("orders")
	NotificationsCollection = database.Collection("notifications")
	WalletCollection = database.Collection("wallettxns")
	PaymentOrdersCollection = database.Collection("paymentorders")
	IdempotencyCollection = database.Collection("idempotency")
}

// EnsureIndexes creates the indexes the app depends on. Called once from main.
func EnsureIndexes(ctx context.Context) error {
	// one bid per (request, chef)
	_, err := BidsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "requestId", Value: 1}, {Key: "chefId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_request_chef"),
	})
	if err != nil {
		return err
	}

	// geofenced broadcast targeting
	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("seller_location_2dsphere"),
	})
	if err != nil {
		return err
	}

	_, err = CustomRequestCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("request_user_created"),
	})
	return err
}
