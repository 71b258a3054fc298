package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"rasoi/db"
	"rasoi/models"
	"rasoi/rdx"
	"rasoi/utils"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// realtimeChannel is the redis pubsub channel bridging dispatchers to the
// websocket hub, so fan-out works across instances.
const realtimeChannel = "notification-events"

type realtimeEvent struct {
	UserID string                 `json:"userId"`
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Msg    string                 `json:"message"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Notify stores an in-app notification for userID and pushes it out on every
// side channel the user has configured. Side-channel failures are logged and
// swallowed; only the in-app store failure is returned.
func Notify(ctx context.Context, userID, typ, title, message string, data map[string]interface{}) error {
	n := models.Notification{
		NotificationID: utils.GetUUID(),
		UserID:         userID,
		Type:           typ,
		Title:          title,
		Message:        message,
		Data:           data,
		CreatedAt:      time.Now(),
	}
	if _, err := db.NotificationsCollection.InsertOne(ctx, n); err != nil {
		return err
	}

	publishRealtime(realtimeEvent{UserID: userID, Type: typ, Title: title, Msg: message, Data: data})

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		log.Printf("notify: user %s lookup failed, in-app only: %v", userID, err)
		return nil
	}

	if user.Email != "" {
		if err := sendEmail(user.Email, title, message); err != nil {
			log.Printf("notify: email to %s failed: %v", userID, err)
		}
	}
	if user.Phone != "" {
		if err := sendSMS(user.Phone, title+": "+message); err != nil {
			log.Printf("notify: sms to %s failed: %v", userID, err)
		}
	}
	if user.DeviceToken != "" {
		if err := sendPush(ctx, user.DeviceToken, title, message); err != nil {
			log.Printf("notify: push to %s failed: %v", userID, err)
		}
	}
	return nil
}

// FanOut notifies every recipient independently. One recipient's failure
// never aborts the rest; failures are logged and the delivered count is
// returned.
func FanOut(ctx context.Context, userIDs []string, typ, title, message string, data map[string]interface{}) int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0

	for _, uid := range userIDs {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			if err := Notify(ctx, uid, typ, title, message, data); err != nil {
				log.Printf("notify: fan-out to %s failed: %v", uid, err)
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(uid)
	}

	wg.Wait()
	return delivered
}

func publishRealtime(ev realtimeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal realtime event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(context.Background(), realtimeChannel, data).Err(); err != nil {
		log.Printf("notify: publish realtime event: %v", err)
	}
}

// StartRealtimeWorker consumes published events in the background and
// forwards each to the recipient's websocket room. Closing the returned
// subscription stops the worker.
func StartRealtimeWorker(hub *Hub) *redis.PubSub {
	sub := rdx.Conn.Subscribe(context.Background(), realtimeChannel)
	ch := sub.Channel()

	go func() {
		log.Println("[RealtimeWorker] Listening for notification events...")
		for msg := range ch {
			var ev realtimeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[RealtimeWorker] Failed to parse event: %v", err)
				continue
			}
			hub.SendToUser(ev.UserID, []byte(msg.Payload))
		}
	}()

	return sub
}
