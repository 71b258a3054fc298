package notify

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestStartRealtimeWorkerDoesNotBlock(t *testing.T) {
	hub := NewHub()

	returned := make(chan *redis.PubSub, 1)
	go func() { returned <- StartRealtimeWorker(hub) }()

	select {
	case sub := <-returned:
		sub.Close()
	case <-time.After(3 * time.Second):
		t.Fatal("StartRealtimeWorker must run its consume loop in the background and return")
	}
}
