package rdx

import (
	"log"
	"os"
	"time"

	"rasoi/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{Addr: addr})
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

// RdxSetWithExpiry stores a value under key with a TTL. Used for OTPs so the
// generate/verify/expire contract survives restarts (no in-process maps).
func RdxSetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(globals.Ctx, key).Err()
}

// RdxIncrWithWindow increments a counter key, starting its expiry window on
// first use. Returns the counter value after the increment.
func RdxIncrWithWindow(key string, window time.Duration) (int64, error) {
	n, err := Conn.Incr(globals.Ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := Conn.Expire(globals.Ctx, key, window).Err(); err != nil {
			log.Printf("Redis expire error for key %s: %v", key, err)
		}
	}
	return n, nil
}
