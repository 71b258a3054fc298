package pay

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type idempotencyRecord struct {
	Key         string    `bson:"key"`
	RequestHash string    `bson:"request_hash"`
	StatusCode  int       `bson:"status_code"`
	Body        []byte    `bson:"body"`
	CreatedAt   time.Time `bson:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at"`
}

// InitIdempotencyIndexes creates the unique key + TTL indexes.
func InitIdempotencyIndexes(ctx context.Context) error {
	idxs := []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expires_at": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	}
	_, err := db.IdempotencyCollection.Indexes().CreateMany(ctx, idxs)
	return err
}

func computeRequestHash(r *http.Request, bodyBytes []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// captureResponseWriter records status and body so a successful response can
// be replayed for a retried key.
type captureResponseWriter struct {
	w          http.ResponseWriter
	statusCode int
	buf        bytes.Buffer
}

func (c *captureResponseWriter) Header() http.Header { return c.w.Header() }

func (c *captureResponseWriter) WriteHeader(statusCode int) {
	c.statusCode = statusCode
	c.w.WriteHeader(statusCode)
}

func (c *captureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

// Idempotent replays the stored response when the same Idempotency-Key is
// retried with an identical payload, and rejects key reuse across different
// payloads. Requests without the header pass through.
func Idempotent(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		ctx := r.Context()
		userID := utils.GetUserIDFromRequest(r)

		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Failed to read body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		hash := computeRequestHash(r, bodyBytes, userID)

		var existing idempotencyRecord
		err = db.IdempotencyCollection.FindOne(ctx, bson.M{"key": key}).Decode(&existing)
		if err == nil {
			if existing.RequestHash != hash {
				utils.RespondWithError(w, http.StatusConflict, "Idempotency key reused with a different payload")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(existing.StatusCode)
			w.Write(existing.Body)
			return
		}

		capture := &captureResponseWriter{w: w, statusCode: http.StatusOK}
		next(capture, r, ps)

		if capture.statusCode < 500 {
			rec := idempotencyRecord{
				Key:         key,
				RequestHash: hash,
				StatusCode:  capture.statusCode,
				Body:        capture.buf.Bytes(),
				CreatedAt:   time.Now(),
				ExpiresAt:   time.Now().Add(24 * time.Hour),
			}
			if _, err := db.IdempotencyCollection.InsertOne(ctx, rec); err != nil && !mongo.IsDuplicateKeyError(err) {
				// response already sent; nothing to do beyond logging
				log.Printf("idempotency store failed: %v", err)
			}
		}
	}
}
