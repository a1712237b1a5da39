// internal/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

const (
	IdempotencyHeader      = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"
)

// IdempotencyRecord is what the store keeps per key. A record without a
// status code marks a request that is still running.
type IdempotencyRecord struct {
	Fingerprint string `json:"fingerprint"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

func (r *IdempotencyRecord) InProgress() bool {
	return r.StatusCode == 0
}

type IdempotencyStore interface {
	// Reserve stores rec only if key is unused and reports whether it did.
	Reserve(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

var errRecordMissing = errors.New("idempotency record missing")

// RedisIdempotencyStore keeps records as JSON strings under a key prefix.
type RedisIdempotencyStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisIdempotencyStore(client redis.Cmdable, prefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: prefix}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return s.prefix + ":idempotency:" + k
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, s.key(key), raw, ttl).Result()
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errRecordMissing
	}
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, rec *IdempotencyRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), raw, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// mutating requests. Keys are scoped to the caller, so it must run after
// AuthRequired. A nil store disables it. Store failures let the request
// through.
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		userID, _ := utils.GetUserIDFromContext(c)
		scoped := userID + ":" + key
		fingerprint := utils.Fingerprint(c.Request.Method, c.Request.URL.Path, body)
		ctx := c.Request.Context()
		lang := utils.GetLangFromContext(c)
		log := logrus.WithFields(logrus.Fields{"idempotency_key": key, "user_id": userID})

		reserved, err := store.Reserve(ctx, scoped, &IdempotencyRecord{Fingerprint: fingerprint}, ttl)
		if err != nil {
			log.WithError(err).Warn("Idempotency store unavailable, processing request without it")
			c.Next()
			return
		}

		if !reserved {
			rec, err := store.Get(ctx, scoped)
			if err != nil {
				log.WithError(err).Warn("Failed to load idempotency record")
				utils.ErrorResponse(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", i18n.T(lang, i18n.KeyIdempotencyInProgress), nil)
				c.Abort()
				return
			}
			switch {
			case rec.Fingerprint != fingerprint:
				utils.ErrorResponse(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", i18n.T(lang, i18n.KeyIdempotencyKeyReused), nil)
			case rec.InProgress():
				utils.ErrorResponse(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", i18n.T(lang, i18n.KeyIdempotencyInProgress), nil)
			default:
				c.Header(IdempotentReplayHeader, "true")
				c.Data(rec.StatusCode, rec.ContentType, rec.Body)
			}
			c.Abort()
			return
		}

		// The key is released unless a response gets stored: server errors are
		// not cached, and a panicking handler unwinds through this defer on its
		// way to the recovery middleware.
		stored := false
		defer func() {
			if stored {
				return
			}
			if err := store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				log.WithError(err).Warn("Failed to release idempotency key")
			}
		}()

		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		rec := &IdempotencyRecord{
			Fingerprint: fingerprint,
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := store.Save(context.WithoutCancel(ctx), scoped, rec, ttl); err != nil {
			log.WithError(err).Warn("Failed to store idempotent response")
			return
		}
		stored = true
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
