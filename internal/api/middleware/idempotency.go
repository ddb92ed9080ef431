package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"loan-origination/internal/domain/identity"

	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay marks a response served from the idempotency store.
	HeaderIdempotentReplay = "Idempotent-Replayed"

	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
	maxIdempotencyKey  = 128
)

type idempotencyEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type responseCapture struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteHeader(statusCode int) {
	r.code = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Idempotency replays the stored response when a client repeats a mutating
// request with the same Idempotency-Key. Requests without the header pass through.
// A nil client disables the middleware.
func Idempotency(rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "IdempotencyMiddleware")

	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxIdempotencyKey {
				writeJSONError(w, http.StatusBadRequest, "INVALID_INPUT", "Idempotency-Key is too long")
				return
			}

			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(r.Body)
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := idempotencyStoreKey(r, idemKey)
			ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempotencyEntry{InProgress: true, BodySHA256: bhash, CreatedAt: time.Now().UTC()})
			if err != nil {
				logger.ErrorContext(r.Context(), "Idempotency store unavailable", "error", err)
				writeJSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "idempotency store unavailable")
				return
			}
			if !ok {
				cur, err := loadEntry(ctx, rdb, key)
				if err != nil && !errors.Is(err, redis.Nil) {
					logger.WarnContext(r.Context(), "Failed to load idempotency entry", "key", key, "error", err)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					writeJSONError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_MISMATCH", "Idempotency-Key reused with a different body")
					return
				}
				if !cur.InProgress && cur.Code != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set(HeaderIdempotentReplay, "true")
					w.WriteHeader(cur.Code)
					w.Write(cur.Body)
					return
				}
				writeJSONError(w, http.StatusConflict, "CONFLICT", "request is already in progress")
				return
			}

			rec := &responseCapture{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(r.Context()), storeTimeout)
			defer storeCancel()

			// Server failures are not remembered so the client can retry.
			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(storeCtx, key).Err(); err != nil {
					logger.WarnContext(r.Context(), "Failed to release idempotency key", "key", key, "error", err)
				}
				return
			}
			final := idempotencyEntry{
				Code:       rec.code,
				Body:       rec.buf.Bytes(),
				BodySHA256: bhash,
				CreatedAt:  time.Now().UTC(),
			}
			if err := saveFinal(storeCtx, rdb, key, final, ttl); err != nil {
				logger.WarnContext(r.Context(), "Failed to store idempotent response", "key", key, "error", err)
			}
		})
	}
}

func idempotencyStoreKey(r *http.Request, idemKey string) string {
	owner := "anonymous"
	if actor, ok := identity.FromContext(r.Context()); ok {
		owner = actor.UserID.String()
	}
	return "idem:" + strings.ToLower(r.Method) + ":" + r.URL.Path + ":" + owner + ":" + idemKey
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func provisionalSet(ctx context.Context, rdb redis.UniversalClient, key string, entry idempotencyEntry) (bool, error) {
	payload, _ := json.Marshal(entry)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb redis.UniversalClient, key string) (idempotencyEntry, error) {
	var e idempotencyEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	_ = json.Unmarshal(v, &e)
	return e, nil
}

func saveFinal(ctx context.Context, rdb redis.UniversalClient, key string, entry idempotencyEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
