package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/services"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	idempotencyPending      = "pending"
	idempotencyPendingTTL   = 30 * time.Second
	idempotencyMaxKeyLength = 255
	idempotencyMaxBodyBytes = 1 << 20
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	BodyHash    string `json:"body_hash"`
}

// Idempotency replays the stored response when a POST is retried with the
// same Idempotency-Key by the same principal. Requests without the header
// pass straight through, as does everything when client is nil. Redis
// failures are logged and the request runs unprotected. A key reused with a
// different body is rejected with 422.
func Idempotency(client *redis.Client, ttl time.Duration, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if client == nil || r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > idempotencyMaxKeyLength {
				services.SendErrorResponse(w, "Idempotency-Key too long", "invalid_request", http.StatusBadRequest, nil)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, idempotencyMaxBodyBytes))
			if err != nil {
				services.SendErrorResponse(w, "Request body too large", "invalid_request", http.StatusRequestEntityTooLarge, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			bodyHash := HashRequestBody(raw)

			ownerID, _ := OwnerIDFromContext(r.Context())
			redisKey := IdempotencyRedisKey(ownerID.String(), r.Method, r.URL.Path, key)
			ctx := r.Context()

			acquired, err := client.SetNX(ctx, redisKey, idempotencyPending, idempotencyPendingTTL).Result()
			if err != nil {
				log.Warn().Err(err).Str("key", redisKey).Msg("idempotency store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !acquired {
				stored, err := client.Get(ctx, redisKey).Result()
				switch {
				case errors.Is(err, redis.Nil):
					next.ServeHTTP(w, r)
				case err != nil:
					log.Warn().Err(err).Str("key", redisKey).Msg("idempotency lookup failed")
					next.ServeHTTP(w, r)
				case stored == idempotencyPending:
					services.SendErrorResponse(w, "A request with this Idempotency-Key is in progress", "request_in_progress", http.StatusConflict, nil)
				default:
					replay(w, stored, bodyHash, log)
				}
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// 5xx responses are not stored so the client can retry.
			if rec.status >= http.StatusInternalServerError {
				if err := client.Del(ctx, redisKey).Err(); err != nil {
					log.Warn().Err(err).Str("key", redisKey).Msg("idempotency release failed")
				}
				return
			}

			payload, _ := json.Marshal(storedResponse{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.String(),
				BodyHash:    bodyHash,
			})
			if err := client.Set(ctx, redisKey, string(payload), ttl).Err(); err != nil {
				log.Warn().Err(err).Str("key", redisKey).Msg("idempotency store failed")
			}
		})
	}
}

func IdempotencyRedisKey(ownerID, method, path, key string) string {
	return "idempotency:" + ownerID + ":" + method + ":" + path + ":" + key
}

// HashRequestBody is the hex SHA-256 of a request body as kept in an
// idempotency record.
func HashRequestBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, stored, bodyHash string, log zerolog.Logger) {
	var resp storedResponse
	if err := json.Unmarshal([]byte(stored), &resp); err != nil {
		log.Error().Err(err).Msg("corrupt idempotency record")
		services.SendErrorResponse(w, "Stored response unreadable", "internal_error", http.StatusInternalServerError, nil)
		return
	}
	if resp.BodyHash != bodyHash {
		services.SendErrorResponse(w, "Idempotency-Key was already used with a different request body", "idempotency_key_reused", http.StatusUnprocessableEntity, nil)
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
