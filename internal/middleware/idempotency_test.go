package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ruralpay/ledger/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 24 * time.Hour

func TestIdempotency(t *testing.T) {
	owner := uuid.New()
	path := "/api/v1/transfers"
	key := IdempotencyRedisKey(owner.String(), http.MethodPost, path, "abc-123")
	body := `{"amount":100}`
	requestBody := `{"to_account_number":"1004567890","amount":100}`

	newRequestWithBody := func(idemKey, payload string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
		if idemKey != "" {
			req.Header.Set(IdempotencyKeyHeader, idemKey)
		}
		return req.WithContext(WithOwnerID(req.Context(), owner))
	}
	newRequest := func(idemKey string) *http.Request {
		return newRequestWithBody(idemKey, requestBody)
	}

	countingHandler := func(status int, calls *int) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			io.WriteString(w, body)
		})
	}

	stored := func(status int) string {
		b, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: "application/json",
			Body:        body,
			BodyHash:    HashRequestBody([]byte(requestBody)),
		})
		require.NoError(t, err)
		return string(b)
	}

	t.Run("first request runs and is stored", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(true)
		mock.ExpectSet(key, stored(http.StatusCreated), testTTL).SetVal("OK")

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get(IdempotentReplayHeader))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retry replays the stored response", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(false)
		mock.ExpectGet(key).SetVal(stored(http.StatusCreated))

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Zero(t, calls)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get(IdempotentReplayHeader))
		assert.JSONEq(t, body, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("handler still reads the request body", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		var seen string

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(true)
		mock.ExpectSet(key, stored(http.StatusCreated), testTTL).SetVal("OK")

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(b)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, body)
		})

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(next).ServeHTTP(w, newRequest("abc-123"))

		assert.Equal(t, requestBody, seen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("key reused with a different body is rejected", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(false)
		mock.ExpectGet(key).SetVal(stored(http.StatusCreated))

		w := httptest.NewRecorder()
		req := newRequestWithBody("abc-123", `{"to_account_number":"1004567890","amount":9999}`)
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, req)

		assert.Zero(t, calls)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, w.Header().Get(IdempotentReplayHeader))
		var resp services.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "idempotency_key_reused", resp.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent duplicate is rejected", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(false)
		mock.ExpectGet(key).SetVal("pending")

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Zero(t, calls)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("server errors release the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetVal(true)
		mock.ExpectDel(key).SetVal(1)

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusInternalServerError, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis outage fails open", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		mock.ExpectSetNX(key, "pending", idempotencyPendingTTL).SetErr(errors.New("connection refused"))

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Equal(t, 1, calls)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		calls := 0

		w := httptest.NewRecorder()
		Idempotency(client, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest(""))

		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil client passes through", func(t *testing.T) {
		calls := 0

		w := httptest.NewRecorder()
		Idempotency(nil, testTTL, zerolog.Nop())(countingHandler(http.StatusCreated, &calls)).ServeHTTP(w, newRequest("abc-123"))

		assert.Equal(t, 1, calls)
	})
}
