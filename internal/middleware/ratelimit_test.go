package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func limitedHandler(client redis.Cmdable, requests int, now func() time.Time) http.Handler {
	cfg := RateLimitConfig{
		Requests:  requests,
		Window:    time.Minute,
		KeyPrefix: "test",
		Now:       now,
	}
	return RateLimitMiddleware(client, cfg, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Feature: stock-ledger, Property 11: Requests above the window limit get 429
func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	fixed := time.Date(2024, time.June, 1, 10, 0, 30, 0, time.UTC)

	properties.Property("exactly the limit passes within one window", prop.ForAll(
		func(limit, excess int) bool {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("Failed to start miniredis: %v", err)
			}
			defer mr.Close()

			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer client.Close()

			handler := limitedHandler(client, limit, func() time.Time { return fixed })

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				switch hit(handler, "192.168.1.100:5123").Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}
			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

func TestRateLimit_NewWindowResetsCount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Date(2024, time.June, 1, 10, 0, 59, 0, time.UTC)
	handler := limitedHandler(client, 1, func() time.Time { return now })

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1").Code)
	w := hit(handler, "10.0.0.1:2")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// other clients have their own counter
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1").Code)

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:3").Code)
}

func TestRateLimit_KeysByOperator(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:9000"
	assert.Equal(t, "ip:10.1.1.1", clientKey(req))

	req = req.WithContext(context.WithValue(req.Context(), OperatorKey, "clerk"))
	assert.Equal(t, "operator:clerk", clientKey(req))
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	w := hit(limitedHandler(client, 1, nil), "10.0.0.1:1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
