package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	rl := newRateLimiter(3, time.Hour)

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
	assert.Positive(t, rl.retryAfter())
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)

	require.True(t, rl.allow())
	require.False(t, rl.allow())

	assert.Eventually(t, rl.allow, time.Second, 5*time.Millisecond)
}

func TestRateLimiter_InvalidParametersAreClamped(t *testing.T) {
	rl := newRateLimiter(0, 0)

	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	limiter := newIPRateLimiter(RateLimitConfig{Burst: 2, RefillInterval: time.Hour}, logs.GetLoggerFromLevel(slog.LevelDebug))
	handler := limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		r.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusNoContent, serve("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, serve("10.0.0.1:1001").Code)

	rejected := serve("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.NotEmpty(t, rejected.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, serve("10.0.0.2:1000").Code, "buckets are per IP")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	r.RemoteAddr = "192.168.1.5:4242"
	assert.Equal(t, "192.168.1.5", clientIP(r))

	r.RemoteAddr = "[::1]:4242"
	assert.Equal(t, "::1", clientIP(r))

	r.RemoteAddr = "garbage"
	assert.Equal(t, "garbage", clientIP(r))
}
