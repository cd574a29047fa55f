package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestLimiter(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLimiter(client, zap.NewNop().Sugar(), limit, time.Minute), mr
}

func TestLimiter_AllowsWithinLimit(t *testing.T) {
	l, _ := setupTestLimiter(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow(ctx, "10.0.0.1"), "request %d", i+1)
	}
	require.False(t, l.Allow(ctx, "10.0.0.1"))
}

func TestLimiter_WindowSlides(t *testing.T) {
	l, _ := setupTestLimiter(t, 2)
	ctx := context.Background()
	start := time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	require.True(t, l.Allow(ctx, "10.0.0.1"))
	require.True(t, l.Allow(ctx, "10.0.0.1"))
	require.False(t, l.Allow(ctx, "10.0.0.1"))

	l.now = func() time.Time { return start.Add(time.Minute + time.Millisecond) }
	require.True(t, l.Allow(ctx, "10.0.0.1"))
}

func TestLimiter_KeysAreIsolated(t *testing.T) {
	l, _ := setupTestLimiter(t, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "10.0.0.1"))
	require.False(t, l.Allow(ctx, "10.0.0.1"))
	require.True(t, l.Allow(ctx, "10.0.0.2"))
}

func TestLimiter_ZeroLimitAllowsAll(t *testing.T) {
	l, _ := setupTestLimiter(t, 0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.True(t, l.Allow(ctx, "10.0.0.1"))
	}
}

func TestLimiter_FailsOpen(t *testing.T) {
	l, mr := setupTestLimiter(t, 1)
	mr.Close()

	require.True(t, l.Allow(context.Background(), "10.0.0.1"))
	require.True(t, l.Allow(context.Background(), "10.0.0.1"))
}

func TestMiddleware(t *testing.T) {
	l, _ := setupTestLimiter(t, 1)
	calls := 0
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("192.0.2.1:1234").Code)

	rec := do("192.0.2.1:5678")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"message":"Too many requests, please try again later."}`, rec.Body.String())

	require.Equal(t, http.StatusOK, do("192.0.2.2:1234").Code)
	require.Equal(t, 2, calls)
}
