// Package ratelimit throttles form submissions per client with a Redis sliding window.
package ratelimit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

const keyPrefix = "coinova:rl:"

const msgTooMany = "Too many requests, please try again later."

// Each request is a sorted-set member scored by its arrival time in ms.
// Entries older than the window are dropped before counting.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, window + 1000)
    return 1
end
return 0
`)

// Limiter allows at most limit requests per key within window.
type Limiter struct {
	client *redis.Client
	logger *zap.SugaredLogger
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter returns a Limiter. A limit of zero or less disables limiting.
func NewLimiter(client *redis.Client, logger *zap.SugaredLogger, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether one more request for key fits in the current window.
// Redis failures allow the request.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client, []string{keyPrefix + key},
		now, l.window.Milliseconds(), l.limit, utilities.NewKSUID(),
	).Int64()
	if err != nil {
		l.logger.Errorw("rate limiter script failed", "err", err, "key", key)
		return true
	}
	if res == 0 {
		l.logger.Debugw("rate limited", "key", key, "limit", l.limit)
		return false
	}
	return true
}

// Middleware rejects requests from a client that exhausted its window with
// 429 and the JSON message body used by the form endpoints.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Context(), clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter(l.window))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": msgTooMany})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys on RemoteAddr. Forwarded headers count only when the router
// rewrote RemoteAddr from them (TRUST_PROXY).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func retryAfter(window time.Duration) string {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
