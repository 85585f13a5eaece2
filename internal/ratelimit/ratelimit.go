package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gymsaathiide/gymaccess/internal/response"
	"github.com/gymsaathiide/gymaccess/pkg/logger"
)

// Limiter is a fixed-window counter on redis. The scan endpoint sits
// behind it keyed by caller identity and client IP.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow increments the window counter for key and reports whether the
// caller is still under the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

// Middleware rejects requests over the limit for any of the keys keyFunc
// derives from the request. Redis being down fails open: rate limiting is
// protection, not a correctness requirement.
func (l *Limiter) Middleware(keyFunc func(r *http.Request) []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, key := range keyFunc(r) {
				ok, err := l.Allow(r.Context(), key)
				if err != nil {
					logger.WarnContext(r.Context(), "Rate limiter unavailable", "error", err)
					break
				}
				if !ok {
					response.RateLimit(w, "Too many scan attempts. Try again later.")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the remote IP without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
