package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"postboard/internal/shared/httpx"
)

type Limiter struct{ R *redis.Client }

func New(r *redis.Client) *Limiter { return &Limiter{R: r} }

// AllowSliding counts a hit for key and reports whether it is within limit.
// Every hit pushes the expiry out by window.
func (l *Limiter) AllowSliding(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.R.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// ByClientIP keys requests by the caller address.
func ByClientIP(prefix string) func(*http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		ip := httpx.ClientIP(r)
		if ip == "" {
			return "", fmt.Errorf("no client address")
		}
		return prefix + ":" + ip, nil
	}
}

func (l *Limiter) LimitHTTP(limit int64, window time.Duration, keyFn func(*http.Request) (string, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := keyFn(r)
		if err != nil || key == "" {
			httpx.WriteError(w, http.StatusBadRequest, err, "missing_client")
			return
		}
		ok, n, e := l.AllowSliding(r.Context(), key, limit, window)
		if e != nil {
			httpx.LogError(r, e)
			httpx.WriteError(w, http.StatusTooManyRequests, fmt.Errorf("rate limiter error"), "rate_limiter_error")
			return
		}
		if !ok {
			httpx.WriteError(w, http.StatusTooManyRequests,
				fmt.Errorf("rate limit exceeded (count=%d, limit=%d)", n, limit),
				"rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware adapts LimitHTTP to the func(http.Handler) http.Handler shape.
// A nil Limiter passes everything through.
func (l *Limiter) Middleware(limit int64, window time.Duration, keyFn func(*http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return l.LimitHTTP(limit, window, keyFn, next)
	}
}
