// Package ratelimit provides per-IP rate limiting for the query API,
// backed by Redis via ulule/limiter/v3's token-bucket store. Grounded in
// the teacher's delivery/http/middleware package shape: a constructor plus
// an http.Handler-wrapping middleware function.
package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/user/listing-pipeline/pkg/metrics"
)

// Limiter wraps a ulule/limiter/v3 instance configured with a Redis store.
type Limiter struct {
	instance *limiter.Limiter
}

// New builds a Limiter allowing points requests per duration, per client
// IP, using client as the backing Redis store.
func New(client *redis.Client, points int64, duration time.Duration) (*Limiter, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "listing_pipeline_ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: new store: %w", err)
	}

	rate := limiter.Rate{Period: duration, Limit: points}
	return &Limiter{instance: limiter.New(store, rate)}, nil
}

// Middleware enforces the rate limit per client IP, responding 429 with a
// Retry-After header when exceeded. A backing-store error fails open: the
// request is allowed through and the error is logged, since a Redis outage
// must not take down the query API.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		ctx, err := l.instance.Get(r.Context(), ip)
		if err != nil {
			slog.Warn("ratelimit: backing store error, failing open", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if ctx.Reached {
			metrics.RateLimitExceededTotal.Inc()
			retryAfter := int(ctx.Reset - time.Now().Unix())
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
