package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/redis"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

// requestCounter is the fixed-window counter backing the rate limiter.
type requestCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, window time.Duration) error
}

// redisCounter counts requests in Redis.
type redisCounter struct {
	client *redisclient.Client
}

func (c redisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Client().Incr(ctx, key).Result()
}

func (c redisCounter) Expire(ctx context.Context, key string, window time.Duration) error {
	return c.client.Client().Expire(ctx, key, window).Err()
}

// RateLimitMiddleware enforces a fixed-window request limit per client
// IP. Requests marked throttle-exempt by the admission probe skip both
// counting and rejection. Counter failures fail open.
type RateLimitMiddleware struct {
	counter requestCounter
	window  time.Duration
	max     int
}

// NewRateLimitMiddleware creates a new rate limit middleware backed by
// Redis. A nil client disables limiting entirely.
func NewRateLimitMiddleware(client *redisclient.Client, cfg *config.RateLimitConfig) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		window: cfg.Window,
		max:    cfg.MaxRequests,
	}
	if client != nil {
		m.counter = redisCounter{client: client}
	}
	return m
}

// Middleware returns the rate limiting handler
func (m *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.counter == nil || IsThrottleExempt(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("spa:ratelimit:%s", clientIP(r))

		count, err := m.counter.Incr(r.Context(), key)
		if err != nil {
			log.Warn().Err(err).Msg("rate limit counter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if count == 1 {
			if err := m.counter.Expire(r.Context(), key, m.window); err != nil {
				log.Warn().Err(err).Msg("failed to set rate limit window")
			}
		}

		if count > int64(m.max) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":"too many requests, please try again later"}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the originating client address, honoring proxy
// headers.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
