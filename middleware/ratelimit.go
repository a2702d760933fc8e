// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// minIdle is the shortest time an unused client bucket is kept
const minIdle = 10 * time.Minute

// RateLimiter applies a token bucket per client IP. Buckets unused for
// longer than it takes them to refill are dropped.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	rate     rate.Limit
	burst    int
	idle     time.Duration

	// trustProxy keys clients by X-Forwarded-For / X-Real-IP instead of
	// the connection's peer address
	trustProxy bool
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// Set trustProxy only when the server sits behind a proxy that overwrites
// forwarding headers.
func NewRateLimiter(perMinute float64, burst int, trustProxy bool) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}

	idle := minIdle
	if perMinute > 0 {
		if refill := time.Duration(float64(burst) / perMinute * float64(time.Minute)); refill > idle {
			idle = refill
		}
	}

	return &RateLimiter{
		limiters:   gocache.New(idle, idle),
		rate:       rate.Limit(perMinute / 60),
		burst:      burst,
		idle:       idle,
		trustProxy: trustProxy,
	}
}

// Allow reports whether key may make a request now
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.rate, l.burst)
	}
	// every use pushes expiry out again
	l.limiters.Set(key, lim, l.idle)
	return lim
}

// clientKey is the peer address unless forwarding headers are trusted
func (l *RateLimiter) clientKey(r *http.Request) string {
	if l.trustProxy {
		return GetClientIP(r)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Limit wraps a handler, answering 429 once a client exceeds its budget.
// A nil limiter passes every request through.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientKey(r)
		if !l.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next(w, r)
	}
}
