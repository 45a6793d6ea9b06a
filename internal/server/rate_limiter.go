// Package server implements a token bucket rate limiter keyed by client IP
// that guards the plain HTTP routes.
package server

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type rateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	rate      float64
	lastCheck time.Time
}

func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	rate := float64(capacity) / interval.Seconds()
	if rate <= 0 {
		rate = float64(capacity)
	}

	return &rateLimiter{
		tokens:    float64(capacity),
		capacity:  float64(capacity),
		rate:      rate,
		lastCheck: time.Now(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastCheck).Seconds()
	rl.lastCheck = now

	if elapsed > 0 {
		rl.tokens += elapsed * rl.rate
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
	}

	if rl.tokens < 1 {
		return false
	}

	rl.tokens--
	return true
}

// retryAfter estimates how long until one token is available again.
func (rl *rateLimiter) retryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	missing := 1 - rl.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / rl.rate * float64(time.Second))
}

// ipRateLimiter hands out one bucket per client IP.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateLimiter
	cfg     RateLimitConfig
	log     *slog.Logger
}

func newIPRateLimiter(cfg RateLimitConfig, log *slog.Logger) *ipRateLimiter {
	return &ipRateLimiter{
		buckets: make(map[string]*rateLimiter),
		cfg:     cfg,
		log:     log,
	}
}

func (l *ipRateLimiter) limiterFor(ip string) *rateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl, ok := l.buckets[ip]
	if !ok {
		rl = newRateLimiter(l.cfg.Burst, l.cfg.RefillInterval)
		l.buckets[ip] = rl
	}
	return rl
}

// middleware rejects requests over the per-IP ceiling with 429.
func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		rl := l.limiterFor(ip)
		if !rl.allow() {
			wait := int(math.Ceil(rl.retryAfter().Seconds()))
			if wait < 1 {
				wait = 1
			}
			l.log.Warn("HTTP rate limit exceeded", "remote", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(wait))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
