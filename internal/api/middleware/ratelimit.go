package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RateLimit defines a request budget for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements per-IP sliding window rate limiting. All state is
// process-local, like the rest of the server.
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limits  map[string]RateLimit
	logger  zerolog.Logger
	lastGC  time.Time
	maxIdle time.Duration
}

// NewRateLimiter creates a rate limiter guarding the endpoints where abuse
// hurts: password guessing and room join floods.
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		hits:    make(map[string][]time.Time),
		logger:  logger,
		lastGC:  time.Now(),
		maxIdle: 10 * time.Minute,
		limits: map[string]RateLimit{
			"POST /rooms/": {30, time.Minute},
			"GET /ws":      {60, time.Minute},
		},
	}
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := rl.findLimit(r)
		if limit == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		allowed, remaining, resetAt := rl.take(ip+" "+r.Method, limit)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			rl.logger.Warn().
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take records a hit for key and reports whether it fits the window.
func (rl *RateLimiter) take(key string, limit *RateLimit) (bool, int, time.Time) {
	now := time.Now()
	windowStart := now.Add(-limit.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastGC) > rl.maxIdle {
		rl.gc(now)
	}

	recent := rl.hits[key][:0]
	for _, t := range rl.hits[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	allowed := len(recent) < limit.Requests
	if allowed {
		recent = append(recent, now)
	}
	rl.hits[key] = recent

	remaining := limit.Requests - len(recent)
	if remaining < 0 {
		remaining = 0
	}
	resetAt := now.Add(limit.Window)
	if len(recent) > 0 {
		resetAt = recent[0].Add(limit.Window)
	}
	return allowed, remaining, resetAt
}

// gc drops keys with no hits inside the idle horizon. Caller holds the lock.
func (rl *RateLimiter) gc(now time.Time) {
	horizon := now.Add(-rl.maxIdle)
	for key, times := range rl.hits {
		if len(times) == 0 || times[len(times)-1].Before(horizon) {
			delete(rl.hits, key)
		}
	}
	rl.lastGC = now
}

func (rl *RateLimiter) findLimit(r *http.Request) *RateLimit {
	key := r.Method + " " + r.URL.Path
	for pattern, limit := range rl.limits {
		if strings.HasPrefix(key, pattern) {
			l := limit
			return &l
		}
	}
	return nil
}

// clientIP trusts chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
