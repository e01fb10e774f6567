package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitCleanupInterval = time.Minute
	rateLimitClientTTL       = 10 * time.Minute
)

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket. Each client may burst up to
// perMinute requests and refills at perMinute per minute.
type RateLimiter struct {
	perMinute int
	onLimit   func()

	mu      sync.Mutex
	clients map[string]*rateLimitClient
}

// NewRateLimiter creates a limiter and starts its cleanup loop, which stops
// when ctx ends. onLimit, when non-nil, is called for every rejection.
func NewRateLimiter(ctx context.Context, perMinute int, onLimit func()) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &RateLimiter{
		perMinute: perMinute,
		onLimit:   onLimit,
		clients:   make(map[string]*rateLimitClient),
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.lastSeen) > rateLimitClientTTL {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// Allow consumes one token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &rateLimitClient{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.perMinute),
		}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// Handler rejects requests over the limit with 429 and a Retry-After hint.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(max(1, 60/rl.perMinute))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r)) {
			if rl.onLimit != nil {
				rl.onLimit()
			}
			w.Header().Set("Retry-After", retryAfter)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate limit exceeded",
				"message": "Too many requests",
				"action":  "Please wait a moment before trying again",
				"code":    "RATE001",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
