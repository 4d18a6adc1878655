// Package middleware holds the HTTP middleware the server mounts: security
// headers on every response and a per-client rate limit on submissions.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/conneroisu/folio/internal/logging"
)

// RateLimit represents a rate limiter configuration.
type RateLimit struct {
	RequestsPerMinute int
	BurstLimit        int
}

// RateLimiter implements a token bucket rate limiter per client IP.
type RateLimiter struct {
	config  RateLimit
	buckets map[string]*tokenBucket
	mutex   sync.Mutex
	logger  logging.Logger
	now     func() time.Time

	cleanupTicker *time.Ticker
	done          chan struct{}
	stopOnce      sync.Once
}

type tokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter and starts its bucket cleanup.
// A BurstLimit below one defaults to RequestsPerMinute.
func NewRateLimiter(config RateLimit, logger logging.Logger) *RateLimiter {
	if config.RequestsPerMinute < 1 {
		config.RequestsPerMinute = 1
	}
	if config.BurstLimit < 1 {
		config.BurstLimit = config.RequestsPerMinute
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	rl := &RateLimiter{
		config:        config,
		buckets:       make(map[string]*tokenBucket),
		logger:        logger.WithComponent("ratelimit"),
		now:           time.Now,
		cleanupTicker: time.NewTicker(5 * time.Minute),
		done:          make(chan struct{}),
	}
	go rl.cleanup()

	return rl
}

// RateLimit returns a middleware that rejects requests over the limit with
// 429 and a Retry-After header.
func (rl *RateLimiter) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.allow(ip) {
				rl.logger.Warn(r.Context(), nil, "Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.refillRate().Seconds())+1))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) refillRate() time.Duration {
	return time.Minute / time.Duration(rl.config.RequestsPerMinute)
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	bucket, exists := rl.buckets[ip]
	if !exists {
		bucket = &tokenBucket{
			tokens:     rl.config.BurstLimit,
			maxTokens:  rl.config.BurstLimit,
			refillRate: rl.refillRate(),
			lastRefill: now,
		}
		rl.buckets[ip] = bucket
	}

	return bucket.consume(now)
}

func (tb *tokenBucket) consume(now time.Time) bool {
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed / tb.refillRate)

	if tokensToAdd > 0 {
		tb.tokens = min(tb.maxTokens, tb.tokens+tokensToAdd)
		tb.lastRefill = tb.lastRefill.Add(time.Duration(tokensToAdd) * tb.refillRate)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// cleanup drops buckets idle for ten minutes.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.prune(rl.now().Add(-10 * time.Minute))
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) prune(cutoff time.Time) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	for ip, bucket := range rl.buckets {
		if bucket.lastRefill.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.done)
	})
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr from
// forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
