package limiter

import (
	"sync"
	"time"
)

// Limiter is the interface that all rate limiters must implement
// This allows us to easily swap between in-memory and Redis implementations
type Limiter interface {
	// Allow checks if a request from the given IP should be allowed
	// Returns true if allowed, false if rate limited
	Allow(ip string) bool

	// Close cleans up any resources (Redis connections, goroutines, etc.)
	Close() error
}

// TokenBucket holds the token bucket state for a single client
//
// Tokens refill continuously at a fixed rate and each request consumes one.
// A full bucket lets a client burst up to its capacity, after which requests
// are rejected until enough time has passed to refill
type TokenBucket struct {
	tokens     float64    // Tokens currently available
	capacity   float64    // Maximum tokens (burst size)
	refillRate float64    // Tokens added per second
	lastRefill time.Time  // Last time tokens were added
	mu         sync.Mutex // Protects tokens and lastRefill
}

// NewTokenBucket creates a new token bucket that starts full
//
// Parameters:
//   - rate: tokens per second (e.g., 10 = 10 requests/second)
//   - capacity: maximum tokens (burst size, usually same as rate)
func NewTokenBucket(rate float64, capacity float64) *TokenBucket {
	// Fractional rates (e.g., 0.2) would give a capacity below 1 and block
	// even the first request, so both start at 1 minimum
	return &TokenBucket{
		tokens:     max(capacity, 1.0),
		capacity:   max(capacity, 1.0),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available
//
// Returns:
//   - bool: true if request is allowed, false if rate limited
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}

	return false
}

// refill adds tokens for the elapsed time since the last refill
// Must be called with the mutex held
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// elapsed_time * rate, capped at capacity
	tb.tokens = min(tb.tokens+elapsed*tb.refillRate, tb.capacity)
	tb.lastRefill = now
}

// MemoryLimiter manages token buckets for multiple clients (per-IP)
// Thread-safe using sync.Map
// This is an in-memory implementation suitable for single-server deployments
type MemoryLimiter struct {
	buckets     sync.Map // map[string]*TokenBucket - keyed by IP address
	rate        float64  // Tokens per second
	capacity    float64  // Maximum tokens (burst size)
	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter
//
// Parameters:
//   - requestsPerSecond: allowed requests per second per IP (can be fractional, e.g., 0.2)
func NewMemoryLimiter(requestsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		rate:        requestsPerSecond,
		capacity:    requestsPerSecond, // Burst size equals rate (can burst up to 1 second worth)
		lastCleanup: time.Now(),
	}
}

// Allow checks if a request from the given IP should be allowed
// This is called by the middleware for each request
func (rl *MemoryLimiter) Allow(ip string) bool {
	bucket := rl.getBucket(ip)
	allowed := bucket.Allow()

	// Periodically drop idle buckets so long-running servers don't leak
	rl.maybeCleanup()

	return allowed
}

// getBucket gets or creates a token bucket for an IP address
// Thread-safe using sync.Map's LoadOrStore
func (rl *MemoryLimiter) getBucket(ip string) *TokenBucket {
	if value, ok := rl.buckets.Load(ip); ok {
		return value.(*TokenBucket)
	}

	// LoadOrStore handles the race where two requests for a new IP arrive
	// at once; both end up sharing whichever bucket won the store
	bucket := NewTokenBucket(rl.rate, rl.capacity)
	actual, _ := rl.buckets.LoadOrStore(ip, bucket)
	return actual.(*TokenBucket)
}

// maybeCleanup removes buckets that have been idle for 5+ minutes
// Runs at most once every 5 minutes
func (rl *MemoryLimiter) maybeCleanup() {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}

	threshold := time.Now().Add(-5 * time.Minute)

	rl.buckets.Range(func(key, value interface{}) bool {
		bucket := value.(*TokenBucket)
		bucket.mu.Lock()
		lastAccess := bucket.lastRefill
		bucket.mu.Unlock()

		if lastAccess.Before(threshold) {
			rl.buckets.Delete(key)
		}

		return true // continue iteration
	})

	rl.lastCleanup = time.Now()
}

// Close satisfies the Limiter interface
// The in-memory implementation has no resources to release
func (rl *MemoryLimiter) Close() error {
	return nil
}
