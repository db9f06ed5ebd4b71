package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript counts requests per window atomically on the Redis server
// The EXPIRE on first increment gives keys automatic cleanup
const rateLimitScript = `
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local ttl = tonumber(ARGV[2])

	local current = redis.call('INCR', key)

	if current == 1 then
		redis.call('EXPIRE', key, ttl)
	end

	return current
`

// RedisLimiter implements distributed rate limiting using Redis
// This is suitable for multi-server deployments where rate limits need to be
// shared across all instances
//
// Counting happens per fixed time window with keys of the form
// "ratelimit:{ip}:{window}", incremented atomically via a Lua script
type RedisLimiter struct {
	client         *redis.Client
	ctx            context.Context
	requestsPerSec float64
	windowSize     time.Duration // Time window for rate limiting (e.g., 1 second)
}

// NewRedisLimiter creates a new Redis-based rate limiter
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
//   - requestsPerSecond: allowed requests per second per IP (can be fractional, e.g., 0.2)
//
// Returns:
//   - *RedisLimiter: new Redis rate limiter instance
//   - error: any error that occurred during connection
func NewRedisLimiter(addr, password string, db int, requestsPerSecond float64) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	// Integer rates count within a 1-second window. Fractional rates need a
	// wider window or nothing would ever be allowed: 0.2 req/s becomes
	// 1 request per 5-second window
	windowSize := time.Second
	if requestsPerSecond < 1.0 {
		windowSize = time.Duration(float64(time.Second) / requestsPerSecond)
	}

	return &RedisLimiter{
		client:         client,
		ctx:            ctx,
		requestsPerSec: requestsPerSecond,
		windowSize:     windowSize,
	}, nil
}

// Allow checks if a request from the given IP should be allowed
//
// The key is derived from the IP and the current window index, so all server
// instances sharing the Redis see the same counter. The Lua script increments
// and expires in one atomic step; the count it returns is compared against
// the per-window limit
//
// Parameters:
//   - ip: client IP address
//
// Returns:
//   - bool: true if request is allowed, false if rate limited
func (rl *RedisLimiter) Allow(ip string) bool {
	// Key format: ratelimit:192.168.1.1:1640000000
	// The window index advances every windowSize seconds
	windowSeconds := int64(rl.windowSize.Seconds())
	window := time.Now().Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%d", ip, window)

	// TTL is twice the window so a key never expires mid-window
	result, err := rl.client.Eval(rl.ctx, rateLimitScript, []string{key}, rl.requestsPerSec, int(rl.windowSize.Seconds())*2).Result()
	if err != nil {
		// On Redis error, fail open (allow the request) to avoid blocking legitimate traffic
		return true
	}

	count, ok := result.(int64)
	if !ok {
		// If type assertion fails, fail open
		return true
	}

	// Allow ceiling of (rate * window) requests per window
	// Example: 0.2 req/s * 5 sec = 1 req per 5-second window
	limit := int64(math.Ceil(rl.requestsPerSec * rl.windowSize.Seconds()))
	return count <= limit
}

// Close closes the Redis connection and cleans up resources
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
