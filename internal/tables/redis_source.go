package tables

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keys holding the JSON-encoded table parts.
const (
	redisKeyExact    = "tables:exact"    // JSON object: domain -> location
	redisKeySuffix   = "tables:suffix"   // JSON array of suffix rules, in priority order
	redisKeyFallback = "tables:fallback" // JSON array of fallback locations
)

// RedisSource loads resolution tables from Redis
type RedisSource struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisSource creates a new Redis table source
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number (0-15, default is 0)
//
// Returns:
//   - *RedisSource: pointer to the created source
//   - error: any error that occurred during connection
func NewRedisSource(addr, password string, db int) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSource{
		client: client,
		ctx:    ctx,
	}, nil
}

// getJSON reads one key and decodes its JSON value into dest.
// Returns false with no error when the key does not exist.
func (s *RedisSource) getJSON(key string, dest any) (bool, error) {
	val, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("Redis query failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Load reads the three table keys.
// A missing key yields an empty table part; if no key exists at all the
// source reports not found so a bad address is not mistaken for empty data.
func (s *RedisSource) Load() (*Tables, error) {
	exact := make(map[string]string)
	var suffixes []SuffixRule
	var fallbacks []string

	foundExact, err := s.getJSON(redisKeyExact, &exact)
	if err != nil {
		return nil, err
	}
	foundSuffix, err := s.getJSON(redisKeySuffix, &suffixes)
	if err != nil {
		return nil, err
	}
	foundFallback, err := s.getJSON(redisKeyFallback, &fallbacks)
	if err != nil {
		return nil, err
	}

	if !foundExact && !foundSuffix && !foundFallback {
		return nil, fmt.Errorf("domain tables not found in Redis (run load-tables first)")
	}

	return New(exact, suffixes, fallbacks)
}

// Seed writes tables into Redis, replacing whatever is stored
// This is a helper method for populating Redis with data
func (s *RedisSource) Seed(t *Tables) error {
	payloads := []struct {
		key   string
		value any
	}{
		{redisKeyExact, t.exact},
		{redisKeySuffix, t.suffixes},
		{redisKeyFallback, t.fallbacks},
	}

	for _, p := range payloads {
		data, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", p.key, err)
		}

		// Store in Redis (no expiration)
		if err := s.client.Set(s.ctx, p.key, data, 0).Err(); err != nil {
			return fmt.Errorf("failed to store %s: %w", p.key, err)
		}
	}

	return nil
}

// SeedFromCSV loads a CSV table file into Redis
// This is useful for initial data population
func (s *RedisSource) SeedFromCSV(csvPath string) error {
	csvSource := NewCSVSource(csvPath)
	t, err := csvSource.Load()
	if err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}

	if err := s.Seed(t); err != nil {
		return err
	}

	fmt.Printf("Loaded %d exact, %d suffix and %d fallback entries into Redis\n",
		t.ExactCount(), t.SuffixCount(), t.FallbackCount())
	return nil
}

// IsEmpty checks if Redis has any table data
// Returns true if no keys with "tables:" prefix exist
func (s *RedisSource) IsEmpty() (bool, error) {
	keys, err := s.client.Keys(s.ctx, "tables:*").Result()
	if err != nil {
		return false, fmt.Errorf("failed to check Redis keys: %w", err)
	}
	return len(keys) == 0, nil
}

// Close closes the Redis connection
// Should be called once the tables are loaded
func (s *RedisSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
