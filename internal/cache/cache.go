// Package cache stores completed assessments keyed by the patient
// parameter record, so identical requests skip the classifier entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/heartguard-server/internal/domain"
)

// ResultCache caches assessment results in Redis with a small in-process
// LRU in front of it. The LRU absorbs repeat lookups within one node; Redis
// shares results across nodes and survives restarts.
type ResultCache struct {
	redis      *redis.Client
	memory     *lru.Cache[string, *domain.AssessmentResult]
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// cachedResult wraps a stored result with cache metadata.
type cachedResult struct {
	Data      *domain.AssessmentResult `json:"data"`
	CachedAt  time.Time                `json:"cached_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// New connects to Redis and builds the two-tier cache.
func New(config domain.CacheConfig, logger *logrus.Logger) (*ResultCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	memorySize := config.MemorySize
	if memorySize <= 0 {
		memorySize = 256
	}
	memory, err := lru.New[string, *domain.AssessmentResult](memorySize)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &ResultCache{
		redis:      client,
		memory:     memory,
		defaultTTL: config.DefaultTTL,
		logger:     logger,
	}, nil
}

// Get returns a previously cached assessment for the same parameter record.
func (c *ResultCache) Get(ctx context.Context, params domain.PatientParameters) (*domain.AssessmentResult, bool, error) {
	key := Key(params)

	if result, ok := c.memory.Get(key); ok {
		return result, true, nil
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get assessment cache: %w", err)
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	c.memory.Add(key, cached.Data)
	return cached.Data, true, nil
}

// Set caches a completed assessment under its parameter record.
func (c *ResultCache) Set(ctx context.Context, params domain.PatientParameters, result *domain.AssessmentResult) error {
	key := Key(params)

	cached := cachedResult{
		Data:      result,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(c.defaultTTL),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached assessment: %w", err)
	}

	c.memory.Add(key, result)
	if err := c.redis.Set(ctx, key, jsonData, c.defaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to set assessment cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"ttl":       c.defaultTTL,
	}).Debug("Assessment cached")

	return nil
}

// Ping checks if the Redis connection is alive.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	c.memory.Purge()
	return c.redis.Close()
}

// Key derives a deterministic cache key from a full parameter record. Two
// records with identical clinical values always map to the same key.
func Key(params domain.PatientParameters) string {
	vector := params.FeatureVector()

	data := ""
	for i, v := range vector {
		if i > 0 {
			data += ":"
		}
		data += fmt.Sprintf("%g", v)
	}

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("assessment:params:%x", hash[:8]) // Use first 8 bytes of hash
}
