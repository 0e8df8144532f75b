package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Config selects the cache layers. At least one must be enabled.
type Config struct {
	// Redis enables the shared layer when non-nil.
	Redis *redis.Client

	// MemorySize enables the in-process layer when > 0 (max entries).
	MemorySize int

	// MemoryTTL caps how long an entry lives in the in-process layer.
	// Entries still expire earlier if their own Expires says so.
	MemoryTTL time.Duration
}

// DefaultConfig returns a configuration using both layers.
func DefaultConfig(redisClient *redis.Client) Config {
	return Config{
		Redis:      redisClient,
		MemorySize: 256,
		MemoryTTL:  10 * time.Minute,
	}
}

// Manager handles caching operations over the memory and Redis layers.
type Manager struct {
	redis  *redis.Client
	memory *expirable.LRU[string, CacheEntry]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Redis == nil && cfg.MemorySize <= 0 {
		return nil, fmt.Errorf("cache needs a redis client or a memory size")
	}

	m := &Manager{redis: cfg.Redis}
	if cfg.MemorySize > 0 {
		ttl := cfg.MemoryTTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		m.memory = expirable.NewLRU[string, CacheEntry](cfg.MemorySize, nil, ttl)
	}

	return m, nil
}

// Get retrieves a cache entry by key, memory layer first.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	cacheKey := key.String()

	if m.memory != nil {
		if entry, ok := m.memory.Get(cacheKey); ok {
			if !entry.IsExpired() {
				CacheHits.WithLabelValues("memory").Inc()
				return &entry, nil
			}
			m.memory.Remove(cacheKey)
		}
	}

	if m.redis == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Get data from Redis
	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	// Unmarshal entry
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Check if expired
	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()

	// Promote to the memory layer
	if m.memory != nil {
		m.memory.Add(cacheKey, entry)
	}

	return &entry, nil
}

// Set stores a cache entry with TTL based on the entry's Expires field.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	cacheKey := key.String()

	ttl := entry.TTL()
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	if m.memory != nil {
		m.memory.Add(cacheKey, *entry)
	}

	if m.redis == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry from both layers.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	cacheKey := key.String()

	if m.memory != nil {
		m.memory.Remove(cacheKey)
	}

	if m.redis == nil {
		return nil
	}

	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
