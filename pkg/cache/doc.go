// Package cache provides an optional response cache for Yupdates feed reads.
//
// Reads are cached in two layers, both optional:
//
//   - an in-process expirable LRU (fast, per process)
//   - Redis (shared between processes)
//
// Only successful read responses are cached. Submissions and pings never are.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager, err := cache.NewManager(cache.Config{
//		Redis:      redisClient,
//		MemorySize: 256,
//		MemoryTTL:  30 * time.Second,
//	})
//
//	key := cache.CacheKey{
//		Endpoint:    "feeds/02fb24a4478462a4491067224b66d9a8b2338ddca2737/",
//		QueryParams: url.Values{"max_items": []string{"10"}},
//		Token:       token,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// read from the API, then manager.Set(ctx, key, cache.NewEntry(200, body, ttl))
//	}
//
// # Freshness
//
// A read for the latest items can change as soon as something is submitted,
// so it should get a short TTL. A read bounded by item_time_before covers
// items that already exist and can be kept much longer. The client picks
// the TTL; the manager only enforces it.
//
// # Metrics
//
//   - yupdates_cache_hits_total{layer} - Cache hits by layer (memory, redis)
//   - yupdates_cache_misses_total - Cache misses
//   - yupdates_cache_errors_total{operation} - Cache operation errors
package cache
