// Package cache provides a Redis-backed cache for OPTIMADE query
// responses.
//
// OPTIMADE collections change rarely relative to how often the same
// query is issued (resubmits after errors, repeated page walks), so
// successful response bodies are cached keyed by the request URL. TTL
// comes from the provider's Expires header when present, with a
// conservative default otherwise.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key, err := cache.NewKey("https://example.org/v1/structures?filter=nelements%3D2&page_limit=10")
//	if err != nil {
//		return err
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the provider, then:
//		// manager.Set(ctx, key, cache.NewEntry(body, statusCode, headers))
//	}
//
// # Metrics
//
// The cache exports Prometheus metrics:
//
//   - optimade_cache_hits_total - Cache hits
//   - optimade_cache_misses_total - Cache misses
//   - optimade_cache_errors_total{operation} - Cache operation errors
package cache
