// Package cache provides the read-through cache used by the catalog services
// and the key serializer that builds their cache keys.
//
// # Overview
//
//   - CacheService: per-key get-or-create with TTL, removal by key, by key list and by prefix
//   - GetOrCreate: a generic wrapper that type checks cached values
//   - KeySerializer: builds stable keys from a method name and arguments
//
// A service is constructed once per process with NewCacheService and shared:
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig(), logger)
//	recipes, err := cache.GetOrCreate(ctx, svc, "recipe::all", 5*time.Minute,
//		func(ctx context.Context) ([]*model.Recipe, error) {
//			return store.FetchAll(ctx)
//		})
//
// # Semantics
//
// Entries expire lazily: an expired entry is dropped when it is next read.
// An entry whose value is not of the requested type is treated as a miss and
// replaced. Nil factory results are returned but never stored. Keys rejected
// by ValidKey bypass the cache and always call the factory.
//
// Only factory errors reach the caller. Failures in the cache bookkeeping are
// logged and the factory result is still returned.
//
// # Keys
//
// The default serializer renders arguments deterministically (sorted maps,
// dereferenced pointers, exported struct fields). Function values render as
// their pointer and are only stable within one process. Keys longer than
// MaxKeyLength keep their method prefix and hash the remaining segments, so
// RemoveByPrefix on the method still matches them.
package cache
