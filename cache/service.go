package cache

import (
	"context"
	"time"
)

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FactoryFn produces the value for a missing or stale key.
type FactoryFn[T any] func(ctx context.Context) (T, error)

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Stores    int64
	Evictions int64
}

// CacheService exposes the read-through and invalidation operations used by the catalog services.
//
// Implementations must be safe for concurrent use without locking by callers.
// Entries are independent of each other, so no cross-key locking is required.
type CacheService interface {
	// GetOrCreate returns the live entry stored under key when accepts approves it.
	// A missing, expired or rejected entry is evicted and factory is called; a non-nil
	// result is stored for ttl. Only errors returned by factory reach the caller.
	GetOrCreate(ctx context.Context, key string, ttl time.Duration, accepts func(any) bool, factory func(context.Context) (any, error)) (any, error)
	// Remove evicts one key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error
	// RemoveMany evicts several keys.
	RemoveMany(ctx context.Context, keys []string) error
	// RemoveByPrefix evicts every key starting with prefix.
	RemoveByPrefix(ctx context.Context, prefix string) error
	Stats() Stats
}

// GetOrCreate is a type-safe wrapper around CacheService.GetOrCreate.
// An entry holding a value that is not a T is never returned: it counts as a
// miss, is evicted and replaced by the factory result.
func GetOrCreate[T any](ctx context.Context, service CacheService, key string, ttl time.Duration, factory FactoryFn[T]) (T, error) {
	accepts := func(v any) bool {
		_, ok := v.(T)
		return ok
	}

	result, err := service.GetOrCreate(ctx, key, ttl, accepts, func(ctx context.Context) (any, error) {
		return factory(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	// A nil interface result means the factory produced a nil T.
	value, ok := result.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return value, nil
}
