package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/catalog"
	"github.com/goliatone/go-recipe-catalog/datastore/bunstore"
	"github.com/goliatone/go-recipe-catalog/datastore/memstore"
)

// FixedClock returns a clock frozen at 2024-01-01 12:00 UTC.
func FixedClock() func() time.Time {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

// NewCacheService builds a cache service with default settings.
func NewCacheService(t testing.TB) cache.CacheService {
	t.Helper()

	svc, err := cache.NewCacheService(cache.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create cache service: %v", err)
	}
	return svc
}

// NewMemoryCatalog builds a catalog over fresh in-memory tables. The tables
// are returned so tests can inspect call counts and inject failures.
func NewMemoryCatalog(t testing.TB, opts ...catalog.Option) (*catalog.Catalog, *memstore.Store) {
	t.Helper()

	mem := memstore.New()
	c := catalog.New(catalog.MemoryTables(mem), NewCacheService(t), opts...)
	return c, mem
}

// NewSQLiteDB opens an in-memory SQLite database with the catalog schema.
// It is closed when the test ends.
func NewSQLiteDB(t testing.TB) *bunstore.DB {
	t.Helper()

	db, err := bunstore.Open(bunstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.CreateSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// NewSQLiteCatalog builds a catalog over an in-memory SQLite database.
func NewSQLiteCatalog(t testing.TB, opts ...catalog.Option) (*catalog.Catalog, *bunstore.DB) {
	t.Helper()

	db := NewSQLiteDB(t)
	c := catalog.New(catalog.SQLTables(db), NewCacheService(t), opts...)
	return c, db
}
