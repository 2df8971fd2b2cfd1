// Package datastore defines the query surface the catalog core consumes.
//
// A Store is bound to one table. Lookups that return identifiers are kept
// separate from bulk fetches so that callers can combine several cheap id
// lookups in memory before loading the records they actually need.
//
// Field and sort names are column names (see the model package). Stores only
// accept columns from their own allowlist and reject the rest with
// ErrUnknownField, so caller-supplied names never reach a query verbatim.
package datastore

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable marks failures caused by the store being unreachable.
	ErrUnavailable = errors.New("datastore: unavailable")

	// ErrUnknownField is returned for a field or sort column outside the allowlist.
	ErrUnknownField = errors.New("datastore: unknown field")
)

// Record is implemented by every catalog record pointer.
type Record interface {
	GetID() int64
	SetID(id int64)
}

// FetchOptions controls ordering and paging of FetchByIDs.
// An empty SortColumn performs no explicit ordering. Take <= 0 means no limit.
type FetchOptions struct {
	SortColumn string
	Descending bool
	Skip       int
	Take       int
}

// Store is the per-table query surface. Methods returning a single *M return
// nil with a nil error when nothing matched or nothing was written.
type Store[M any] interface {
	// FindIDs returns every id in the table.
	FindIDs(ctx context.Context) ([]int64, error)
	// FindIDsByField matches a case-insensitive substring against a text column.
	FindIDsByField(ctx context.Context, field, pattern string) ([]int64, error)
	// FindIDsByFieldIn matches an integer column against a set of values.
	FindIDsByFieldIn(ctx context.Context, field string, values []int64) ([]int64, error)
	// FindIDsByFieldEquals matches a column against a single value.
	FindIDsByFieldEquals(ctx context.Context, field string, value any) ([]int64, error)
	FetchByIDs(ctx context.Context, ids []int64, opts FetchOptions) ([]*M, error)
	FetchAll(ctx context.Context) ([]*M, error)
	FetchSingle(ctx context.Context, id int64) (*M, error)
	Insert(ctx context.Context, record *M) (*M, error)
	UpdateByID(ctx context.Context, id int64, record *M) (*M, error)
	DeleteByID(ctx context.Context, id int64) error
}
