package catalog

import (
	"context"

	"github.com/goliatone/go-recipe-catalog/datastore/bunstore"
	"github.com/goliatone/go-recipe-catalog/datastore/memstore"
)

// MemoryTables binds the catalog to an in-memory store. Multi-table writes
// are rolled back from a snapshot on failure.
func MemoryTables(mem *memstore.Store) Tables {
	tables := memoryTables(mem)
	tables.Tx = func(ctx context.Context, fn func(context.Context, Tables) error) error {
		return mem.RunInTx(ctx, func(ctx context.Context, tx *memstore.Store) error {
			return fn(ctx, memoryTables(tx))
		})
	}
	return tables
}

func memoryTables(mem *memstore.Store) Tables {
	return Tables{
		Recipes:     mem.Recipes,
		Books:       mem.Books,
		Authors:     mem.Authors,
		BookAuthors: mem.BookAuthors,
		Stores:      mem.Stores,
	}
}

// SQLTables binds the catalog to a database. Multi-table writes run in a
// database transaction.
func SQLTables(db *bunstore.DB) Tables {
	tables := sqlTables(db)
	tables.Tx = func(ctx context.Context, fn func(context.Context, Tables) error) error {
		return db.RunInTx(ctx, func(ctx context.Context, tx *bunstore.DB) error {
			return fn(ctx, sqlTables(tx))
		})
	}
	return tables
}

func sqlTables(db *bunstore.DB) Tables {
	return Tables{
		Recipes:     db.Recipes,
		Books:       db.Books,
		Authors:     db.Authors,
		BookAuthors: db.BookAuthors,
		Stores:      db.Stores,
	}
}
