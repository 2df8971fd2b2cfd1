package bunstore

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-recipe-catalog/model"
)

type index struct {
	name    string
	model   any
	columns []string
}

// CreateSchema creates the catalog tables and indexes when they are missing.
func (d *DB) CreateSchema(ctx context.Context) error {
	return d.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tables := []struct {
			model       any
			foreignKeys []string
		}{
			{model: (*model.Author)(nil)},
			{model: (*model.Store)(nil)},
			{model: (*model.Book)(nil)},
			{
				model: (*model.BookAuthor)(nil),
				foreignKeys: []string{
					`("book_id") REFERENCES "books" ("id") ON DELETE CASCADE`,
					`("author_id") REFERENCES "authors" ("id") ON DELETE CASCADE`,
				},
			},
			{
				model: (*model.Recipe)(nil),
				foreignKeys: []string{
					`("book_id") REFERENCES "books" ("id") ON DELETE SET NULL`,
					`("store_id") REFERENCES "stores" ("id") ON DELETE SET NULL`,
				},
			},
		}

		for _, t := range tables {
			q := tx.NewCreateTable().Model(t.model).IfNotExists()
			for _, fk := range t.foreignKeys {
				q = q.ForeignKey(fk)
			}
			if _, err := q.Exec(ctx); err != nil {
				return wrapErr("create table", err)
			}
		}

		indexes := []index{
			{name: "recipes_book_id_idx", model: (*model.Recipe)(nil), columns: []string{model.RecipeBookID}},
			{name: "recipes_store_id_idx", model: (*model.Recipe)(nil), columns: []string{model.RecipeStoreID}},
			{name: "book_authors_author_id_idx", model: (*model.BookAuthor)(nil), columns: []string{model.BookAuthorAuthorID}},
		}
		for _, idx := range indexes {
			_, err := tx.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return wrapErr("create index", err)
			}
		}
		return nil
	})
}
