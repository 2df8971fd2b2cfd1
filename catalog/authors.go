package catalog

import (
	"context"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/crud"
	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
)

// Authors manages book authors.
type Authors struct {
	tables Tables
	store  datastore.Store[model.Author]
	crud   *crud.Orchestrator[model.Author]
}

func newAuthors(tables Tables, cacheService cache.CacheService, o options) *Authors {
	return &Authors{
		tables: tables,
		store:  tables.Authors,
		crud:   crud.New[model.Author](cacheService, o.crudOptions()...),
	}
}

func validateAuthor(a *model.Author) error {
	return guard.RequireNonEmpty(a.FirstName, "First name")
}

// GetAll returns every author, served from cache when possible.
func (s *Authors) GetAll(ctx context.Context) []*model.Author {
	return s.crud.GetAllCached(ctx, s.crud.Key("all"), s.store.FetchAll)
}

func (s *Authors) GetByID(ctx context.Context, id int64) result.Result[*model.Author] {
	return s.crud.GetByIDCore(ctx, id, s.store.FetchSingle, s.crud.NotFoundMessage(id))
}

func (s *Authors) Create(ctx context.Context, author *model.Author) result.Result[*model.Author] {
	return s.crud.CreateCore(ctx, author, validateAuthor, s.store.Insert, s.invalidate)
}

func (s *Authors) Update(ctx context.Context, id int64, author *model.Author) result.Result[*model.Author] {
	return s.crud.UpdateCore(ctx, id, author, validateAuthor, s.store.UpdateByID, s.invalidate)
}

// Delete removes the author and its book links in one transaction.
func (s *Authors) Delete(ctx context.Context, id int64) result.Result[bool] {
	return s.crud.DeleteCore(ctx, id, s.store.FetchSingle, func(ctx context.Context, id int64) error {
		return s.tables.inTx(ctx, func(ctx context.Context, tx Tables) error {
			if err := deleteLinks(ctx, tx.BookAuthors, model.BookAuthorAuthorID, id); err != nil {
				return err
			}
			return tx.Authors.DeleteByID(ctx, id)
		})
	}, s.invalidate, s.crud.NotFoundMessage(id))
}

func (s *Authors) invalidate(ctx context.Context, _ *model.Author) {
	s.crud.Invalidate(ctx, authorNamespace, bookNamespace)
}

// deleteLinks removes every book_authors row whose column equals id.
func deleteLinks(ctx context.Context, links datastore.Store[model.BookAuthor], column string, id int64) error {
	ids, err := links.FindIDsByFieldEquals(ctx, column, id)
	if err != nil {
		return err
	}
	for _, linkID := range ids {
		if err := links.DeleteByID(ctx, linkID); err != nil {
			return err
		}
	}
	return nil
}
