// Package search finds recipes by free text and filters.
//
// A search first builds a candidate id set from cheap id lookups, then loads
// one page of records. Text matches form a union across recipe names, book
// names, author names and store names. Filters (rating, book, store, author)
// narrow the set by intersection. Sorting and paging are done by the store.
package search

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
)

// Stores are the tables a search reads from.
type Stores struct {
	Recipes     datastore.Store[model.Recipe]
	Books       datastore.Store[model.Book]
	Authors     datastore.Store[model.Author]
	BookAuthors datastore.Store[model.BookAuthor]
	Stores      datastore.Store[model.Store]
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for search diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger.With().Str("entity", "recipe").Str("operation", "search").Logger()
	}
}

// Aggregator runs recipe searches. It holds no mutable state and is safe for
// concurrent use.
type Aggregator struct {
	stores Stores
	logger zerolog.Logger
}

// New creates an Aggregator over stores.
func New(stores Stores, opts ...Option) *Aggregator {
	a := &Aggregator{stores: stores, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search returns one page of recipes matching q. Page and page size are
// clamped, never rejected. Store failures yield a single failure result and
// no partial page.
func (a *Aggregator) Search(ctx context.Context, q Query) result.Result[Page] {
	page, size := clampPage(q.Page, q.PageSize)
	log := a.logger.With().Str("op_id", uuid.NewString()).Logger()

	if err := validate(q); err != nil {
		return result.Invalid[Page](err)
	}

	ids, err := a.candidates(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("term", q.Term).Msg("candidate lookup failed")
		return result.FromError[Page](err, "searching", "recipes")
	}

	out := Page{Items: []*model.Recipe{}, Total: len(ids), Page: page, PageSize: size}
	pages := (out.Total + size - 1) / size
	if out.Total == 0 || page-1 >= pages {
		return result.Success(out)
	}
	skip := (page - 1) * size

	items, err := a.stores.Recipes.FetchByIDs(ctx, ids.sorted(), datastore.FetchOptions{
		SortColumn: sortColumn(q.SortColumn),
		Descending: q.SortDescending,
		Skip:       skip,
		Take:       size,
	})
	if err != nil {
		log.Error().Err(err).Int("total", out.Total).Msg("page fetch failed")
		return result.FromError[Page](err, "searching", "recipes")
	}
	if items != nil {
		out.Items = items
	}

	log.Debug().Int("total", out.Total).Int("page", page).Int("returned", len(out.Items)).Msg("search complete")
	return result.Success(out)
}

func validate(q Query) error {
	return guard.First(
		func() error {
			if q.Rating == nil {
				return nil
			}
			return guard.RequireInRange(*q.Rating, 1, 5, "Rating")
		},
		func() error { return guard.RequirePositiveIfSet(q.BookID, "Book ID") },
		func() error { return guard.RequirePositiveIfSet(q.StoreID, "Store ID") },
		func() error { return guard.RequirePositiveIfSet(q.AuthorID, "Author ID") },
	)
}

// candidates computes the final id set. Every step returns early once the
// set is empty.
func (a *Aggregator) candidates(ctx context.Context, q Query) (idSet, error) {
	term := strings.TrimSpace(q.Term)

	var set idSet
	switch {
	case term != "":
		matched, err := a.termMatches(ctx, term)
		if err != nil {
			return nil, err
		}
		set = matched
		if len(set) > 0 && q.Rating != nil {
			rated, err := a.stores.Recipes.FindIDsByFieldEquals(ctx, model.RecipeRating, *q.Rating)
			if err != nil {
				return nil, err
			}
			set = set.intersect(rated)
		}
	case q.Rating != nil:
		rated, err := a.stores.Recipes.FindIDsByFieldEquals(ctx, model.RecipeRating, *q.Rating)
		if err != nil {
			return nil, err
		}
		set = newIDSet(rated...)
	default:
		all, err := a.stores.Recipes.FindIDs(ctx)
		if err != nil {
			return nil, err
		}
		set = newIDSet(all...)
	}

	if len(set) > 0 && q.BookID != nil {
		ids, err := a.stores.Recipes.FindIDsByFieldEquals(ctx, model.RecipeBookID, *q.BookID)
		if err != nil {
			return nil, err
		}
		set = set.intersect(ids)
	}

	if len(set) > 0 && q.StoreID != nil {
		ids, err := a.stores.Recipes.FindIDsByFieldEquals(ctx, model.RecipeStoreID, *q.StoreID)
		if err != nil {
			return nil, err
		}
		set = set.intersect(ids)
	}

	if len(set) > 0 && q.AuthorID != nil {
		ids, err := a.recipesByAuthors(ctx, []int64{*q.AuthorID})
		if err != nil {
			return nil, err
		}
		set = set.intersect(ids)
	}

	return set, nil
}

// termMatches unions recipes matching term by recipe name, book name, author
// first or last name and store name.
func (a *Aggregator) termMatches(ctx context.Context, term string) (idSet, error) {
	set := newIDSet()

	byName, err := a.stores.Recipes.FindIDsByField(ctx, model.RecipeName, term)
	if err != nil {
		return nil, err
	}
	set.add(byName...)

	books, err := a.stores.Books.FindIDsByField(ctx, model.BookName, term)
	if err != nil {
		return nil, err
	}
	byBook, err := a.recipesIn(ctx, model.RecipeBookID, books)
	if err != nil {
		return nil, err
	}
	set.add(byBook...)

	authors := newIDSet()
	for _, column := range []string{model.AuthorFirstName, model.AuthorLastName} {
		ids, err := a.stores.Authors.FindIDsByField(ctx, column, term)
		if err != nil {
			return nil, err
		}
		authors.add(ids...)
	}
	byAuthor, err := a.recipesByAuthors(ctx, authors.sorted())
	if err != nil {
		return nil, err
	}
	set.add(byAuthor...)

	stores, err := a.stores.Stores.FindIDsByField(ctx, model.StoreName, term)
	if err != nil {
		return nil, err
	}
	byStore, err := a.recipesIn(ctx, model.RecipeStoreID, stores)
	if err != nil {
		return nil, err
	}
	set.add(byStore...)

	return set, nil
}

// recipesByAuthors resolves authors to their books through the join table
// and then to the recipes of those books.
func (a *Aggregator) recipesByAuthors(ctx context.Context, authorIDs []int64) ([]int64, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	linkIDs, err := a.stores.BookAuthors.FindIDsByFieldIn(ctx, model.BookAuthorAuthorID, authorIDs)
	if err != nil || len(linkIDs) == 0 {
		return nil, err
	}

	links, err := a.stores.BookAuthors.FetchByIDs(ctx, linkIDs, datastore.FetchOptions{})
	if err != nil {
		return nil, err
	}
	books := newIDSet()
	for _, link := range links {
		books.add(link.BookID)
	}

	return a.recipesIn(ctx, model.RecipeBookID, books.sorted())
}

func (a *Aggregator) recipesIn(ctx context.Context, column string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return a.stores.Recipes.FindIDsByFieldIn(ctx, column, ids)
}
