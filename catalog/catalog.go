// Package catalog exposes the entity services of the recipe catalog: authors,
// books, stores and recipes.
//
// Every operation returns a result.Result. Expected failures (validation,
// missing records, an unreachable store, unexpected store errors) are folded
// into the result, never returned as bare errors. List operations degrade to
// an empty list.
//
// Lists are cached in the shared cache service. A successful mutation clears
// the namespaces that can embed the mutated entity:
//
//	author -> author, book
//	book   -> book, recipe
//	store  -> store, recipe
//	recipe -> recipe
package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/crud"
	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/search"
)

// Cache namespaces, one per entity.
const (
	authorNamespace = "author"
	bookNamespace   = "book"
	storeNamespace  = "store"
	recipeNamespace = "recipe"
)

// Tables are the data stores the catalog runs on.
type Tables struct {
	Recipes     datastore.Store[model.Recipe]
	Books       datastore.Store[model.Book]
	Authors     datastore.Store[model.Author]
	BookAuthors datastore.Store[model.BookAuthor]
	Stores      datastore.Store[model.Store]

	// Tx runs writes spanning several tables atomically. When nil those
	// writes go straight to the tables above.
	Tx TxRunner
}

// TxRunner calls fn with tables bound to one transaction. Every write made
// through them is kept when fn returns nil and none is kept otherwise.
type TxRunner func(ctx context.Context, fn func(ctx context.Context, tx Tables) error) error

// inTx runs fn through t.Tx, or directly on t when it has none.
func (t Tables) inTx(ctx context.Context, fn func(ctx context.Context, tx Tables) error) error {
	if t.Tx == nil {
		return fn(ctx, t)
	}
	return t.Tx(ctx, fn)
}

type options struct {
	logger     zerolog.Logger
	listTTL    time.Duration
	now        func() time.Time
	serializer cache.KeySerializer
}

// Option customizes the catalog services.
type Option func(*options)

// WithLogger sets the logger shared by all services.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithListTTL sets how long cached lists live.
func WithListTTL(ttl time.Duration) Option {
	return func(o *options) { o.listTTL = ttl }
}

// WithKeySerializer sets the serializer used to build cache keys.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) { o.serializer = serializer }
}

// WithClock replaces the time source for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func (o options) crudOptions() []crud.Option {
	opts := []crud.Option{
		crud.WithLogger(o.logger),
		crud.WithListTTL(o.listTTL),
		crud.WithClock(o.now),
	}
	if o.serializer != nil {
		opts = append(opts, crud.WithKeySerializer(o.serializer))
	}
	return opts
}

// Catalog groups the four entity services.
type Catalog struct {
	Authors *Authors
	Books   *Books
	Stores  *Stores
	Recipes *Recipes
}

// New builds every service over tables, sharing cacheService between them.
func New(tables Tables, cacheService cache.CacheService, opts ...Option) *Catalog {
	o := options{logger: zerolog.Nop(), listTTL: crud.DefaultListTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	aggregator := search.New(search.Stores{
		Recipes:     tables.Recipes,
		Books:       tables.Books,
		Authors:     tables.Authors,
		BookAuthors: tables.BookAuthors,
		Stores:      tables.Stores,
	}, search.WithLogger(o.logger))

	return &Catalog{
		Authors: newAuthors(tables, cacheService, o),
		Books:   newBooks(tables, cacheService, o),
		Stores:  newStores(tables, cacheService, o),
		Recipes: newRecipes(tables, cacheService, aggregator, o),
	}
}
