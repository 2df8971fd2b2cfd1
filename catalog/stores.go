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

// Stores manages the shops and sites recipes come from.
type Stores struct {
	store datastore.Store[model.Store]
	crud  *crud.Orchestrator[model.Store]
}

func newStores(tables Tables, cacheService cache.CacheService, o options) *Stores {
	return &Stores{
		store: tables.Stores,
		crud:  crud.New[model.Store](cacheService, o.crudOptions()...),
	}
}

func validateStore(s *model.Store) error {
	return guard.First(
		func() error { return guard.RequireNonEmpty(s.Name, "Name") },
		func() error { return guard.RequireMaxLength(s.Name, model.StoreNameMaxLength, "Name") },
		func() error { return guard.RequireURL(s.Website, "Website") },
	)
}

func (s *Stores) GetAll(ctx context.Context) []*model.Store {
	return s.crud.GetAllCached(ctx, s.crud.Key("all"), s.store.FetchAll)
}

func (s *Stores) GetByID(ctx context.Context, id int64) result.Result[*model.Store] {
	return s.crud.GetByIDCore(ctx, id, s.store.FetchSingle, s.crud.NotFoundMessage(id))
}

func (s *Stores) Create(ctx context.Context, store *model.Store) result.Result[*model.Store] {
	return s.crud.CreateCore(ctx, store, validateStore, s.store.Insert, s.invalidate)
}

func (s *Stores) Update(ctx context.Context, id int64, store *model.Store) result.Result[*model.Store] {
	return s.crud.UpdateCore(ctx, id, store, validateStore, s.store.UpdateByID, s.invalidate)
}

func (s *Stores) Delete(ctx context.Context, id int64) result.Result[bool] {
	return s.crud.DeleteCore(ctx, id, s.store.FetchSingle, s.store.DeleteByID, s.invalidate, s.crud.NotFoundMessage(id))
}

func (s *Stores) invalidate(ctx context.Context, _ *model.Store) {
	s.crud.Invalidate(ctx, storeNamespace, recipeNamespace)
}
