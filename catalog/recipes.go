package catalog

import (
	"context"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/crud"
	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
	"github.com/goliatone/go-recipe-catalog/search"
)

// Recipes manages recipes and runs recipe searches.
type Recipes struct {
	store  datastore.Store[model.Recipe]
	search *search.Aggregator
	crud   *crud.Orchestrator[model.Recipe]
}

func newRecipes(tables Tables, cacheService cache.CacheService, aggregator *search.Aggregator, o options) *Recipes {
	return &Recipes{
		store:  tables.Recipes,
		search: aggregator,
		crud:   crud.New[model.Recipe](cacheService, o.crudOptions()...),
	}
}

func validateRecipe(r *model.Recipe) error {
	return guard.First(
		func() error { return guard.RequireNonEmpty(r.Name, "Name") },
		func() error { return guard.RequireInRange(r.Rating, 1, 5, "Rating") },
		func() error { return guard.RequirePositiveIfSet(r.BookID, "Book ID") },
		func() error { return guard.RequirePositiveIntIfSet(r.BookPage, "Book page") },
		func() error { return guard.RequirePositiveIfSet(r.StoreID, "Store ID") },
		func() error { return guard.RequirePositiveIntIfSet(r.StorePage, "Store page") },
	)
}

func (s *Recipes) GetAll(ctx context.Context) []*model.Recipe {
	return s.crud.GetAllCached(ctx, s.crud.Key("all"), s.store.FetchAll)
}

func (s *Recipes) GetByID(ctx context.Context, id int64) result.Result[*model.Recipe] {
	return s.crud.GetByIDCore(ctx, id, s.store.FetchSingle, s.crud.NotFoundMessage(id))
}

func (s *Recipes) Create(ctx context.Context, recipe *model.Recipe) result.Result[*model.Recipe] {
	return s.crud.CreateCore(ctx, recipe, validateRecipe, s.store.Insert, s.invalidate)
}

func (s *Recipes) Update(ctx context.Context, id int64, recipe *model.Recipe) result.Result[*model.Recipe] {
	return s.crud.UpdateCore(ctx, id, recipe, validateRecipe, s.store.UpdateByID, s.invalidate)
}

func (s *Recipes) Delete(ctx context.Context, id int64) result.Result[bool] {
	return s.crud.DeleteCore(ctx, id, s.store.FetchSingle, s.store.DeleteByID, s.invalidate, s.crud.NotFoundMessage(id))
}

// Search runs q against the catalog. Results are not cached.
func (s *Recipes) Search(ctx context.Context, q search.Query) result.Result[search.Page] {
	return s.search.Search(ctx, q)
}

func (s *Recipes) invalidate(ctx context.Context, _ *model.Recipe) {
	s.crud.Invalidate(ctx, recipeNamespace)
}
