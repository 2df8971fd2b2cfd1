package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
)

type recipeCalls struct {
	mu      sync.Mutex
	inserts int
	updates int
	deletes int
	fetches int
	lists   int
}

func (c *recipeCalls) inc(counter *int) {
	c.mu.Lock()
	*counter++
	c.mu.Unlock()
}

func newTestOrchestrator(t *testing.T, opts ...Option) (*Orchestrator[model.Recipe], cache.CacheService) {
	t.Helper()
	svc, err := cache.NewCacheService(cache.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	return New[model.Recipe](svc, opts...), svc
}

func validateRecipe(r *model.Recipe) error {
	return guard.First(
		func() error { return guard.RequireNonEmpty(r.Name, "Name") },
		func() error { return guard.RequireInRange(r.Rating, 1, 5, "Rating") },
	)
}

func TestNew_DerivesNamespace(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	assert.Equal(t, "recipe", o.Namespace())
	assert.Equal(t, "recipe::all", o.Key("all"))
	assert.Equal(t, "recipe::by_book::3", o.Key("by_book", int64(3)))
	assert.Equal(t, "Recipe with ID 999 not found", o.NotFoundMessage(999))

	links := New[model.BookAuthor](nil)
	assert.Equal(t, "book_author", links.Namespace())
	assert.Equal(t, "Book author with ID 1 not found", links.NotFoundMessage(1))
}

func TestCreateCore_ShortCircuitsOnValidation(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	calls := &recipeCalls{}

	res := o.CreateCore(context.Background(), &model.Recipe{Name: "  ", Rating: 3}, validateRecipe,
		func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) {
			calls.inc(&calls.inserts)
			return r, nil
		}, nil)

	assert.False(t, res.OK())
	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Contains(t, res.Message(), "required")
	assert.Zero(t, calls.inserts)
}

func TestCreateCore_NilRecord(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res := o.CreateCore(context.Background(), nil, validateRecipe,
		func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) {
			t.Fatal("insert must not be called")
			return nil, nil
		}, nil)

	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Equal(t, "Recipe is required", res.Message())
}

func TestCreateCore_StampsCreationDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	o, _ := newTestOrchestrator(t, WithClock(func() time.Time { return now }))

	res := o.CreateCore(context.Background(), &model.Recipe{Name: "Focaccia", Rating: 5}, validateRecipe,
		func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) {
			r.ID = 1
			return r, nil
		}, nil)

	require.True(t, res.OK())
	assert.Equal(t, now, res.Value().CreationDate)
	assert.Equal(t, int64(1), res.Value().ID)
}

func TestCreateCore_NilInsertResult(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	hookCalled := false

	res := o.CreateCore(context.Background(), &model.Recipe{Name: "Focaccia", Rating: 5}, validateRecipe,
		func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) { return nil, nil },
		func(ctx context.Context, r *model.Recipe) { hookCalled = true })

	assert.False(t, res.OK())
	assert.Equal(t, "Failed to create the recipe", res.Message())
	assert.False(t, hookCalled)
}

func TestCreateCore_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    result.Kind
		message string
	}{
		{
			name:    "unreachable store",
			err:     fmt.Errorf("insert recipe: %w", datastore.ErrUnavailable),
			kind:    result.KindNetwork,
			message: result.NetworkMessage,
		},
		{
			name:    "unexpected failure",
			err:     errors.New("constraint failed"),
			kind:    result.KindUnexpected,
			message: "An unexpected error occurred while creating the recipe",
		},
		{
			name:    "cancelled",
			err:     context.Canceled,
			kind:    result.KindCancelled,
			message: result.CancelledMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(t)
			res := o.CreateCore(context.Background(), &model.Recipe{Name: "Soup", Rating: 2}, validateRecipe,
				func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) { return nil, tt.err }, nil)

			assert.Equal(t, tt.kind, res.Kind())
			assert.Equal(t, tt.message, res.Message())
			assert.Error(t, res.Err())
		})
	}
}

func TestUpdateCore_RequiresPositiveID(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	calls := &recipeCalls{}

	for _, id := range []int64{0, -4} {
		res := o.UpdateCore(context.Background(), id, &model.Recipe{Name: "Soup", Rating: 2}, validateRecipe,
			func(ctx context.Context, id int64, r *model.Recipe) (*model.Recipe, error) {
				calls.inc(&calls.updates)
				return r, nil
			}, nil)
		assert.Equal(t, result.KindValidation, res.Kind())
		assert.Equal(t, "ID must be a positive number", res.Message())
	}
	assert.Zero(t, calls.updates)
}

func TestUpdateCore_NilResult(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res := o.UpdateCore(context.Background(), 7, &model.Recipe{Name: "Soup", Rating: 2}, validateRecipe,
		func(ctx context.Context, id int64, r *model.Recipe) (*model.Recipe, error) { return nil, nil }, nil)

	assert.False(t, res.OK())
	assert.Equal(t, "Failed to update the recipe", res.Message())
}

func TestDeleteCore_NotFoundSkipsDelete(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	calls := &recipeCalls{}

	res := o.DeleteCore(context.Background(), 999,
		func(ctx context.Context, id int64) (*model.Recipe, error) {
			calls.inc(&calls.fetches)
			return nil, nil
		},
		func(ctx context.Context, id int64) error {
			calls.inc(&calls.deletes)
			return nil
		}, nil, o.NotFoundMessage(999))

	assert.False(t, res.OK())
	assert.Equal(t, result.KindNotFound, res.Kind())
	assert.Equal(t, "Recipe with ID 999 not found", res.Message())
	assert.Equal(t, 1, calls.fetches)
	assert.Zero(t, calls.deletes)
}

func TestDeleteCore_RejectsNonPositiveID(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res := o.DeleteCore(context.Background(), 0,
		func(ctx context.Context, id int64) (*model.Recipe, error) {
			t.Fatal("existence check must not run")
			return nil, nil
		},
		func(ctx context.Context, id int64) error { return nil }, nil, o.NotFoundMessage(0))

	assert.Equal(t, result.KindValidation, res.Kind())
}

func TestDeleteCore_PassesDeletedRecordToHook(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	var deleted *model.Recipe

	res := o.DeleteCore(context.Background(), 4,
		func(ctx context.Context, id int64) (*model.Recipe, error) {
			return &model.Recipe{ID: id, Name: "Ramen"}, nil
		},
		func(ctx context.Context, id int64) error { return nil },
		func(ctx context.Context, r *model.Recipe) { deleted = r },
		o.NotFoundMessage(4))

	require.True(t, res.OK())
	require.NotNil(t, deleted)
	assert.Equal(t, "Ramen", deleted.Name)
}

func TestGetByIDCore(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()

	found := o.GetByIDCore(ctx, 3, func(ctx context.Context, id int64) (*model.Recipe, error) {
		return &model.Recipe{ID: id, Name: "Tacos"}, nil
	}, o.NotFoundMessage(3))
	require.True(t, found.OK())
	assert.Equal(t, "Tacos", found.Value().Name)

	missing := o.GetByIDCore(ctx, 3, func(ctx context.Context, id int64) (*model.Recipe, error) {
		return nil, nil
	}, o.NotFoundMessage(3))
	assert.Equal(t, result.KindNotFound, missing.Kind())
	assert.Equal(t, "Recipe with ID 3 not found", missing.Message())

	failed := o.GetByIDCore(ctx, 3, func(ctx context.Context, id int64) (*model.Recipe, error) {
		return nil, errors.New("boom")
	}, o.NotFoundMessage(3))
	assert.Equal(t, "An unexpected error occurred while loading the recipe", failed.Message())
}

func TestGetAllCached_DegradesToEmptyList(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	items := o.GetAllCached(context.Background(), o.Key("all"), func(ctx context.Context) ([]*model.Recipe, error) {
		return nil, datastore.ErrUnavailable
	})

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetAllCached_ReturnsCopies(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	fetchAll := func(ctx context.Context) ([]*model.Recipe, error) {
		return []*model.Recipe{{ID: 1, Name: "Tarte", Rating: 4, BookID: model.Int64(7)}}, nil
	}

	first := o.GetAllCached(ctx, o.Key("all"), fetchAll)
	require.Len(t, first, 1)
	first[0].Name = ""
	*first[0].BookID = 99
	first[0] = nil

	second := o.GetAllCached(ctx, o.Key("all"), fetchAll)
	require.Len(t, second, 1)
	require.NotNil(t, second[0])
	assert.Equal(t, "Tarte", second[0].Name)
	assert.Equal(t, int64(7), *second[0].BookID)
}

func TestMutationsInvalidateCachedLists(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx := context.Background()
	calls := &recipeCalls{}

	fetchAll := func(ctx context.Context) ([]*model.Recipe, error) {
		calls.inc(&calls.lists)
		return []*model.Recipe{{ID: 1, Name: "Soup"}}, nil
	}
	list := func() { o.GetAllCached(ctx, o.Key("all"), fetchAll) }

	list()
	list()
	require.Equal(t, 1, calls.lists)

	created := o.CreateCore(ctx, &model.Recipe{Name: "Stew", Rating: 4}, validateRecipe,
		func(ctx context.Context, r *model.Recipe) (*model.Recipe, error) { r.ID = 2; return r, nil }, nil)
	require.True(t, created.OK())
	list()
	assert.Equal(t, 2, calls.lists)

	updated := o.UpdateCore(ctx, 2, &model.Recipe{Name: "Beef stew", Rating: 4}, validateRecipe,
		func(ctx context.Context, id int64, r *model.Recipe) (*model.Recipe, error) { return r, nil }, nil)
	require.True(t, updated.OK())
	list()
	assert.Equal(t, 3, calls.lists)

	deleted := o.DeleteCore(ctx, 2,
		func(ctx context.Context, id int64) (*model.Recipe, error) { return &model.Recipe{ID: id}, nil },
		func(ctx context.Context, id int64) error { return nil }, nil, o.NotFoundMessage(2))
	require.True(t, deleted.OK())
	list()
	assert.Equal(t, 4, calls.lists)
}

func TestInvalidate_CrossNamespaceAndTags(t *testing.T) {
	o, svc := newTestOrchestrator(t)
	books := New[model.Book](svc)
	ctx := context.Background()
	var bookLists, reportLoads int

	loadBooks := func(ctx context.Context) ([]*model.Book, error) {
		bookLists++
		return []*model.Book{{ID: 1}}, nil
	}
	loadReport := func(ctx context.Context) (string, error) {
		reportLoads++
		return "report", nil
	}

	books.GetAllCached(ctx, books.Key("all"), loadBooks)
	_, err := cache.GetOrCreate(ctx, svc, "report::weekly", time.Minute, loadReport)
	require.NoError(t, err)

	o.Invalidate(WithInvalidationTags(ctx, "report::weekly"), "book")

	books.GetAllCached(ctx, books.Key("all"), loadBooks)
	_, err = cache.GetOrCreate(ctx, svc, "report::weekly", time.Minute, loadReport)
	require.NoError(t, err)

	assert.Equal(t, 2, bookLists)
	assert.Equal(t, 2, reportLoads)
}

func TestWithInvalidationTags_Dedupes(t *testing.T) {
	ctx := WithInvalidationTags(context.Background(), "a", "b")
	ctx = WithInvalidationTags(ctx, "b", "", "c")

	assert.Equal(t, []string{"a", "b", "c"}, invalidationTagsFromContext(ctx))
	assert.Nil(t, invalidationTagsFromContext(context.Background()))
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Recipe":        "recipe",
		"BookAuthor":    "book_author",
		"HTTPStore":     "http_store",
		"Recipe2":       "recipe_2",
		"list[int]":     "list_int",
		"*model.Recipe": "model_recipe",
		"already_snake": "already_snake",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
