package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/model"
)

func seedRecipes(t *testing.T, table *RecipeTable, recipes ...*model.Recipe) []*model.Recipe {
	t.Helper()
	out := make([]*model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		created, err := table.Insert(context.Background(), r)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestTable_InsertAssignsIDsAndCopies(t *testing.T) {
	table := New().Recipes
	original := &model.Recipe{Name: "Dal", Rating: 4}

	created, err := table.Insert(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Zero(t, original.ID, "input record must not be mutated")

	created.Name = "changed"
	stored, err := table.FetchSingle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dal", stored.Name)
}

func TestTable_FindIDsByField(t *testing.T) {
	table := New().Recipes
	seedRecipes(t, table,
		&model.Recipe{Name: "Chocolate Cake", Rating: 5},
		&model.Recipe{Name: "Hot CHOColate", Rating: 3},
		&model.Recipe{Name: "Lemon Tart", Rating: 4},
	)

	ids, err := table.FindIDsByField(context.Background(), model.RecipeName, "choc")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	_, err = table.FindIDsByField(context.Background(), "name; DROP TABLE", "x")
	assert.ErrorIs(t, err, datastore.ErrUnknownField)
}

func TestTable_FindIDsByFieldInAndEquals(t *testing.T) {
	table := New().Recipes
	seedRecipes(t, table,
		&model.Recipe{Name: "A", Rating: 5, BookID: model.Int64(10)},
		&model.Recipe{Name: "B", Rating: 3, BookID: model.Int64(11)},
		&model.Recipe{Name: "C", Rating: 5},
	)
	ctx := context.Background()

	ids, err := table.FindIDsByFieldIn(ctx, model.RecipeBookID, []int64{10, 11, 12})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids, err = table.FindIDsByFieldIn(ctx, model.RecipeBookID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = table.FindIDsByFieldEquals(ctx, model.RecipeRating, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	ids, err = table.FindIDsByFieldEquals(ctx, model.RecipeBookID, int64(11))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestTable_FetchByIDsSortsAndPages(t *testing.T) {
	table := New().Recipes
	seedRecipes(t, table,
		&model.Recipe{Name: "banana bread", Rating: 3},
		&model.Recipe{Name: "Apple pie", Rating: 5},
		&model.Recipe{Name: "carrot cake", Rating: 3},
		&model.Recipe{Name: "Date squares", Rating: 1},
	)
	ctx := context.Background()
	all := []int64{1, 2, 3, 4}

	names := func(rs []*model.Recipe) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Name
		}
		return out
	}

	rs, err := table.FetchByIDs(ctx, all, datastore.FetchOptions{SortColumn: model.RecipeName})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple pie", "banana bread", "carrot cake", "Date squares"}, names(rs))

	rs, err = table.FetchByIDs(ctx, all, datastore.FetchOptions{SortColumn: model.RecipeRating, Descending: true, Skip: 1, Take: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"banana bread", "carrot cake"}, names(rs))

	rs, err = table.FetchByIDs(ctx, all, datastore.FetchOptions{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, rs)

	_, err = table.FetchByIDs(ctx, all, datastore.FetchOptions{SortColumn: "secret"})
	assert.ErrorIs(t, err, datastore.ErrUnknownField)
}

func TestTable_UpdateKeepsCreationDate(t *testing.T) {
	table := New().Recipes
	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	seedRecipes(t, table, &model.Recipe{Name: "Pho", Rating: 4, CreationDate: created})
	ctx := context.Background()

	updated, err := table.UpdateByID(ctx, 1, &model.Recipe{Name: "Pho bo", Rating: 5, CreationDate: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "Pho bo", updated.Name)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, created, updated.CreationDate)

	missing, err := table.UpdateByID(ctx, 42, &model.Recipe{Name: "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTable_DeleteAndCalls(t *testing.T) {
	table := New().Recipes
	seedRecipes(t, table, &model.Recipe{Name: "Pho", Rating: 4})
	ctx := context.Background()

	require.NoError(t, table.DeleteByID(ctx, 1))
	require.NoError(t, table.DeleteByID(ctx, 1))
	got, err := table.FetchSingle(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, 1, table.Calls("Insert"))
	assert.Equal(t, 2, table.Calls("DeleteByID"))
	assert.Equal(t, 0, table.Len())
}

func TestTable_FailWithAndCancellation(t *testing.T) {
	table := New().Recipes
	boom := errors.New("offline")

	table.FailWith(boom)
	_, err := table.FindIDs(context.Background())
	assert.ErrorIs(t, err, boom)

	table.FailWith(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = table.FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTable_FailOnSingleMethod(t *testing.T) {
	table := New().Recipes
	ctx := context.Background()
	boom := errors.New("boom")
	seedRecipes(t, table, &model.Recipe{Name: "Dal", Rating: 4})

	table.FailOn("DeleteByID", boom)
	assert.ErrorIs(t, table.DeleteByID(ctx, 1), boom)

	got, err := table.FetchSingle(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)

	table.FailOn("DeleteByID", nil)
	assert.NoError(t, table.DeleteByID(ctx, 1))
	assert.Zero(t, table.Len())
}

func TestStore_RunInTx(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("boom")
	seedRecipes(t, store.Recipes, &model.Recipe{Name: "Dal", Rating: 4})

	err := store.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		_, err := tx.Recipes.UpdateByID(ctx, 1, &model.Recipe{Name: "Tarka dal", Rating: 5})
		require.NoError(t, err)
		_, err = tx.Recipes.Insert(ctx, &model.Recipe{Name: "Rice", Rating: 3})
		require.NoError(t, err)
		_, err = tx.Authors.Insert(ctx, &model.Author{FirstName: "Meera"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, store.Recipes.Len())
	assert.Zero(t, store.Authors.Len())
	got, err := store.Recipes.FetchSingle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dal", got.Name)

	err = store.RunInTx(ctx, func(ctx context.Context, tx *Store) error {
		created, err := tx.Recipes.Insert(ctx, &model.Recipe{Name: "Rice", Rating: 3})
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), created.ID, "ids from a rolled back insert are reused")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Recipes.Len())
}
