package search

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/datastore/memstore"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
)

type fixture struct {
	mem *memstore.Store
	agg *Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	return &fixture{
		mem: mem,
		agg: New(Stores{
			Recipes:     mem.Recipes,
			Books:       mem.Books,
			Authors:     mem.Authors,
			BookAuthors: mem.BookAuthors,
			Stores:      mem.Stores,
		}),
	}
}

func (f *fixture) book(t *testing.T, name string) int64 {
	t.Helper()
	b, err := f.mem.Books.Insert(context.Background(), &model.Book{Name: name})
	require.NoError(t, err)
	return b.ID
}

func (f *fixture) author(t *testing.T, first, last string, books ...int64) int64 {
	t.Helper()
	ctx := context.Background()
	a, err := f.mem.Authors.Insert(ctx, &model.Author{FirstName: first, LastName: last})
	require.NoError(t, err)
	for _, b := range books {
		_, err := f.mem.BookAuthors.Insert(ctx, &model.BookAuthor{BookID: b, AuthorID: a.ID})
		require.NoError(t, err)
	}
	return a.ID
}

func (f *fixture) store(t *testing.T, name string) int64 {
	t.Helper()
	s, err := f.mem.Stores.Insert(context.Background(), &model.Store{Name: name})
	require.NoError(t, err)
	return s.ID
}

func (f *fixture) recipe(t *testing.T, r model.Recipe) int64 {
	t.Helper()
	created, err := f.mem.Recipes.Insert(context.Background(), &r)
	require.NoError(t, err)
	return created.ID
}

func rating(r int) *int { return &r }

func names(items []*model.Recipe) []string {
	out := make([]string, len(items))
	for i, r := range items {
		out[i] = r.Name
	}
	return out
}

// tenRecipes seeds three "choc" names, two recipes in a "choc" titled book
// and five unrelated recipes.
func tenRecipes(t *testing.T, f *fixture) (chocBook int64) {
	chocBook = f.book(t, "Chocolate Bible")
	other := f.book(t, "Bread")

	f.recipe(t, model.Recipe{Name: "Chocolate cake", Rating: 5})
	f.recipe(t, model.Recipe{Name: "Hot choc", Rating: 4})
	f.recipe(t, model.Recipe{Name: "Choc chip cookies", Rating: 3, BookID: model.Int64(other)})
	f.recipe(t, model.Recipe{Name: "Truffles", Rating: 5, BookID: model.Int64(chocBook)})
	f.recipe(t, model.Recipe{Name: "Mousse", Rating: 2, BookID: model.Int64(chocBook)})
	for i := 0; i < 5; i++ {
		f.recipe(t, model.Recipe{Name: fmt.Sprintf("Sourdough %d", i), Rating: 3, BookID: model.Int64(other)})
	}
	return chocBook
}

func TestSearch_TermUnionsNameAndBookMatches(t *testing.T) {
	f := newFixture(t)
	tenRecipes(t, f)

	res := f.agg.Search(context.Background(), Query{Term: "choc"})

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, 5, res.Value().Total)
	assert.Len(t, res.Value().Items, 5)
}

func TestSearch_TermMatchesAuthorsAndStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, "Plenty")
	f.author(t, "Yotam", "Ottolenghi", book)
	market := f.store(t, "Borough Market")

	f.recipe(t, model.Recipe{Name: "Roasted aubergine", Rating: 5, BookID: model.Int64(book)})
	f.recipe(t, model.Recipe{Name: "Cheese toastie", Rating: 4, StoreID: model.Int64(market)})
	f.recipe(t, model.Recipe{Name: "Plain rice", Rating: 2})

	res := f.agg.Search(ctx, Query{Term: "ottoLENGHI"})
	require.True(t, res.OK())
	assert.Equal(t, []string{"Roasted aubergine"}, names(res.Value().Items))

	res = f.agg.Search(ctx, Query{Term: "borough"})
	require.True(t, res.OK())
	assert.Equal(t, []string{"Cheese toastie"}, names(res.Value().Items))
}

func TestSearch_RatingAppliesToEverySource(t *testing.T) {
	f := newFixture(t)
	tenRecipes(t, f)

	res := f.agg.Search(context.Background(), Query{Term: "choc", Rating: rating(5)})
	require.True(t, res.OK())
	assert.ElementsMatch(t, []string{"Chocolate cake", "Truffles"}, names(res.Value().Items))

	res = f.agg.Search(context.Background(), Query{Rating: rating(3)})
	require.True(t, res.OK())
	assert.Equal(t, 6, res.Value().Total)
}

func TestSearch_FiltersIntersect(t *testing.T) {
	f := newFixture(t)
	chocBook := tenRecipes(t, f)
	author := f.author(t, "Ana", "Cacao", chocBook)
	shop := f.store(t, "Deli")
	f.recipe(t, model.Recipe{Name: "Choc bar", Rating: 5, StoreID: model.Int64(shop)})
	ctx := context.Background()

	res := f.agg.Search(ctx, Query{Term: "choc", BookID: model.Int64(chocBook)})
	require.True(t, res.OK())
	assert.ElementsMatch(t, []string{"Truffles", "Mousse"}, names(res.Value().Items))

	res = f.agg.Search(ctx, Query{AuthorID: model.Int64(author)})
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Value().Total)

	res = f.agg.Search(ctx, Query{StoreID: model.Int64(shop), Rating: rating(5)})
	require.True(t, res.OK())
	assert.Equal(t, []string{"Choc bar"}, names(res.Value().Items))
}

func TestSearch_DisjointFiltersYieldEmptyPage(t *testing.T) {
	f := newFixture(t)
	chocBook := tenRecipes(t, f)

	res := f.agg.Search(context.Background(), Query{BookID: model.Int64(chocBook), Rating: rating(1)})

	require.True(t, res.OK())
	assert.Zero(t, res.Value().Total)
	assert.NotNil(t, res.Value().Items)
	assert.Empty(t, res.Value().Items)
	assert.Zero(t, f.mem.Recipes.Calls("FetchByIDs"))
}

func TestSearch_ShortCircuitsOnEmptySet(t *testing.T) {
	f := newFixture(t)
	tenRecipes(t, f)

	res := f.agg.Search(context.Background(), Query{Term: "zzz", Rating: rating(5), BookID: model.Int64(1), StoreID: model.Int64(1)})

	require.True(t, res.OK())
	assert.Zero(t, res.Value().Total)
	assert.Zero(t, f.mem.Recipes.Calls("FindIDsByFieldEquals"))
}

func TestSearch_PaginationBounds(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 130; i++ {
		f.recipe(t, model.Recipe{Name: fmt.Sprintf("Recipe %03d", i), Rating: 1 + i%5})
	}
	ctx := context.Background()

	tests := []struct {
		page, size int
		wantPage   int
		wantSize   int
		wantItems  int
	}{
		{page: 0, size: 500, wantPage: 1, wantSize: 100, wantItems: 100},
		{page: 2, size: 500, wantPage: 2, wantSize: 100, wantItems: 30},
		{page: -3, size: -1, wantPage: 1, wantSize: 1, wantItems: 1},
		{page: 1, size: 0, wantPage: 1, wantSize: DefaultPageSize, wantItems: DefaultPageSize},
		{page: 99, size: 10, wantPage: 99, wantSize: 10, wantItems: 0},
		{page: math.MaxInt, size: 100, wantPage: math.MaxInt, wantSize: 100, wantItems: 0},
		{page: math.MaxInt/10 + 2, size: 10, wantPage: math.MaxInt/10 + 2, wantSize: 10, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d size=%d", tt.page, tt.size), func(t *testing.T) {
			res := f.agg.Search(ctx, Query{Page: tt.page, PageSize: tt.size})
			require.True(t, res.OK())
			p := res.Value()
			assert.Equal(t, 130, p.Total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
			assert.Len(t, p.Items, tt.wantItems)
			assert.LessOrEqual(t, len(p.Items), p.PageSize)
		})
	}
}

func TestSearch_PagePastEndSkipsFetch(t *testing.T) {
	f := newFixture(t)
	f.recipe(t, model.Recipe{Name: "Soup", Rating: 3})

	res := f.agg.Search(context.Background(), Query{Page: math.MaxInt, PageSize: MaxPageSize})
	require.True(t, res.OK())
	assert.Empty(t, res.Value().Items)
	assert.Equal(t, 1, res.Value().Total)
	assert.Zero(t, f.mem.Recipes.Calls("FetchByIDs"))
}

func TestSearch_SortIsPushedToStore(t *testing.T) {
	f := newFixture(t)
	f.recipe(t, model.Recipe{Name: "b", Rating: 2})
	f.recipe(t, model.Recipe{Name: "a", Rating: 5})
	f.recipe(t, model.Recipe{Name: "c", Rating: 1})
	ctx := context.Background()

	res := f.agg.Search(ctx, Query{SortColumn: "Name"})
	require.True(t, res.OK())
	assert.Equal(t, []string{"a", "b", "c"}, names(res.Value().Items))

	res = f.agg.Search(ctx, Query{SortColumn: "rating", SortDescending: true, PageSize: 2})
	require.True(t, res.OK())
	assert.Equal(t, []string{"a", "b"}, names(res.Value().Items))

	res = f.agg.Search(ctx, Query{SortColumn: "password"})
	require.True(t, res.OK(), "unknown sort columns are ignored")
	assert.Len(t, res.Value().Items, 3)
}

func TestSearch_ValidatesFilters(t *testing.T) {
	f := newFixture(t)

	for _, r := range []int{0, 6, -1} {
		res := f.agg.Search(context.Background(), Query{Rating: rating(r)})
		assert.Equal(t, result.KindValidation, res.Kind())
		assert.Contains(t, res.Message(), "Rating")
		assert.Contains(t, res.Message(), "1 and 5")
	}

	res := f.agg.Search(context.Background(), Query{BookID: model.Int64(0)})
	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Zero(t, f.mem.Recipes.Calls("FindIDs"))
}

func TestSearch_StoreErrorsBecomeSingleFailure(t *testing.T) {
	f := newFixture(t)
	tenRecipes(t, f)
	f.mem.Books.FailWith(fmt.Errorf("books: %w", datastore.ErrUnavailable))

	res := f.agg.Search(context.Background(), Query{Term: "choc"})
	assert.False(t, res.OK())
	assert.Equal(t, result.KindNetwork, res.Kind())
	assert.Equal(t, result.NetworkMessage, res.Message())
	assert.Nil(t, res.Value().Items)

	f.mem.Books.FailWith(nil)
	f.mem.Recipes.FailWith(fmt.Errorf("disk on fire"))
	res = f.agg.Search(context.Background(), Query{})
	assert.Equal(t, result.KindUnexpected, res.Kind())
	assert.Equal(t, "An unexpected error occurred while searching the recipes", res.Message())
}

func TestSortColumnAliases(t *testing.T) {
	assert.Equal(t, model.RecipeName, sortColumn(" NAME "))
	assert.Equal(t, model.RecipeRating, sortColumn("rating"))
	for _, alias := range []string{"creation_date", "CreationDate", "created", "date"} {
		assert.Equal(t, model.ColumnCreationDate, sortColumn(alias))
	}
	assert.Empty(t, sortColumn("notes"))
}
