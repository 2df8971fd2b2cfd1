package search

import (
	"strings"

	"github.com/goliatone/go-recipe-catalog/model"
)

// Paging bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query holds the recipe search inputs. Nil filters are not applied.
type Query struct {
	Term     string
	Rating   *int
	BookID   *int64
	StoreID  *int64
	AuthorID *int64

	Page     int
	PageSize int

	SortColumn     string
	SortDescending bool
}

// Page is one page of matching recipes. Total counts every match, not only
// the ones on this page.
type Page struct {
	Items    []*model.Recipe `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// clampPage forces page to at least 1 and pageSize into [1, MaxPageSize].
// A zero pageSize means DefaultPageSize.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize == 0:
		pageSize = DefaultPageSize
	case pageSize < 1:
		pageSize = 1
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// sortColumn maps a user supplied sort name onto a recipe column. Unknown
// names map to "" which leaves ordering to the store.
func sortColumn(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "name":
		return model.RecipeName
	case "rating":
		return model.RecipeRating
	case "creation_date", "creationdate", "created", "date":
		return model.ColumnCreationDate
	}
	return ""
}
