package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Recipe column names.
const (
	RecipeName      = "name"
	RecipeRating    = "rating"
	RecipeNotes     = "notes"
	RecipeBookID    = "book_id"
	RecipeBookPage  = "book_page"
	RecipeStoreID   = "store_id"
	RecipeStorePage = "store_page"
)

// Recipe may reference a book, a store, both or neither.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Rating       int       `bun:"rating,notnull" json:"rating"`
	Notes        string    `bun:"notes" json:"notes,omitempty"`
	CreationDate time.Time `bun:"creation_date,notnull" json:"creation_date"`
	BookID       *int64    `bun:"book_id" json:"book_id,omitempty"`
	BookPage     *int      `bun:"book_page" json:"book_page,omitempty"`
	StoreID      *int64    `bun:"store_id" json:"store_id,omitempty"`
	StorePage    *int      `bun:"store_page" json:"store_page,omitempty"`
}

func (r *Recipe) GetID() int64   { return r.ID }
func (r *Recipe) SetID(id int64) { r.ID = id }

// StampCreation sets the creation date when it has not been set yet.
func (r *Recipe) StampCreation(now time.Time) {
	if r.CreationDate.IsZero() {
		r.CreationDate = now
	}
}

func (r *Recipe) SetCreationDate(ts time.Time) { r.CreationDate = ts }

// Clone returns a copy sharing no memory with r.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.BookID = clonePtr(r.BookID)
	c.BookPage = clonePtr(r.BookPage)
	c.StoreID = clonePtr(r.StoreID)
	c.StorePage = clonePtr(r.StorePage)
	return &c
}

// FieldValue returns the value stored under the given column name.
func (r *Recipe) FieldValue(name string) (any, bool) {
	switch name {
	case ColumnID:
		return r.ID, true
	case RecipeName:
		return r.Name, true
	case RecipeRating:
		return r.Rating, true
	case RecipeNotes:
		return r.Notes, true
	case ColumnCreationDate:
		return r.CreationDate, true
	case RecipeBookID:
		return r.BookID, true
	case RecipeBookPage:
		return r.BookPage, true
	case RecipeStoreID:
		return r.StoreID, true
	case RecipeStorePage:
		return r.StorePage, true
	}
	return nil, false
}

// RecipeColumns lists the columns a recipe table accepts in lookups and sorts.
func RecipeColumns() []string {
	return []string{
		ColumnID, RecipeName, RecipeRating, RecipeNotes, ColumnCreationDate,
		RecipeBookID, RecipeBookPage, RecipeStoreID, RecipeStorePage,
	}
}
