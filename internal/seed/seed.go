// Package seed loads a catalog from a JSON document.
//
// Entries reference each other by a local key so that a seed file can be
// written before any database ids exist:
//
//	{
//	  "authors": [{"key": "yotam", "first_name": "Yotam", "last_name": "Ottolenghi"}],
//	  "books":   [{"key": "plenty", "name": "Plenty", "authors": ["yotam"]}],
//	  "stores":  [{"key": "market", "name": "Borough Market"}],
//	  "recipes": [{"name": "Roasted aubergine", "rating": 5, "book": "plenty", "book_page": 34}]
//	}
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goliatone/go-recipe-catalog/catalog"
	"github.com/goliatone/go-recipe-catalog/model"
)

// Document is the seed file layout.
type Document struct {
	Authors []Author `json:"authors"`
	Books   []Book   `json:"books"`
	Stores  []Store  `json:"stores"`
	Recipes []Recipe `json:"recipes"`
}

type Author struct {
	Key       string `json:"key"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Book struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Authors []string `json:"authors"`
}

type Store struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Notes   string `json:"notes"`
}

type Recipe struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Notes     string `json:"notes"`
	Book      string `json:"book"`
	BookPage  *int   `json:"book_page"`
	Store     string `json:"store"`
	StorePage *int   `json:"store_page"`
}

// Summary counts the records created.
type Summary struct {
	Authors int `json:"authors"`
	Books   int `json:"books"`
	Stores  int `json:"stores"`
	Recipes int `json:"recipes"`
}

// Decode parses a seed document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &doc, nil
}

// Apply creates every record of doc through the catalog services, so the
// usual validation applies. It stops at the first failure.
func Apply(ctx context.Context, c *catalog.Catalog, doc *Document) (Summary, error) {
	var sum Summary
	authors := map[string]int64{}
	books := map[string]int64{}
	stores := map[string]int64{}

	for _, a := range doc.Authors {
		created, err := c.Authors.Create(ctx, &model.Author{FirstName: a.FirstName, LastName: a.LastName}).Unwrap()
		if err != nil {
			return sum, fmt.Errorf("author %q: %w", a.Key, err)
		}
		authors[a.Key] = created.ID
		sum.Authors++
	}

	for _, s := range doc.Stores {
		created, err := c.Stores.Create(ctx, &model.Store{
			Name:    s.Name,
			Address: s.Address,
			Phone:   s.Phone,
			Website: s.Website,
			Notes:   s.Notes,
		}).Unwrap()
		if err != nil {
			return sum, fmt.Errorf("store %q: %w", s.Key, err)
		}
		stores[s.Key] = created.ID
		sum.Stores++
	}

	for _, b := range doc.Books {
		ids := make([]int64, 0, len(b.Authors))
		for _, key := range b.Authors {
			id, ok := authors[key]
			if !ok {
				return sum, fmt.Errorf("book %q: unknown author %q", b.Key, key)
			}
			ids = append(ids, id)
		}
		created, err := c.Books.Create(ctx, &model.Book{Name: b.Name, AuthorIDs: ids}).Unwrap()
		if err != nil {
			return sum, fmt.Errorf("book %q: %w", b.Key, err)
		}
		books[b.Key] = created.ID
		sum.Books++
	}

	for _, r := range doc.Recipes {
		rec := &model.Recipe{
			Name:      r.Name,
			Rating:    r.Rating,
			Notes:     r.Notes,
			BookPage:  r.BookPage,
			StorePage: r.StorePage,
		}
		if r.Book != "" {
			id, ok := books[r.Book]
			if !ok {
				return sum, fmt.Errorf("recipe %q: unknown book %q", r.Name, r.Book)
			}
			rec.BookID = model.Int64(id)
		}
		if r.Store != "" {
			id, ok := stores[r.Store]
			if !ok {
				return sum, fmt.Errorf("recipe %q: unknown store %q", r.Name, r.Store)
			}
			rec.StoreID = model.Int64(id)
		}
		if _, err := c.Recipes.Create(ctx, rec).Unwrap(); err != nil {
			return sum, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		sum.Recipes++
	}

	return sum, nil
}
