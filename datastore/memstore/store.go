// Package memstore keeps catalog tables in process memory.
//
// It backs the "memory" database driver and doubles as the store used by
// the package tests across the module.
package memstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-recipe-catalog/model"
)

type (
	RecipeTable     = Table[model.Recipe, *model.Recipe]
	AuthorTable     = Table[model.Author, *model.Author]
	BookTable       = Table[model.Book, *model.Book]
	BookAuthorTable = Table[model.BookAuthor, *model.BookAuthor]
	StoreTable      = Table[model.Store, *model.Store]
)

// Store groups one table per catalog entity.
type Store struct {
	Recipes     *RecipeTable
	Authors     *AuthorTable
	Books       *BookTable
	BookAuthors *BookAuthorTable
	Stores      *StoreTable

	txMu sync.Mutex
}

// New creates an empty in-memory catalog.
func New() *Store {
	return &Store{
		Recipes:     NewTable[model.Recipe, *model.Recipe](model.RecipeColumns()),
		Authors:     NewTable[model.Author, *model.Author](model.AuthorColumns()),
		Books:       NewTable[model.Book, *model.Book](model.BookColumns()),
		BookAuthors: NewTable[model.BookAuthor, *model.BookAuthor](model.BookAuthorColumns()),
		Stores:      NewTable[model.Store, *model.Store](model.StoreColumns()),
	}
}

// RunInTx calls fn with s and restores every table to its prior state when
// fn returns an error. Transactions run one at a time; writes made outside a
// transaction while one is open are lost if it rolls back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	restore := []func(){
		s.Recipes.snapshot(),
		s.Authors.snapshot(),
		s.Books.snapshot(),
		s.BookAuthors.snapshot(),
		s.Stores.snapshot(),
	}
	if err := fn(ctx, s); err != nil {
		for _, undo := range restore {
			undo()
		}
		return err
	}
	return nil
}
