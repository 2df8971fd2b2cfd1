package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/crud"
	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/model"
	"github.com/goliatone/go-recipe-catalog/result"
)

// Books manages books and their author links. Book reads carry AuthorIDs and
// Authors; writes take the requested author set from AuthorIDs.
type Books struct {
	tables Tables
	crud   *crud.Orchestrator[model.Book]
}

// bookTables are the tables a book read or write touches.
type bookTables struct {
	books   datastore.Store[model.Book]
	links   datastore.Store[model.BookAuthor]
	authors datastore.Store[model.Author]
}

func bookTablesOf(t Tables) bookTables {
	return bookTables{books: t.Books, links: t.BookAuthors, authors: t.Authors}
}

func newBooks(tables Tables, cacheService cache.CacheService, o options) *Books {
	return &Books{
		tables: tables,
		crud:   crud.New[model.Book](cacheService, o.crudOptions()...),
	}
}

func validateBook(b *model.Book) error {
	checks := []guard.Check{
		func() error { return guard.RequireNonEmpty(b.Name, "Name") },
	}
	for _, id := range b.AuthorIDs {
		checks = append(checks, func() error { return guard.RequirePositive(id, "Author ID") })
	}
	return guard.First(checks...)
}

// GetAll returns every book with its authors, served from cache when possible.
func (s *Books) GetAll(ctx context.Context) []*model.Book {
	return s.crud.GetAllCached(ctx, s.crud.Key("all"), func(ctx context.Context) ([]*model.Book, error) {
		t := bookTablesOf(s.tables)
		books, err := t.books.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := t.attachAuthors(ctx, books...); err != nil {
			return nil, err
		}
		return books, nil
	})
}

func (s *Books) GetByID(ctx context.Context, id int64) result.Result[*model.Book] {
	return s.crud.GetByIDCore(ctx, id, bookTablesOf(s.tables).fetchSingle, s.crud.NotFoundMessage(id))
}

// Create inserts the book and its author links in one transaction.
func (s *Books) Create(ctx context.Context, book *model.Book) result.Result[*model.Book] {
	return s.crud.CreateCore(ctx, book, validateBook, func(ctx context.Context, b *model.Book) (*model.Book, error) {
		var created *model.Book
		err := s.tables.inTx(ctx, func(ctx context.Context, tx Tables) error {
			t := bookTablesOf(tx)
			row, err := t.books.Insert(ctx, b)
			if err != nil || row == nil {
				return err
			}
			created, err = t.syncAuthors(ctx, row, b.AuthorIDs)
			return err
		})
		if err != nil {
			return nil, err
		}
		return created, nil
	}, s.invalidate)
}

// Update replaces the book and its author set in one transaction.
func (s *Books) Update(ctx context.Context, id int64, book *model.Book) result.Result[*model.Book] {
	return s.crud.UpdateCore(ctx, id, book, validateBook, func(ctx context.Context, id int64, b *model.Book) (*model.Book, error) {
		var updated *model.Book
		err := s.tables.inTx(ctx, func(ctx context.Context, tx Tables) error {
			t := bookTablesOf(tx)
			row, err := t.books.UpdateByID(ctx, id, b)
			if err != nil || row == nil {
				return err
			}
			updated, err = t.syncAuthors(ctx, row, b.AuthorIDs)
			return err
		})
		if err != nil {
			return nil, err
		}
		return updated, nil
	}, s.invalidate)
}

// Delete removes the author links and then the book, in one transaction.
func (s *Books) Delete(ctx context.Context, id int64) result.Result[bool] {
	return s.crud.DeleteCore(ctx, id, s.tables.Books.FetchSingle, func(ctx context.Context, id int64) error {
		return s.tables.inTx(ctx, func(ctx context.Context, tx Tables) error {
			if err := deleteLinks(ctx, tx.BookAuthors, model.BookAuthorBookID, id); err != nil {
				return err
			}
			return tx.Books.DeleteByID(ctx, id)
		})
	}, s.invalidate, s.crud.NotFoundMessage(id))
}

func (s *Books) invalidate(ctx context.Context, _ *model.Book) {
	s.crud.Invalidate(ctx, bookNamespace, recipeNamespace)
}

func (t bookTables) fetchSingle(ctx context.Context, id int64) (*model.Book, error) {
	book, err := t.books.FetchSingle(ctx, id)
	if err != nil || book == nil {
		return book, err
	}
	if err := t.attachAuthors(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// syncAuthors makes the links of book match requested. Links present in both
// sets are left untouched; only removed pairs are deleted and only new pairs
// inserted.
func (t bookTables) syncAuthors(ctx context.Context, book *model.Book, requested []int64) (*model.Book, error) {
	current, err := t.linksOf(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	want := make(map[int64]struct{}, len(requested))
	for _, authorID := range requested {
		want[authorID] = struct{}{}
	}

	for authorID, link := range current {
		if _, keep := want[authorID]; keep {
			continue
		}
		if err := t.links.DeleteByID(ctx, link.ID); err != nil {
			return nil, fmt.Errorf("unlink author %d: %w", authorID, err)
		}
	}

	added := make([]int64, 0, len(want))
	for authorID := range want {
		if _, exists := current[authorID]; !exists {
			added = append(added, authorID)
		}
	}
	slices.Sort(added)
	for _, authorID := range added {
		link := &model.BookAuthor{BookID: book.ID, AuthorID: authorID, CreationDate: book.CreationDate}
		if _, err := t.links.Insert(ctx, link); err != nil {
			return nil, fmt.Errorf("link author %d: %w", authorID, err)
		}
	}

	if err := t.attachAuthors(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// linksOf returns the links of one book keyed by author id.
func (t bookTables) linksOf(ctx context.Context, bookID int64) (map[int64]*model.BookAuthor, error) {
	ids, err := t.links.FindIDsByFieldEquals(ctx, model.BookAuthorBookID, bookID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*model.BookAuthor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	links, err := t.links.FetchByIDs(ctx, ids, datastore.FetchOptions{})
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		out[link.AuthorID] = link
	}
	return out, nil
}

// attachAuthors fills AuthorIDs and Authors on each book with two lookups in
// total, whatever the number of books.
func (t bookTables) attachAuthors(ctx context.Context, books ...*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	bookIDs := make([]int64, 0, len(books))
	for _, b := range books {
		bookIDs = append(bookIDs, b.ID)
		b.AuthorIDs = []int64{}
		b.Authors = []*model.Author{}
	}

	linkIDs, err := t.links.FindIDsByFieldIn(ctx, model.BookAuthorBookID, bookIDs)
	if err != nil || len(linkIDs) == 0 {
		return err
	}
	links, err := t.links.FetchByIDs(ctx, linkIDs, datastore.FetchOptions{})
	if err != nil {
		return err
	}

	authorIDs := make([]int64, 0, len(links))
	for _, link := range links {
		authorIDs = append(authorIDs, link.AuthorID)
	}
	authors, err := t.authors.FetchByIDs(ctx, authorIDs, datastore.FetchOptions{SortColumn: model.AuthorLastName})
	if err != nil {
		return err
	}

	byBook := make(map[int64]map[int64]struct{}, len(books))
	for _, link := range links {
		if byBook[link.BookID] == nil {
			byBook[link.BookID] = make(map[int64]struct{})
		}
		byBook[link.BookID][link.AuthorID] = struct{}{}
	}
	for _, b := range books {
		for _, a := range authors {
			if _, ok := byBook[b.ID][a.ID]; ok {
				b.Authors = append(b.Authors, a)
				b.AuthorIDs = append(b.AuthorIDs, a.ID)
			}
		}
	}
	return nil
}
