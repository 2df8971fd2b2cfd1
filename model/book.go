package model

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

const (
	BookName = "name"

	BookAuthorBookID   = "book_id"
	BookAuthorAuthorID = "author_id"
)

// Book is linked to its authors through BookAuthor rows. AuthorIDs is the
// requested author set on writes; Authors is populated on reads.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	CreationDate time.Time `bun:"creation_date,notnull" json:"creation_date"`

	AuthorIDs []int64   `bun:"-" json:"author_ids,omitempty"`
	Authors   []*Author `bun:"-" json:"authors,omitempty"`
}

func (b *Book) GetID() int64   { return b.ID }
func (b *Book) SetID(id int64) { b.ID = id }

func (b *Book) StampCreation(now time.Time) {
	if b.CreationDate.IsZero() {
		b.CreationDate = now
	}
}

func (b *Book) SetCreationDate(ts time.Time) { b.CreationDate = ts }

// Clone returns a copy sharing no memory with b, authors included.
func (b *Book) Clone() *Book {
	c := *b
	c.AuthorIDs = slices.Clone(b.AuthorIDs)
	if b.Authors != nil {
		c.Authors = make([]*Author, len(b.Authors))
		for i, a := range b.Authors {
			if a != nil {
				author := *a
				c.Authors[i] = &author
			}
		}
	}
	return &c
}

func (b *Book) FieldValue(name string) (any, bool) {
	switch name {
	case ColumnID:
		return b.ID, true
	case BookName:
		return b.Name, true
	case ColumnCreationDate:
		return b.CreationDate, true
	}
	return nil, false
}

func BookColumns() []string {
	return []string{ColumnID, BookName, ColumnCreationDate}
}

// BookAuthor is the join row between a book and one of its authors. The
// (book_id, author_id) pair is unique.
type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	BookID       int64     `bun:"book_id,notnull,unique:book_author_pair" json:"book_id"`
	AuthorID     int64     `bun:"author_id,notnull,unique:book_author_pair" json:"author_id"`
	CreationDate time.Time `bun:"creation_date,notnull" json:"creation_date"`
}

func (l *BookAuthor) GetID() int64   { return l.ID }
func (l *BookAuthor) SetID(id int64) { l.ID = id }

func (l *BookAuthor) StampCreation(now time.Time) {
	if l.CreationDate.IsZero() {
		l.CreationDate = now
	}
}

func (l *BookAuthor) SetCreationDate(ts time.Time) { l.CreationDate = ts }

func (l *BookAuthor) FieldValue(name string) (any, bool) {
	switch name {
	case ColumnID:
		return l.ID, true
	case BookAuthorBookID:
		return l.BookID, true
	case BookAuthorAuthorID:
		return l.AuthorID, true
	case ColumnCreationDate:
		return l.CreationDate, true
	}
	return nil, false
}

func BookAuthorColumns() []string {
	return []string{ColumnID, BookAuthorBookID, BookAuthorAuthorID, ColumnCreationDate}
}
