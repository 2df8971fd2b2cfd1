package model

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	AuthorFirstName = "first_name"
	AuthorLastName  = "last_name"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName    string    `bun:"first_name,notnull" json:"first_name"`
	LastName     string    `bun:"last_name" json:"last_name,omitempty"`
	CreationDate time.Time `bun:"creation_date,notnull" json:"creation_date"`
}

// FullName joins first and last name, trimming the gap when the last name is empty.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Author) GetID() int64   { return a.ID }
func (a *Author) SetID(id int64) { a.ID = id }

func (a *Author) StampCreation(now time.Time) {
	if a.CreationDate.IsZero() {
		a.CreationDate = now
	}
}

func (a *Author) SetCreationDate(ts time.Time) { a.CreationDate = ts }

func (a *Author) FieldValue(name string) (any, bool) {
	switch name {
	case ColumnID:
		return a.ID, true
	case AuthorFirstName:
		return a.FirstName, true
	case AuthorLastName:
		return a.LastName, true
	case ColumnCreationDate:
		return a.CreationDate, true
	}
	return nil, false
}

func AuthorColumns() []string {
	return []string{ColumnID, AuthorFirstName, AuthorLastName, ColumnCreationDate}
}
