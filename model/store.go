package model

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StoreName    = "name"
	StoreAddress = "address"
	StorePhone   = "phone"
	StoreWebsite = "website"
	StoreNotes   = "notes"

	// StoreNameMaxLength bounds Store.Name.
	StoreNameMaxLength = 255
)

// Store is a shop or site a recipe was taken from.
type Store struct {
	bun.BaseModel `bun:"table:stores,alias:s"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull,type:varchar(255)" json:"name"`
	Address      string    `bun:"address" json:"address,omitempty"`
	Phone        string    `bun:"phone" json:"phone,omitempty"`
	Website      string    `bun:"website" json:"website,omitempty"`
	Notes        string    `bun:"notes" json:"notes,omitempty"`
	CreationDate time.Time `bun:"creation_date,notnull" json:"creation_date"`
}

func (s *Store) GetID() int64   { return s.ID }
func (s *Store) SetID(id int64) { s.ID = id }

func (s *Store) StampCreation(now time.Time) {
	if s.CreationDate.IsZero() {
		s.CreationDate = now
	}
}

func (s *Store) SetCreationDate(ts time.Time) { s.CreationDate = ts }

func (s *Store) FieldValue(name string) (any, bool) {
	switch name {
	case ColumnID:
		return s.ID, true
	case StoreName:
		return s.Name, true
	case StoreAddress:
		return s.Address, true
	case StorePhone:
		return s.Phone, true
	case StoreWebsite:
		return s.Website, true
	case StoreNotes:
		return s.Notes, true
	case ColumnCreationDate:
		return s.CreationDate, true
	}
	return nil, false
}

func StoreColumns() []string {
	return []string{ColumnID, StoreName, StoreAddress, StorePhone, StoreWebsite, StoreNotes, ColumnCreationDate}
}
