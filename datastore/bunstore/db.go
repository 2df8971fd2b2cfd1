// Package bunstore implements the catalog data store on top of bun, with
// SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq) as supported drivers.
package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-recipe-catalog/model"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteDriverName is the go-sqlite3 driver registered with catalog
// connection setup.
const sqliteDriverName = "sqlite3_catalog"

// foldFunc is the SQL function lower-casing text with Unicode rules on
// SQLite, whose LOWER only folds ASCII.
const foldFunc = "catalog_fold"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{ConnectHook: setupSQLiteConn})
}

// setupSQLiteConn enables foreign keys on every new connection and registers
// foldFunc, so neither depends on the DSN.
func setupSQLiteConn(conn *sqlite3.SQLiteConn) error {
	if _, err := conn.Exec("PRAGMA foreign_keys = ON", nil); err != nil {
		return err
	}
	return conn.RegisterFunc(foldFunc, strings.ToLower, true)
}

type (
	RecipeTable     = Table[model.Recipe, *model.Recipe]
	AuthorTable     = Table[model.Author, *model.Author]
	BookTable       = Table[model.Book, *model.Book]
	BookAuthorTable = Table[model.BookAuthor, *model.BookAuthor]
	StoreTable      = Table[model.Store, *model.Store]
)

// DB owns the bun connection and exposes one table per catalog entity.
type DB struct {
	bun *bun.DB

	Recipes     *RecipeTable
	Authors     *AuthorTable
	Books       *BookTable
	BookAuthors *BookAuthorTable
	Stores      *StoreTable
}

// Open connects to the database described by driver and dsn.
func Open(driver, dsn string) (*DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)

	switch driver {
	case DriverSQLite:
		sqldb, err = sql.Open(sqliteDriverName, dsn)
		if err != nil {
			return nil, wrapErr("open sqlite", err)
		}
		// SQLite serializes writers, and ":memory:" databases are per connection.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, wrapErr("open postgres", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("bunstore: unsupported driver %q", driver)
	}

	return New(db), nil
}

// New wraps an existing bun connection. SQLite connections opened outside
// Open lack the catalog_fold function used by FindIDsByField.
func New(db *bun.DB) *DB {
	return bind(db, db)
}

func bind(db *bun.DB, idb bun.IDB) *DB {
	return &DB{
		bun:         db,
		Recipes:     NewTable[model.Recipe, *model.Recipe](idb, "recipes", model.RecipeColumns()),
		Authors:     NewTable[model.Author, *model.Author](idb, "authors", model.AuthorColumns()),
		Books:       NewTable[model.Book, *model.Book](idb, "books", model.BookColumns()),
		BookAuthors: NewTable[model.BookAuthor, *model.BookAuthor](idb, "book_authors", model.BookAuthorColumns()),
		Stores:      NewTable[model.Store, *model.Store](idb, "stores", model.StoreColumns()),
	}
}

// RunInTx calls fn with tables bound to one transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. fn must only use
// the tables of tx.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *DB) error) error {
	return d.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, bind(d.bun, tx))
	})
}

// Bun returns the underlying connection.
func (d *DB) Bun() *bun.DB { return d.bun }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return wrapErr("ping", d.bun.PingContext(ctx))
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.bun.Close()
}
