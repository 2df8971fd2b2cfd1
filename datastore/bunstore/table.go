package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/model"
)

// Row is the pointer constraint for bun models served by a Table.
type Row[M any] interface {
	*M
	datastore.Record
}

// Table implements datastore.Store over one bun model.
type Table[M any, P Row[M]] struct {
	db      bun.IDB
	name    string
	columns map[string]struct{}
}

var _ datastore.Store[model.Recipe] = (*Table[model.Recipe, *model.Recipe])(nil)

// NewTable binds M to db. columns is the allowlist for lookups and sorting.
func NewTable[M any, P Row[M]](db bun.IDB, name string, columns []string) *Table[M, P] {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return &Table[M, P]{db: db, name: name, columns: allowed}
}

func (t *Table[M, P]) op(name string) string {
	return t.name + "." + name
}

func (t *Table[M, P]) checkColumn(field string) error {
	if _, ok := t.columns[field]; !ok {
		return datastore.ErrUnknownField
	}
	return nil
}

func (t *Table[M, P]) selectIDs() *bun.SelectQuery {
	return t.db.NewSelect().
		Model((*M)(nil)).
		Column(model.ColumnID).
		OrderExpr("? ASC", bun.Ident(model.ColumnID))
}

func (t *Table[M, P]) scanIDs(ctx context.Context, op string, q *bun.SelectQuery) ([]int64, error) {
	ids := make([]int64, 0)
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, wrapErr(t.op(op), err)
	}
	return ids, nil
}

func (t *Table[M, P]) FindIDs(ctx context.Context) ([]int64, error) {
	return t.scanIDs(ctx, "FindIDs", t.selectIDs())
}

func (t *Table[M, P]) FindIDsByField(ctx context.Context, field, pattern string) ([]int64, error) {
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}
	q := t.selectIDs()
	if t.db.Dialect().Name() == dialect.PG {
		q = q.Where("? ILIKE ? ESCAPE '!'", bun.Ident(field), containsPattern(pattern))
	} else {
		q = q.Where(foldFunc+"(COALESCE(?, '')) LIKE ? ESCAPE '!'", bun.Ident(field), containsPattern(strings.ToLower(pattern)))
	}
	return t.scanIDs(ctx, "FindIDsByField", q)
}

func (t *Table[M, P]) FindIDsByFieldIn(ctx context.Context, field string, values []int64) ([]int64, error) {
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []int64{}, nil
	}
	q := t.selectIDs().Where("? IN (?)", bun.Ident(field), bun.In(values))
	return t.scanIDs(ctx, "FindIDsByFieldIn", q)
}

func (t *Table[M, P]) FindIDsByFieldEquals(ctx context.Context, field string, value any) ([]int64, error) {
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}
	q := t.selectIDs()
	if value == nil {
		q = q.Where("? IS NULL", bun.Ident(field))
	} else {
		q = q.Where("? = ?", bun.Ident(field), value)
	}
	return t.scanIDs(ctx, "FindIDsByFieldEquals", q)
}

func (t *Table[M, P]) FetchByIDs(ctx context.Context, ids []int64, opts datastore.FetchOptions) ([]*M, error) {
	if opts.SortColumn != "" {
		if err := t.checkColumn(opts.SortColumn); err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return []*M{}, nil
	}

	rows := make([]*M, 0)
	q := t.db.NewSelect().Model(&rows).Where("? IN (?)", bun.Ident(model.ColumnID), bun.In(ids))
	if opts.SortColumn != "" {
		direction := "ASC"
		if opts.Descending {
			direction = "DESC"
		}
		q = q.OrderExpr("? ?", bun.Ident(opts.SortColumn), bun.Safe(direction))
	}
	q = q.OrderExpr("? ASC", bun.Ident(model.ColumnID))

	// OFFSET without LIMIT is not portable, so an unbounded page skips in memory.
	if opts.Take > 0 {
		q = q.Limit(opts.Take)
		if opts.Skip > 0 {
			q = q.Offset(opts.Skip)
		}
	}

	if err := q.Scan(ctx); err != nil {
		return nil, wrapErr(t.op("FetchByIDs"), err)
	}

	if opts.Take <= 0 && opts.Skip > 0 {
		if opts.Skip >= len(rows) {
			return []*M{}, nil
		}
		rows = rows[opts.Skip:]
	}
	return rows, nil
}

func (t *Table[M, P]) FetchAll(ctx context.Context) ([]*M, error) {
	rows := make([]*M, 0)
	err := t.db.NewSelect().
		Model(&rows).
		OrderExpr("? ASC", bun.Ident(model.ColumnID)).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr(t.op("FetchAll"), err)
	}
	return rows, nil
}

func (t *Table[M, P]) FetchSingle(ctx context.Context, id int64) (*M, error) {
	row := new(M)
	err := t.db.NewSelect().
		Model(row).
		Where("? = ?", bun.Ident(model.ColumnID), id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(t.op("FetchSingle"), err)
	}
	return row, nil
}

// Insert writes record and returns the stored row as read back.
func (t *Table[M, P]) Insert(ctx context.Context, record *M) (*M, error) {
	if record == nil {
		return nil, nil
	}
	P(record).SetID(0)

	res, err := t.db.NewInsert().Model(record).Exec(ctx)
	if err != nil {
		return nil, wrapErr(t.op("Insert"), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	id := P(record).GetID()
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return nil, wrapErr(t.op("Insert"), err)
		}
	}
	return t.FetchSingle(ctx, id)
}

// UpdateByID replaces every column but id and creation_date. It returns nil
// when no row has the given id.
func (t *Table[M, P]) UpdateByID(ctx context.Context, id int64, record *M) (*M, error) {
	if record == nil {
		return nil, nil
	}
	P(record).SetID(id)

	res, err := t.db.NewUpdate().
		Model(record).
		ExcludeColumn(model.ColumnID, model.ColumnCreationDate).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, wrapErr(t.op("UpdateByID"), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return t.FetchSingle(ctx, id)
}

func (t *Table[M, P]) DeleteByID(ctx context.Context, id int64) error {
	_, err := t.db.NewDelete().
		Model((*M)(nil)).
		Where("? = ?", bun.Ident(model.ColumnID), id).
		Exec(ctx)
	return wrapErr(t.op("DeleteByID"), err)
}

// containsPattern builds a LIKE pattern matching pattern anywhere, escaping
// LIKE wildcards with '!'.
func containsPattern(pattern string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(pattern)
	return "%" + escaped + "%"
}
