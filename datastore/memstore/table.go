package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-recipe-catalog/datastore"
)

// Row is the pointer constraint for records held in a Table.
type Row[M any] interface {
	*M
	datastore.Record
	FieldValue(name string) (any, bool)
}

// Table is a process-local datastore.Store. Records are copied in and out so
// callers never share memory with the table. Each method call is recorded and
// can be read back with Calls, which makes the table usable as a test double.
type Table[M any, P Row[M]] struct {
	mu      sync.RWMutex
	rows    map[int64]*M
	nextID  int64
	columns map[string]struct{}

	calls    map[string]int
	failure  error
	failures map[string]error
}

var _ datastore.Store[noopRow] = (*Table[noopRow, *noopRow])(nil)

// NewTable creates an empty table accepting the given columns.
func NewTable[M any, P Row[M]](columns []string) *Table[M, P] {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return &Table[M, P]{
		rows:    make(map[int64]*M),
		columns:  allowed,
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// Calls returns how many times method was invoked.
func (t *Table[M, P]) Calls(method string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.calls[method]
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (t *Table[M, P]) FailWith(err error) {
	t.mu.Lock()
	t.failure = err
	t.mu.Unlock()
}

// FailOn makes calls to method return err, leaving the other methods
// working. Pass nil to recover.
func (t *Table[M, P]) FailOn(method string, err error) {
	t.mu.Lock()
	if err == nil {
		delete(t.failures, method)
	} else {
		t.failures[method] = err
	}
	t.mu.Unlock()
}

// snapshot captures the rows and id sequence and returns a func putting
// them back. Stored rows are never mutated in place, so sharing the
// pointers is safe.
func (t *Table[M, P]) snapshot() func() {
	t.mu.RLock()
	rows := maps.Clone(t.rows)
	nextID := t.nextID
	t.mu.RUnlock()

	return func() {
		t.mu.Lock()
		t.rows = rows
		t.nextID = nextID
		t.mu.Unlock()
	}
}

// Len returns the number of stored records.
func (t *Table[M, P]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[M, P]) begin(ctx context.Context, method string) error {
	t.mu.Lock()
	t.calls[method]++
	failure := t.failure
	if err, ok := t.failures[method]; ok {
		failure = err
	}
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return failure
}

func (t *Table[M, P]) checkColumn(field string) error {
	if _, ok := t.columns[field]; !ok {
		return datastore.ErrUnknownField
	}
	return nil
}

func (t *Table[M, P]) FindIDs(ctx context.Context) ([]int64, error) {
	if err := t.begin(ctx, "FindIDs"); err != nil {
		return nil, err
	}
	return t.matchIDs(func(P) bool { return true }), nil
}

func (t *Table[M, P]) FindIDsByField(ctx context.Context, field, pattern string) ([]int64, error) {
	if err := t.begin(ctx, "FindIDsByField"); err != nil {
		return nil, err
	}
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}

	needle := strings.ToLower(pattern)
	return t.matchIDs(func(row P) bool {
		v, _ := row.FieldValue(field)
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), needle)
	}), nil
}

func (t *Table[M, P]) FindIDsByFieldIn(ctx context.Context, field string, values []int64) ([]int64, error) {
	if err := t.begin(ctx, "FindIDsByFieldIn"); err != nil {
		return nil, err
	}
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []int64{}, nil
	}

	set := make(map[int64]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return t.matchIDs(func(row P) bool {
		v, _ := row.FieldValue(field)
		n, ok := asInt64(v)
		if !ok {
			return false
		}
		_, hit := set[n]
		return hit
	}), nil
}

func (t *Table[M, P]) FindIDsByFieldEquals(ctx context.Context, field string, value any) ([]int64, error) {
	if err := t.begin(ctx, "FindIDsByFieldEquals"); err != nil {
		return nil, err
	}
	if err := t.checkColumn(field); err != nil {
		return nil, err
	}

	want := normalize(value)
	return t.matchIDs(func(row P) bool {
		v, _ := row.FieldValue(field)
		got := normalize(v)
		return got != nil && got == want
	}), nil
}

func (t *Table[M, P]) FetchByIDs(ctx context.Context, ids []int64, opts datastore.FetchOptions) ([]*M, error) {
	if err := t.begin(ctx, "FetchByIDs"); err != nil {
		return nil, err
	}
	if opts.SortColumn != "" {
		if err := t.checkColumn(opts.SortColumn); err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return []*M{}, nil
	}

	t.mu.RLock()
	rows := make([]*M, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if row, ok := t.rows[id]; ok {
			rows = append(rows, clone(row))
		}
	}
	t.mu.RUnlock()

	sortRows[M, P](rows, opts.SortColumn, opts.Descending)
	return page(rows, opts.Skip, opts.Take), nil
}

func (t *Table[M, P]) FetchAll(ctx context.Context) ([]*M, error) {
	if err := t.begin(ctx, "FetchAll"); err != nil {
		return nil, err
	}

	t.mu.RLock()
	rows := make([]*M, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, clone(row))
	}
	t.mu.RUnlock()

	sortRows[M, P](rows, "", false)
	return rows, nil
}

func (t *Table[M, P]) FetchSingle(ctx context.Context, id int64) (*M, error) {
	if err := t.begin(ctx, "FetchSingle"); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return clone(row), nil
}

func (t *Table[M, P]) Insert(ctx context.Context, record *M) (*M, error) {
	if err := t.begin(ctx, "Insert"); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	stored := clone(record)
	t.mu.Lock()
	t.nextID++
	P(stored).SetID(t.nextID)
	t.rows[t.nextID] = stored
	t.mu.Unlock()

	return clone(stored), nil
}

// UpdateByID replaces the record under id. The stored creation date is kept.
func (t *Table[M, P]) UpdateByID(ctx context.Context, id int64, record *M) (*M, error) {
	if err := t.begin(ctx, "UpdateByID"); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[id]
	if !ok {
		return nil, nil
	}

	stored := clone(record)
	P(stored).SetID(id)
	if created, ok := P(existing).FieldValue("creation_date"); ok {
		if ts, ok := created.(time.Time); ok {
			if s, ok := any(P(stored)).(interface{ SetCreationDate(time.Time) }); ok {
				s.SetCreationDate(ts)
			}
		}
	}
	t.rows[id] = stored
	return clone(stored), nil
}

func (t *Table[M, P]) DeleteByID(ctx context.Context, id int64) error {
	if err := t.begin(ctx, "DeleteByID"); err != nil {
		return err
	}

	t.mu.Lock()
	delete(t.rows, id)
	t.mu.Unlock()
	return nil
}

func (t *Table[M, P]) matchIDs(keep func(P) bool) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int64, 0)
	for id, row := range t.rows {
		if keep(P(row)) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// clone copies row, deeply when the record knows how to.
func clone[M any](row *M) *M {
	if c, ok := any(row).(interface{ Clone() *M }); ok {
		return c.Clone()
	}
	c := *row
	return &c
}

func page[M any](rows []*M, skip, take int) []*M {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(rows) {
		return []*M{}
	}
	rows = rows[skip:]
	if take > 0 && take < len(rows) {
		rows = rows[:take]
	}
	return rows
}

// noopRow only exists for the interface assertion above.
type noopRow struct{}

func (*noopRow) GetID() int64                  { return 0 }
func (*noopRow) SetID(int64)                   {}
func (*noopRow) FieldValue(string) (any, bool) { return nil, false }
