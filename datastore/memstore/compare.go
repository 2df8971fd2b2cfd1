package memstore

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// normalize reduces a field value to a comparable form: pointers are
// dereferenced, integers widen to int64 and nil pointers become nil.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return int64(*x)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case time.Time:
		return x.UTC()
	}
	return v
}

func asInt64(v any) (int64, bool) {
	n, ok := normalize(v).(int64)
	return n, ok
}

func compareValues(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(strings.ToLower(x), strings.ToLower(y))
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return 0
}

// sortRows orders rows by column with the id as tiebreak. An empty column
// orders by id alone.
func sortRows[M any, P Row[M]](rows []*M, column string, desc bool) {
	slices.SortStableFunc(rows, func(a, b *M) int {
		if column != "" {
			va, _ := P(a).FieldValue(column)
			vb, _ := P(b).FieldValue(column)
			if c := compareValues(va, vb); c != 0 {
				if desc {
					return -c
				}
				return c
			}
		}
		return cmp.Compare(P(a).GetID(), P(b).GetID())
	})
}
