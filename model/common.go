package model

// Columns shared by every table.
const (
	ColumnID           = "id"
	ColumnCreationDate = "creation_date"
)

// Int64 returns a pointer to v. Handy for optional foreign keys.
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
