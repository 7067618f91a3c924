package duckdb

import (
	"database/sql/driver"
	"strings"
)

// Arg unwraps sql.Null* values so the driver is only handed plain Go values.
func Arg(v driver.Valuer) any {
	val, err := v.Value()
	if err != nil {
		return nil
	}
	return val
}

// Where accumulates AND-ed conditions with their positional arguments.
type Where struct {
	conds []string
	args  []any
}

func (w *Where) Eq(column string, value any) *Where {
	w.conds = append(w.conds, column+" = ?")
	w.args = append(w.args, value)
	return w
}

func (w *Where) Gte(column string, value any) *Where {
	w.conds = append(w.conds, column+" >= ?")
	w.args = append(w.args, value)
	return w
}

func (w *Where) In(column string, values ...any) *Where {
	return w.list(column, "IN", values)
}

func (w *Where) NotIn(column string, values ...any) *Where {
	return w.list(column, "NOT IN", values)
}

func (w *Where) list(column, op string, values []any) *Where {
	if len(values) == 0 {
		return w
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	w.conds = append(w.conds, column+" "+op+" ("+placeholders+")")
	w.args = append(w.args, values...)
	return w
}

func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any {
	return append([]any{}, w.args...)
}
