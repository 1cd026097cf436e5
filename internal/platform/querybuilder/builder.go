package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// writer accumulates SQL text and numbered postgres placeholders.
type writer struct {
	sb   strings.Builder
	args []any
}

func (w *writer) text(s string) {
	w.sb.WriteString(s)
}

func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.sb.WriteString("$")
	w.sb.WriteString(strconv.Itoa(len(w.args)))
}

// expr copies s, replacing each '?' with the next bound value. Extra '?'
// characters are left as-is.
func (w *writer) expr(s string, values []any) {
	next := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.sb.WriteByte(s[i])
	}
}

func (w *writer) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	w.text(" WHERE ")
	writeJoined(w, conds, " AND ")
}

func (w *writer) result() (string, []any, error) {
	return w.sb.String(), w.args, nil
}

func writeJoined(w *writer, conds []Condition, sep string) {
	for i, c := range conds {
		if i > 0 {
			w.text(sep)
		}
		c.write(w)
	}
}

// Condition is one predicate of a WHERE clause.
type Condition interface {
	write(w *writer)
}

type conditionFunc func(w *writer)

func (f conditionFunc) write(w *writer) { f(w) }

func Eq(column string, value any) Condition {
	return Cmp(column, "=", value)
}

// Cmp compares a column with a bound value using op, for example "<=".
func Cmp(column, op string, value any) Condition {
	return conditionFunc(func(w *writer) {
		w.text(column + " " + op + " ")
		w.bind(value)
	})
}

// EqFold matches a text column case-insensitively.
func EqFold(column, value string) Condition {
	return conditionFunc(func(w *writer) {
		w.text("LOWER(" + column + ") = LOWER(")
		w.bind(value)
		w.text(")")
	})
}

// Contains matches rows whose array column holds value.
func Contains(arrayColumn string, value any) Condition {
	return conditionFunc(func(w *writer) {
		w.bind(value)
		w.text(" = ANY(" + arrayColumn + ")")
	})
}

func In(column string, values []any) Condition {
	return conditionFunc(func(w *writer) {
		if len(values) == 0 {
			w.text("1=0")
			return
		}
		w.text(column + " IN (")
		for i, v := range values {
			if i > 0 {
				w.text(", ")
			}
			w.bind(v)
		}
		w.text(")")
	})
}

func IsNull(column string) Condition {
	return conditionFunc(func(w *writer) { w.text(column + " IS NULL") })
}

func IsNotNull(column string) Condition {
	return conditionFunc(func(w *writer) { w.text(column + " IS NOT NULL") })
}

// Or groups conditions in parentheses joined by OR.
func Or(conds ...Condition) Condition {
	return conditionFunc(func(w *writer) {
		if len(conds) == 0 {
			w.text("1=0")
			return
		}
		w.text("(")
		writeJoined(w, conds, " OR ")
		w.text(")")
	})
}

// And groups conditions in parentheses; useful inside Or.
func And(conds ...Condition) Condition {
	return conditionFunc(func(w *writer) {
		if len(conds) == 0 {
			w.text("1=1")
			return
		}
		w.text("(")
		writeJoined(w, conds, " AND ")
		w.text(")")
	})
}

// Expr is a raw predicate with '?' placeholders.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(w *writer) { w.expr(expr, args) })
}

// EqLiteral inlines a quoted string instead of binding it.
func EqLiteral(column, value string) Condition {
	return conditionFunc(func(w *writer) { w.text(column + " = " + quoteLiteral(value)) })
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
	suffix  string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// ForUpdate locks the selected rows until the transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.suffix = "FOR UPDATE"
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &writer{}
	w.text("SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.suffix != "" {
		w.text(" " + b.suffix)
	}
	return w.result()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &writer{}
	w.text("INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.text(", ")
		}
		w.text("(")
		for j, v := range row {
			if j > 0 {
				w.text(", ")
			}
			w.bind(v)
		}
		w.text(")")
	}
	if b.suffix != "" {
		w.text(" " + b.suffix)
	}
	return w.result()
}

type assignment struct {
	column string
	expr   string
	args   []any
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: "?", args: []any{value}})
	return b
}

// SetExpr assigns a raw expression with '?' placeholders, such as
// "version + 1" or "NOW()".
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, args: args})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &writer{}
	w.text("UPDATE " + b.table + " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(s.column + " = ")
		w.expr(s.expr, s.args)
	}
	w.where(b.where)
	if b.suffix != "" {
		w.text(" " + b.suffix)
	}
	return w.result()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without where is not allowed")
	}

	w := &writer{}
	w.text("DELETE FROM " + b.table)
	w.where(b.where)
	return w.result()
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
