package pgsql

import (
	"fmt"
	"strings"
)

// Optf returns formatted string if condition is true, empty string otherwise.
// Useful for optional SQL clauses.
func Optf(cond bool, format string, args ...any) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// TableExpr is the interface for table expressions in FROM clauses.
type TableExpr interface {
	// TableSQL returns the SQL for use in a FROM clause.
	TableSQL() string
}

// TableRef is a table (or any relation expression) with an optional alias.
type TableRef struct {
	Table Expr
	Alias Expr // optional
}

// TableSQL implements TableExpr.
func (t TableRef) TableSQL() string {
	if t.Alias != nil {
		return t.Table.SQL() + " AS " + t.Alias.SQL()
	}
	return t.Table.SQL()
}

// SelectStmt represents a SELECT query. It renders on a single line so it
// can be nested inside other fragments.
type SelectStmt struct {
	Columns []Expr
	From    TableExpr
	Where   Expr
	Limit   int
}

// SQL renders the SELECT statement.
func (s SelectStmt) SQL() string {
	clauses := []string{
		"SELECT " + s.columnsSQL(),
		Optf(s.From != nil, "FROM %s", s.fromSQL()),
		Optf(s.Where != nil, "WHERE %s", s.whereSQL()),
		Optf(s.Limit > 0, "LIMIT %d", s.Limit),
	}

	var parts []string
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func (s SelectStmt) columnsSQL() string {
	if len(s.Columns) == 0 {
		return "1"
	}
	return joinExprs(s.Columns, ", ")
}

func (s SelectStmt) fromSQL() string {
	if s.From == nil {
		return ""
	}
	return s.From.TableSQL()
}

func (s SelectStmt) whereSQL() string {
	if s.Where == nil {
		return ""
	}
	return s.Where.SQL()
}
