// Package querybuilder assembles the SELECT that reads one level of a
// GraphQL selection, and compiles nested levels into correlated sub-queries.
//
// Fields contribute to a QueryBuilder through Select; the builder renders
// every contribution as a column keyed by the field's safe alias. Compile
// wraps that in a sub-select over another table so that relations can nest
// to any depth inside a single statement.
package querybuilder

import (
	"github.com/pthm/reltag/pgsql"
)

type selection struct {
	expr  func() pgsql.Expr
	alias string
}

// QueryBuilder collects the selections and predicates of one query level.
// A QueryBuilder is not safe for concurrent use; each request builds its own.
type QueryBuilder struct {
	from       pgsql.Expr
	alias      pgsql.Identifier
	selections []selection
	seen       map[string]bool
	where      []pgsql.Expr
	limit      int
}

// New returns a builder reading from the given table under alias.
func New(from pgsql.Expr, alias pgsql.Identifier) *QueryBuilder {
	return &QueryBuilder{
		from:  from,
		alias: alias,
		seen:  make(map[string]bool),
	}
}

// Select adds a column produced by fn under alias. fn runs when the query is
// rendered, not when Select is called. Selecting an alias twice keeps the
// first selection.
func (q *QueryBuilder) Select(fn func() pgsql.Expr, alias string) {
	if q.seen[alias] {
		return
	}
	q.seen[alias] = true
	q.selections = append(q.selections, selection{expr: fn, alias: alias})
}

// TableAlias returns the alias the query's table is read under.
func (q *QueryBuilder) TableAlias() pgsql.Identifier {
	return q.alias
}

// Where adds a predicate. Predicates are conjoined.
func (q *QueryBuilder) Where(expr pgsql.Expr) {
	q.where = append(q.where, expr)
}

// Limit caps the number of rows returned.
func (q *QueryBuilder) Limit(n int) {
	q.limit = n
}

// Build renders the query. With asJSON each row is a single json object keyed
// by selection alias; otherwise each selection is its own column.
func (q *QueryBuilder) Build(asJSON bool) pgsql.SelectStmt {
	stmt := pgsql.SelectStmt{
		From:  pgsql.TableRef{Table: q.from, Alias: q.alias},
		Limit: q.limit,
	}
	if len(q.where) > 0 {
		stmt.Where = pgsql.And(q.where...)
	}

	if asJSON {
		obj := pgsql.JSONBuildObject{}
		for _, s := range q.selections {
			obj.Pairs = append(obj.Pairs, pgsql.JSONPair{Key: s.alias, Value: s.expr()})
		}
		stmt.Columns = []pgsql.Expr{obj}
		return stmt
	}

	for _, s := range q.selections {
		stmt.Columns = append(stmt.Columns, pgsql.Alias{Expr: s.expr(), Name: pgsql.Ident(s.alias)})
	}
	return stmt
}
