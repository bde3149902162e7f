// Package pgsql provides typed building blocks for PostgreSQL query fragments.
//
// Rather than concatenating strings, callers compose values that each render
// their own SQL. Identifiers and literals are always quoted, so fragments can
// be nested freely without re-escaping:
//
//	Ident("p", "posts")                      // "p"."posts"
//	Col{Table: Ident("t"), Column: "id"}     // "t"."id"
//	Lit("document")                          // 'document'
//	Eq{Left: a, Right: b}                    // a = b
//	And(e1, e2)                              // (e1 AND e2)
//	Paren{Expr: stmt}                        // (SELECT ...)
//
// Statements are modelled by SelectStmt; JSON row shaping by JSONBuildObject.
package pgsql

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Expr is the interface that all SQL expression types implement.
type Expr interface {
	SQL() string
}

// Identifier is a possibly qualified, always quoted, SQL identifier.
type Identifier struct {
	Names []string
}

// Ident creates an identifier from its dot-separated parts.
func Ident(names ...string) Identifier {
	return Identifier{Names: names}
}

// SQL renders each part quoted, joined by dots.
func (i Identifier) SQL() string {
	parts := make([]string, len(i.Names))
	for n, name := range i.Names {
		parts[n] = pq.QuoteIdentifier(name)
	}
	return strings.Join(parts, ".")
}

// Col represents a column of a table or alias.
type Col struct {
	Table  Expr // optional
	Column string
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == nil {
		return pq.QuoteIdentifier(c.Column)
	}
	return c.Table.SQL() + "." + pq.QuoteIdentifier(c.Column)
}

// Lit represents a string literal.
type Lit string

// SQL renders the literal quoted.
func (l Lit) SQL() string {
	return strings.TrimSpace(pq.QuoteLiteral(string(l)))
}

// Int represents an integer literal.
type Int int

// SQL renders the integer.
func (i Int) SQL() string {
	return fmt.Sprintf("%d", i)
}

// Raw is an escape hatch for arbitrary SQL.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// Placeholder is a positional query parameter ($1, $2, ...).
type Placeholder int

// SQL renders the placeholder.
func (p Placeholder) SQL() string {
	return fmt.Sprintf("$%d", int(p))
}

// Cast represents a type cast (expr::type).
type Cast struct {
	Expr Expr
	Type string
}

// SQL renders the cast. The type name is quoted unless it is already a
// qualified or array type spelling.
func (c Cast) SQL() string {
	typ := c.Type
	if !strings.ContainsAny(typ, `."[`) {
		typ = pq.QuoteIdentifier(typ)
	}
	return c.Expr.SQL() + "::" + typ
}

// Func represents a function call.
type Func struct {
	Name string
	Args []Expr
}

// SQL renders the function call.
func (f Func) SQL() string {
	return f.Name + "(" + joinExprs(f.Args, ", ") + ")"
}

// Alias wraps an expression with an alias (expr AS alias).
type Alias struct {
	Expr Expr
	Name Identifier
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " AS " + a.Name.SQL()
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

// Eq represents an equality comparison (=).
type Eq struct {
	Left  Expr
	Right Expr
}

func (e Eq) SQL() string { return e.Left.SQL() + " = " + e.Right.SQL() }

// AndExpr represents a conjunction.
type AndExpr struct {
	Exprs []Expr
}

// And creates a conjunction of the given expressions. Nil entries are dropped.
func And(exprs ...Expr) AndExpr {
	var kept []Expr
	for _, e := range exprs {
		if e != nil {
			kept = append(kept, e)
		}
	}
	return AndExpr{Exprs: kept}
}

// SQL renders the conjunction. No terms render TRUE and a single term renders
// unwrapped.
func (a AndExpr) SQL() string {
	switch len(a.Exprs) {
	case 0:
		return "TRUE"
	case 1:
		return a.Exprs[0].SQL()
	default:
		return "(" + joinExprs(a.Exprs, " AND ") + ")"
	}
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}
