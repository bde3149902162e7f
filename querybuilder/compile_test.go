package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/reltag/pgsql"
)

func selectColumn(column, alias string) Generator {
	return func(qb *QueryBuilder) {
		qb.Select(func() pgsql.Expr {
			return pgsql.Col{Table: qb.TableAlias(), Column: column}
		}, alias)
	}
}

func TestCompile_AsJSON(t *testing.T) {
	data := ResolveData{Generators: []Generator{
		selectColumn("id", "@id"),
		selectColumn("name", "@name"),
	}}

	stmt := Compile(pgsql.Ident("p", "authors"), pgsql.Ident("a"), data, Options{AsJSON: true}, func(qb *QueryBuilder) {
		qb.Where(pgsql.Eq{Left: pgsql.Col{Table: qb.TableAlias(), Column: "id"}, Right: pgsql.Int(1)})
	})

	assert.Equal(t,
		`SELECT json_build_object('@id', "a"."id", '@name', "a"."name") FROM "p"."authors" AS "a" WHERE "a"."id" = 1`,
		stmt.SQL())
}

func TestCompile_Columns(t *testing.T) {
	data := ResolveData{Generators: []Generator{selectColumn("id", "@id")}}

	stmt := Compile(pgsql.Ident("p", "authors"), pgsql.Ident("a"), data, Options{Limit: 1}, nil)

	assert.Equal(t, `SELECT "a"."id" AS "@id" FROM "p"."authors" AS "a" LIMIT 1`, stmt.SQL())
}

func TestCompile_MultiplePredicatesAreConjoined(t *testing.T) {
	stmt := Compile(pgsql.Ident("p", "x"), pgsql.Ident("x"), ResolveData{}, Options{AsJSON: true}, func(qb *QueryBuilder) {
		qb.Where(pgsql.Raw("a"))
		qb.Where(pgsql.Raw("b"))
	})

	assert.Equal(t, `SELECT json_build_object() FROM "p"."x" AS "x" WHERE (a AND b)`, stmt.SQL())
}

func TestQueryBuilder_SelectIsLazyAndDeduplicated(t *testing.T) {
	qb := New(pgsql.Ident("t"), pgsql.Ident("t0"))

	calls := 0
	qb.Select(func() pgsql.Expr { calls++; return pgsql.Int(1) }, "@one")
	qb.Select(func() pgsql.Expr { calls++; return pgsql.Int(2) }, "@one")
	assert.Equal(t, 0, calls, "select functions run at build time")

	stmt := qb.Build(false)
	assert.Equal(t, 1, calls)
	assert.Equal(t, `SELECT 1 AS "@one" FROM "t" AS "t0"`, stmt.SQL())
}

func TestCompile_Nested(t *testing.T) {
	// posts -> authors, the way a relation field contributes a sub-select.
	relation := func(qb *QueryBuilder) {
		qb.Select(func() pgsql.Expr {
			inner := pgsql.Ident("b")
			return pgsql.Paren{Expr: Compile(pgsql.Ident("p", "authors"), inner,
				ResolveData{Generators: []Generator{selectColumn("name", "@name")}},
				Options{AsJSON: true},
				func(iq *QueryBuilder) {
					iq.Where(pgsql.Eq{
						Left:  pgsql.Col{Table: qb.TableAlias(), Column: "author_id"},
						Right: pgsql.Col{Table: inner, Column: "id"},
					})
				})}
		}, "@author")
	}

	stmt := Compile(pgsql.Ident("p", "posts"), pgsql.Ident("a"),
		ResolveData{Generators: []Generator{relation}}, Options{AsJSON: true}, nil)

	assert.Equal(t,
		`SELECT json_build_object('@author', (SELECT json_build_object('@name', "b"."name") FROM "p"."authors" AS "b" WHERE "a"."author_id" = "b"."id")) FROM "p"."posts" AS "a"`,
		stmt.SQL())
}
