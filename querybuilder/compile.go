package querybuilder

import (
	"github.com/pthm/reltag/pgsql"
)

// Generator contributes one requested field to a query level.
type Generator func(*QueryBuilder)

// ResolveData is what a GraphQL selection needs from the database at one
// level: one generator per requested field.
type ResolveData struct {
	Generators []Generator
}

// Options controls how Compile renders the query.
type Options struct {
	// AsJSON shapes each row as a json object keyed by safe alias.
	AsJSON bool
	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// Compile builds the query that reads data from table under alias. customize
// runs after the generators and is where callers add join predicates.
func Compile(table pgsql.Expr, alias pgsql.Identifier, data ResolveData, opts Options, customize func(*QueryBuilder)) pgsql.SelectStmt {
	qb := New(table, alias)
	for _, gen := range data.Generators {
		gen(qb)
	}
	if customize != nil {
		customize(qb)
	}
	if opts.Limit > 0 {
		qb.Limit(opts.Limit)
	}
	return qb.Build(opts.AsJSON)
}
