package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/jackc/pgx/v5"

	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
	"github.com/pthm/reltag/querybuilder"
)

// Executor runs a single-row query. *pgxpool.Pool and *pgx.Conn satisfy it.
type Executor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema is a built schema.
type Schema struct {
	GraphQL graphql.Schema
	state   *buildState
}

// Types returns the object types ordered by namespace and table name.
func (s *Schema) Types() []*ObjectType {
	return s.state.types
}

// Type returns the named object type, or nil.
func (s *Schema) Type(name string) *ObjectType {
	return s.state.byName[name]
}

// Do executes a GraphQL request.
func (s *Schema) Do(ctx context.Context, request string, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.GraphQL,
		RequestString:  request,
		VariableValues: variables,
		Context:        ctx,
	})
}

// queryType builds the root Query type: one field per type with a primary
// key reading a row by that key, plus "query" which returns the root again.
func (s *buildState) queryType() *graphql.Object {
	var query *graphql.Object
	query = graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{
				"query": &graphql.Field{
					Type:        graphql.NewNonNull(query),
					Description: "Exposes the root query type nested one level down.",
					Resolve: func(graphql.ResolveParams) (any, error) {
						return map[string]any{}, nil
					},
				},
			}
			for _, ot := range s.types {
				pk := s.opts.Snapshot.PrimaryKey(ot.Class.ID)
				if pk == nil {
					continue
				}
				keys := s.opts.Snapshot.KeyAttributes(pk)
				if len(keys) == 0 {
					continue
				}

				args := graphql.FieldConfigArgument{}
				for _, key := range keys {
					args[s.opts.Inflector.Column(key)] = &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(scalarType(key)),
					}
				}

				name := s.opts.Inflector.SingleRowByUniqueKey(keys, ot.Class)
				if _, dup := fields[name]; dup {
					s.opts.Logger.Warn("root field name already taken", "field", name, "type", ot.Name)
					continue
				}
				fields[name] = &graphql.Field{
					Type:        ot.Object,
					Args:        args,
					Description: fmt.Sprintf("Reads a single `%s` using its globally unique key.", ot.Name),
					Resolve:     s.rowByKey(ot, keys),
				}
			}
			return fields
		}),
	})
	return query
}

// rowByKey resolves a root field by compiling its whole selection into one
// statement and decoding the resulting JSON row.
func (s *buildState) rowByKey(ot *ObjectType, keys []*introspection.Attribute) graphql.FieldResolveFn {
	table := pgsql.Ident(ot.Class.NamespaceName, ot.Class.Name)

	return func(p graphql.ResolveParams) (any, error) {
		if s.opts.Executor == nil {
			return nil, ErrNoExecutor
		}

		var set *ast.SelectionSet
		if len(p.Info.FieldASTs) > 0 {
			set = p.Info.FieldASTs[0].SelectionSet
		}
		data := s.resolveData(ot.Name, set, p.Info.Fragments)

		var args []any
		stmt := querybuilder.Compile(table, s.opts.Aliases.Next(), data,
			querybuilder.Options{AsJSON: true, Limit: 1},
			func(qb *querybuilder.QueryBuilder) {
				for _, key := range keys {
					args = append(args, p.Args[s.opts.Inflector.Column(key)])
					qb.Where(pgsql.Eq{
						Left:  pgsql.Col{Table: qb.TableAlias(), Column: key.Name},
						Right: keyParam(len(args), key),
					})
				}
			})
		sql := stmt.SQL()
		s.opts.Logger.Debug("executing root query", "field", p.Info.FieldName, "sql", sql)

		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}

		var raw []byte
		if err := s.opts.Executor.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("%s: %w", p.Info.FieldName, err)
		}

		var row map[string]any
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%s: decoding row: %w", p.Info.FieldName, err)
		}
		return row, nil
	}
}

// keyParam renders the placeholder for a key argument. Arguments served as
// String are sent as text and cast in SQL so any column type can be keyed.
func keyParam(n int, key *introspection.Attribute) pgsql.Expr {
	p := pgsql.Placeholder(n)
	if scalarType(key) == graphql.String && key.TypeName != "text" {
		return pgsql.Cast{Expr: pgsql.Cast{Expr: p, Type: "text"}, Type: key.TypeName}
	}
	return p
}
