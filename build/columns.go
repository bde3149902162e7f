package build

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
	"github.com/pthm/reltag/querybuilder"
)

// scalarType maps a PostgreSQL type name to a GraphQL scalar. 64-bit integers
// map to String because GraphQL Int is 32-bit.
func scalarType(attr *introspection.Attribute) *graphql.Scalar {
	switch attr.TypeName {
	case "int2", "int4":
		return graphql.Int
	case "float4", "float8", "numeric":
		return graphql.Float
	case "bool":
		return graphql.Boolean
	default:
		return graphql.String
	}
}

// columnExpr reads an attribute so that json_build_object yields a value the
// attribute's scalar accepts. Anything served as String is cast to text.
func columnExpr(table pgsql.Expr, attr *introspection.Attribute) pgsql.Expr {
	col := pgsql.Col{Table: table, Column: attr.Name}
	if scalarType(attr) == graphql.String && attr.TypeName != "text" {
		return pgsql.Cast{Expr: col, Type: "text"}
	}
	return col
}

func (s *buildState) columnFields(ot *ObjectType) (*Fields, error) {
	fields := NewFields()
	for _, attr := range s.opts.Snapshot.Attributes(ot.Class.ID) {
		var typ graphql.Output = scalarType(attr)
		if attr.NotNull {
			typ = graphql.NewNonNull(typ)
		}

		field := &Field{
			Name: s.opts.Inflector.Column(attr),
			Config: &graphql.Field{
				Type:        typ,
				Description: attr.Description,
				Resolve:     resolveFromSource,
			},
			Contribute: func(qb *querybuilder.QueryBuilder, req FieldRequest) {
				qb.Select(func() pgsql.Expr {
					return columnExpr(qb.TableAlias(), attr)
				}, SafeAlias(req.Alias))
			},
			Annotations: map[string]any{AnnotationIntrospection: attr},
		}
		if err := fields.Add(field); err != nil {
			return nil, fmt.Errorf("%s: %w", ot.Name, err)
		}
	}
	return fields, nil
}

// resolveFromSource reads a field's value from the JSON row of its parent.
func resolveFromSource(p graphql.ResolveParams) (any, error) {
	row, ok := p.Source.(map[string]any)
	if !ok {
		return nil, nil
	}
	return row[SafeAliasFromResolveInfo(p.Info)], nil
}
