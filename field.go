package reltag

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
	"github.com/pthm/reltag/querybuilder"
)

// Annotation keys set on relation fields.
const (
	// AnnotationForwardRelation is true on every field built here.
	AnnotationForwardRelation = "forwardRelation"
	// AnnotationReference holds the *Reference a field was built from.
	AnnotationReference = "reference"
)

// mutationPayloadKey is where mutation payload types keep their row.
const mutationPayloadKey = "data"

// BuildRelationField builds the field that reads the single Target row ref
// points at. The field contributes a correlated sub-select to its parent's
// query and resolves by reading the row that sub-select produced.
func BuildRelationField(b build.Build, scope build.Scope, ref *Reference) (*build.Field, error) {
	if b.TypeByTypeID(ref.Origin.TypeID, build.ModifierNone) == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingOutputType, ref.Origin.QualifiedName())
	}
	targetType := b.TypeByTypeID(ref.Target.TypeID, build.ModifierNone)
	if targetType == nil {
		return nil, fmt.Errorf("%w: %s (referenced by %s)", ErrMissingOutputType, ref.Target.QualifiedName(), ref)
	}

	name := b.Inflector().SingleRelationByKeys(ref.OriginColumns, ref.Target, ref.Origin, relationTags(ref))

	return &build.Field{
		Name: name,
		Config: &graphql.Field{
			Type:        targetType,
			Description: relationDescription(b, ref),
			Resolve:     relationResolver(b, scope.IsMutationPayload),
		},
		Contribute:  relationContributor(b, ref),
		Annotations: relationAnnotations(ref),
	}, nil
}

// relationContributor selects, under the request's safe alias, the target
// row as a JSON object joined to the caller's row on every key pair:
//
//	(SELECT json_build_object(...) FROM "p"."authors" AS "__local_1__"
//	 WHERE "__local_0__"."author_id" = "__local_1__"."id")
func relationContributor(b build.Build, ref *Reference) func(*querybuilder.QueryBuilder, build.FieldRequest) {
	table := pgsql.Ident(ref.Target.NamespaceName, ref.Target.Name)

	return func(qb *querybuilder.QueryBuilder, req build.FieldRequest) {
		qb.Select(func() pgsql.Expr {
			alias := b.Aliases().Next()
			stmt := querybuilder.Compile(table, alias, req.Selection, querybuilder.Options{AsJSON: true},
				func(inner *querybuilder.QueryBuilder) {
					for i, origin := range ref.OriginColumns {
						inner.Where(pgsql.Eq{
							Left:  pgsql.Col{Table: qb.TableAlias(), Column: origin.Name},
							Right: pgsql.Col{Table: inner.TableAlias(), Column: ref.TargetColumns[i].Name},
						})
					}
				})
			return pgsql.Paren{Expr: stmt}
		}, b.SafeAlias(req.Alias))
	}
}

func relationResolver(b build.Build, isMutationPayload bool) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		row, ok := p.Source.(map[string]any)
		if !ok {
			return nil, nil
		}
		if isMutationPayload {
			if row, ok = row[mutationPayloadKey].(map[string]any); !ok {
				return nil, nil
			}
		}
		return row[b.SafeAliasFromResolveInfo(p.Info)], nil
	}
}

// relationTags passes a column's own tags to the inflector so that a
// fieldName tag can rename a single-column relation.
func relationTags(ref *Reference) introspection.Tags {
	if ref.Source == SourceColumn && len(ref.OriginColumns) == 1 {
		return ref.OriginColumns[0].Tags
	}
	return introspection.Tags{}
}

func relationDescription(b build.Build, ref *Reference) string {
	if ref.Source == SourceColumn && len(ref.OriginColumns) == 1 && ref.OriginColumns[0].Description != "" {
		return ref.OriginColumns[0].Description
	}
	inf := b.Inflector()
	return fmt.Sprintf("Reads a single `%s` that is related to this `%s`.", inf.TableType(ref.Target), inf.TableType(ref.Origin))
}

func relationAnnotations(ref *Reference) map[string]any {
	var source any = ref.Origin
	if ref.Source == SourceColumn && len(ref.OriginColumns) == 1 {
		source = ref.OriginColumns[0]
	}
	return map[string]any{
		AnnotationForwardRelation:     true,
		build.AnnotationIntrospection: source,
		AnnotationReference:           ref,
	}
}
