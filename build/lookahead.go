package build

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/pthm/reltag/querybuilder"
)

// requestGroup is every occurrence of one response key in a selection.
// GraphQL merges repeated keys, so their sub-selections are read together.
type requestGroup struct {
	alias string
	field *Field
	sets  []*ast.SelectionSet
}

// resolveData walks a selection set of typeName, following fragments, and
// collects the contribution of every requested field.
func (s *buildState) resolveData(typeName string, set *ast.SelectionSet, fragments map[string]ast.Definition) querybuilder.ResolveData {
	return s.resolveSets(typeName, []*ast.SelectionSet{set}, fragments)
}

func (s *buildState) resolveSets(typeName string, sets []*ast.SelectionSet, fragments map[string]ast.Definition) querybuilder.ResolveData {
	var data querybuilder.ResolveData
	ot := s.byName[typeName]
	if ot == nil || ot.Fields == nil {
		return data
	}

	var groups []*requestGroup
	byAlias := make(map[string]*requestGroup)

	var collect func(set *ast.SelectionSet)
	collect = func(set *ast.SelectionSet) {
		if set == nil {
			return
		}
		for _, sel := range set.Selections {
			switch sel := sel.(type) {
			case *ast.Field:
				if sel.Name == nil {
					continue
				}
				field := ot.Fields.Get(sel.Name.Value)
				if field == nil || field.Contribute == nil {
					continue
				}

				alias := sel.Name.Value
				if sel.Alias != nil && sel.Alias.Value != "" {
					alias = sel.Alias.Value
				}
				g, ok := byAlias[alias]
				if !ok {
					g = &requestGroup{alias: alias, field: field}
					byAlias[alias] = g
					groups = append(groups, g)
				}
				if sel.SelectionSet != nil {
					g.sets = append(g.sets, sel.SelectionSet)
				}

			case *ast.InlineFragment:
				if typeConditionMatches(sel.TypeCondition, typeName) {
					collect(sel.SelectionSet)
				}

			case *ast.FragmentSpread:
				if sel.Name == nil {
					continue
				}
				def, ok := fragments[sel.Name.Value].(*ast.FragmentDefinition)
				if ok && typeConditionMatches(def.TypeCondition, typeName) {
					collect(def.SelectionSet)
				}
			}
		}
	}
	for _, set := range sets {
		collect(set)
	}

	for _, g := range groups {
		req := FieldRequest{Alias: g.alias}
		if len(g.sets) > 0 {
			if obj, ok := graphql.GetNamed(g.field.Config.Type).(*graphql.Object); ok {
				req.Selection = s.resolveSets(obj.Name(), g.sets, fragments)
			}
		}
		contribute := g.field.Contribute
		data.Generators = append(data.Generators, func(qb *querybuilder.QueryBuilder) {
			contribute(qb, req)
		})
	}
	return data
}

func typeConditionMatches(cond *ast.Named, typeName string) bool {
	return cond == nil || cond.Name == nil || cond.Name.Value == typeName
}
