package reltag

import (
	"fmt"

	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/introspection"
)

// Plugin adds forward relation fields to every row type. Register it with
// build.SchemaBuilder.AddHook.
var Plugin build.Hook = ForwardRelationFields

// ForwardRelationFields returns fields extended with one field per distinct
// relation declared by the tags of the scope's table. Types that do not
// represent a row of a selectable table are returned unchanged. Any tag that
// does not resolve, and any relation whose name is already taken, fails the
// whole call; fields is never modified.
func ForwardRelationFields(fields *build.Fields, b build.Build, scope build.Scope) (*build.Fields, error) {
	if !applicable(b.Snapshot(), scope) {
		return fields, nil
	}
	table := scope.Table

	drafts, err := collectDrafts(b.Snapshot(), table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.QualifiedName(), err)
	}
	if len(drafts) == 0 {
		return fields, nil
	}

	refs, err := ResolveReferences(b.Snapshot(), table, drafts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.QualifiedName(), err)
	}

	out := fields.Clone()
	for _, ref := range refs.All() {
		field, err := BuildRelationField(b, scope, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", table.QualifiedName(), err)
		}
		if out.Has(field.Name) {
			return nil, fmt.Errorf("%w: %s.%s from %s %q", ErrFieldNameCollision,
				scope.TypeName, field.Name, ref.Source, ref.Tags[0])
		}
		if err := out.Add(field); err != nil {
			return nil, fmt.Errorf("%s: %w", table.QualifiedName(), err)
		}
		b.Logger().Debug("added forward relation",
			"type", scope.TypeName, "field", field.Name, "key", ref.Key)
	}
	return out, nil
}

func applicable(snap *introspection.Snapshot, scope build.Scope) bool {
	if !scope.IsRowType && !scope.IsMutationPayload {
		return false
	}
	if scope.Table == nil || !scope.Table.Kind.IsSelectable() {
		return false
	}
	return snap.Namespace(scope.Table.NamespaceID) != nil
}

// collectDrafts parses the table's foreignKey tag, then the references tag
// of each column in ordinal order.
func collectDrafts(snap *introspection.Snapshot, table *introspection.Class) ([]ReferenceDraft, error) {
	drafts, err := ForeignKeys(table.Tags.Get(TagForeignKey))
	if err != nil {
		return nil, err
	}
	for _, attr := range snap.Attributes(table.ID) {
		colDrafts, err := ColumnReferences(attr.Name, attr.Tags.Get(TagReferences))
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, colDrafts...)
	}
	return drafts, nil
}
