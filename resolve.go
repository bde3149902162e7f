package reltag

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pthm/reltag/introspection"
)

// Reference is a reference tag resolved against the catalog: a single-row
// link from OriginColumns of Origin to TargetColumns of Target.
// OriginColumns and TargetColumns always have the same length.
type Reference struct {
	// Key identifies the logical relation; see ReferenceKey.
	Key string
	// Tags holds every raw tag value that resolved to this relation.
	Tags   []string
	Source ReferenceSource

	Origin        *introspection.Class
	OriginColumns []*introspection.Attribute
	Target        *introspection.Class
	TargetColumns []*introspection.Attribute
}

// String renders the column pairing of the reference in declaration order:
//
//	author_id->p.authors(id)
//	post_id,author_id->p.post_authorship(post_id,author_id)
func (r *Reference) String() string {
	return joinNames(r.OriginColumns, ",") + "->" + r.Target.QualifiedName() +
		"(" + joinNames(r.TargetColumns, ",") + ")"
}

// ReferenceKey renders the identity of a relation: the set of origin columns
// and the target table. Origin column order does not matter.
//
//	author_id->p.authors
//	author_id,post_id->p.post_authorship
func ReferenceKey(origin []*introspection.Attribute, target *introspection.Class) string {
	names := make([]string, len(origin))
	for i, a := range origin {
		names[i] = a.Name
	}
	slices.Sort(names)
	return strings.Join(names, ",") + "->" + target.QualifiedName()
}

// References is an insertion-ordered set of references keyed by Reference.Key.
type References struct {
	order []*Reference
	byKey map[string]*Reference
}

func newReferences() *References {
	return &References{byKey: make(map[string]*Reference)}
}

// add inserts ref, or folds its tags into an existing reference with the
// same key. The first reference keeps its target columns.
func (r *References) add(ref *Reference) {
	if prev, ok := r.byKey[ref.Key]; ok {
		prev.Tags = append(prev.Tags, ref.Tags...)
		return
	}
	r.byKey[ref.Key] = ref
	r.order = append(r.order, ref)
}

// Len returns the number of distinct references.
func (r *References) Len() int { return len(r.order) }

// All returns the references in the order they were first seen.
func (r *References) All() []*Reference {
	return append([]*Reference(nil), r.order...)
}

// Get returns the reference with the given key, or nil.
func (r *References) Get(key string) *Reference { return r.byKey[key] }

// ResolveReferences checks every draft against the snapshot and returns the
// distinct relations they describe. The first draft that does not resolve
// aborts the whole call.
func ResolveReferences(snap *introspection.Snapshot, table *introspection.Class, drafts []ReferenceDraft) (*References, error) {
	refs := newReferences()
	for _, d := range drafts {
		ref, err := resolveReference(snap, table, d)
		if err != nil {
			return nil, err
		}
		refs.add(ref)
	}
	return refs, nil
}

func resolveReference(snap *introspection.Snapshot, table *introspection.Class, d ReferenceDraft) (*Reference, error) {
	target := snap.FindClass(d.Target.Namespace, d.Target.Entity)
	if target == nil || !target.Kind.IsSelectable() {
		return nil, fmt.Errorf("%w: %s %q: no table %s", ErrUnknownForeignTable, d.Source, d.Raw, d.Target)
	}

	origin := make([]*introspection.Attribute, len(d.OriginColumns))
	for i, name := range d.OriginColumns {
		attr := snap.Attribute(table.ID, name)
		if attr == nil {
			return nil, fmt.Errorf("%w: %s %q: %s has no column %q",
				ErrUnknownOriginColumn, d.Source, d.Raw, table.QualifiedName(), name)
		}
		origin[i] = attr
	}

	targetCols, err := resolveTargetColumns(snap, target, d, len(origin))
	if err != nil {
		return nil, err
	}

	if !hasUniqueConstraint(snap, target, targetCols) {
		return nil, fmt.Errorf("%w: %s %q: no primary key or unique constraint on %s(%s)",
			ErrTargetNotUnique, d.Source, d.Raw, target.QualifiedName(), joinNames(targetCols, ", "))
	}

	return &Reference{
		Key:           ReferenceKey(origin, target),
		Tags:          []string{d.Raw},
		Source:        d.Source,
		Origin:        table,
		OriginColumns: origin,
		Target:        target,
		TargetColumns: targetCols,
	}, nil
}

// resolveTargetColumns looks up explicit target columns by name, or falls
// back to the target's primary key when the draft names none. The implicit
// key must be as wide as the origin.
func resolveTargetColumns(snap *introspection.Snapshot, target *introspection.Class, d ReferenceDraft, width int) ([]*introspection.Attribute, error) {
	if d.TargetColumns == nil {
		pk := snap.PrimaryKey(target.ID)
		if pk == nil {
			return nil, fmt.Errorf("%w: %s %q: %s has no primary key to default to",
				ErrAmbiguousImplicitKey, d.Source, d.Raw, target.QualifiedName())
		}
		cols := snap.KeyAttributes(pk)
		if len(cols) != width {
			return nil, fmt.Errorf("%w: %s %q: primary key of %s has %d columns, reference has %d",
				ErrAmbiguousImplicitKey, d.Source, d.Raw, target.QualifiedName(), len(pk.KeyAttributeNums), width)
		}
		return cols, nil
	}

	cols := make([]*introspection.Attribute, len(d.TargetColumns))
	for i, name := range d.TargetColumns {
		attr := snap.Attribute(target.ID, name)
		if attr == nil {
			return nil, fmt.Errorf("%w: %s %q: %s has no column %q",
				ErrUnknownTargetColumn, d.Source, d.Raw, target.QualifiedName(), name)
		}
		cols[i] = attr
	}
	return cols, nil
}

// hasUniqueConstraint reports whether a primary key or unique constraint
// covers exactly cols, in any order.
func hasUniqueConstraint(snap *introspection.Snapshot, class *introspection.Class, cols []*introspection.Attribute) bool {
	want := make([]int, len(cols))
	for i, c := range cols {
		want[i] = c.Num
	}
	slices.Sort(want)

	for _, con := range snap.Constraints(class.ID) {
		if !con.Type.IsUnique() || len(con.KeyAttributeNums) != len(want) {
			continue
		}
		got := slices.Clone(con.KeyAttributeNums)
		slices.Sort(got)
		if slices.Equal(got, want) {
			return true
		}
	}
	return false
}

func joinNames(attrs []*introspection.Attribute, sep string) string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return strings.Join(names, sep)
}
