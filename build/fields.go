package build

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/pthm/reltag/querybuilder"
)

// FieldRequest is one occurrence of a field in a GraphQL selection.
type FieldRequest struct {
	// Alias is the response key: the field alias, or its name.
	Alias string
	// Selection holds what the field's own sub-selection needs, for fields of
	// object type.
	Selection querybuilder.ResolveData
}

// Field is a field of an object type together with the way it reads its data.
type Field struct {
	Name   string
	Config *graphql.Field
	// Contribute adds what the field needs to the query of its parent type.
	// Nil for fields that need nothing from the database.
	Contribute func(qb *querybuilder.QueryBuilder, req FieldRequest)
	// Annotations carry metadata for other consumers; build never reads them.
	Annotations map[string]any
}

// Fields is an insertion-ordered set of fields keyed by name.
type Fields struct {
	order  []string
	byName map[string]*Field
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{byName: make(map[string]*Field)}
}

// Add appends a field. Adding a name that is already present fails.
func (f *Fields) Add(field *Field) error {
	if _, ok := f.byName[field.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateField, field.Name)
	}
	f.order = append(f.order, field.Name)
	f.byName[field.Name] = field
	return nil
}

// Has reports whether a field is present.
func (f *Fields) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Get returns the named field, or nil.
func (f *Fields) Get(name string) *Field {
	return f.byName[name]
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.order)
}

// Names returns field names in insertion order.
func (f *Fields) Names() []string {
	return append([]string(nil), f.order...)
}

// All returns the fields in insertion order.
func (f *Fields) All() []*Field {
	out := make([]*Field, len(f.order))
	for i, name := range f.order {
		out[i] = f.byName[name]
	}
	return out
}

// Clone returns a copy that can be extended without affecting f.
func (f *Fields) Clone() *Fields {
	c := &Fields{
		order:  append([]string(nil), f.order...),
		byName: make(map[string]*Field, len(f.byName)),
	}
	for k, v := range f.byName {
		c.byName[k] = v
	}
	return c
}

// graphqlFields converts the set for graphql.ObjectConfig. Each config is
// copied so the returned map can be handed to graphql-go.
func (f *Fields) graphqlFields() graphql.Fields {
	out := make(graphql.Fields, len(f.order))
	for _, field := range f.All() {
		cfg := *field.Config
		out[field.Name] = &cfg
	}
	return out
}
