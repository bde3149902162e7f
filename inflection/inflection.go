// Package inflection derives GraphQL names from catalog names.
package inflection

import (
	"strings"

	inflect "github.com/jinzhu/inflection"
	"github.com/stoewer/go-strcase"

	"github.com/pthm/reltag/introspection"
)

// TagFieldName overrides a derived relation field name when present in the
// tags passed to SingleRelationByKeys.
const TagFieldName = "fieldName"

// Inflector maps catalog objects to GraphQL names. Implementations must be
// pure: the same inputs always give the same name.
type Inflector interface {
	// TableType names the output type of a class.
	TableType(class *introspection.Class) string
	// Column names the field of an attribute.
	Column(attr *introspection.Attribute) string
	// SingleRelationByKeys names the forward relation from local to foreign
	// joined on keys (the local columns).
	SingleRelationByKeys(keys []*introspection.Attribute, foreign, local *introspection.Class, tags introspection.Tags) string
	// SingleRowByUniqueKey names the root query reading one row of class by keys.
	SingleRowByUniqueKey(keys []*introspection.Attribute, class *introspection.Class) string
}

// Default is the stock naming scheme: singular upper camel case types and
// lower camel case fields.
//
//	p.posts                 -> Post
//	posts.author_id         -> authorId
//	author_id -> p.authors  -> authorByAuthorId
//	p.posts by (id)         -> postById
type Default struct{}

var _ Inflector = Default{}

// TableType implements Inflector.
func (Default) TableType(class *introspection.Class) string {
	return strcase.UpperCamelCase(inflect.Singular(class.Name))
}

// Column implements Inflector.
func (Default) Column(attr *introspection.Attribute) string {
	return strcase.LowerCamelCase(attr.Name)
}

// SingleRelationByKeys implements Inflector.
func (Default) SingleRelationByKeys(keys []*introspection.Attribute, foreign, _ *introspection.Class, tags introspection.Tags) string {
	if name := tags.Get(TagFieldName).Values(); len(name) == 1 && name[0] != "" {
		return name[0]
	}
	return byKeys(foreign, keys)
}

// SingleRowByUniqueKey implements Inflector.
func (Default) SingleRowByUniqueKey(keys []*introspection.Attribute, class *introspection.Class) string {
	return byKeys(class, keys)
}

func byKeys(class *introspection.Class, keys []*introspection.Attribute) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return strcase.LowerCamelCase(inflect.Singular(class.Name) + "_by_" + strings.Join(names, "_and_"))
}
