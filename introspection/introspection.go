// Package introspection models the PostgreSQL catalog snapshot that relation
// inference runs against.
//
// A Snapshot is built once, from the live catalogs or from a YAML file, and is
// read-only afterwards. Every lookup method is safe for concurrent use.
//
// Tags are free-form annotations attached to classes and attributes, usually
// parsed from smart comments:
//
//	COMMENT ON COLUMN p.posts.author_id IS E'@references p.authors\nThe author.';
//
// A tag holds either a single value or a list of values; see Tag.
package introspection

// ClassKind is the pg_class.relkind of a class.
type ClassKind string

const (
	KindTable            ClassKind = "r"
	KindPartitionedTable ClassKind = "p"
	KindView             ClassKind = "v"
	KindMaterializedView ClassKind = "m"
	KindForeignTable     ClassKind = "f"
	KindCompositeType    ClassKind = "c"
	KindIndex            ClassKind = "i"
	KindSequence         ClassKind = "S"
)

// IsSelectable reports whether rows can be read from a class of this kind.
// Only selectable classes get output types and take part in relations.
func (k ClassKind) IsSelectable() bool {
	switch k {
	case KindTable, KindPartitionedTable, KindView, KindMaterializedView, KindForeignTable:
		return true
	default:
		return false
	}
}

// ConstraintType is the pg_constraint.contype of a constraint.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "p"
	ConstraintUnique     ConstraintType = "u"
	ConstraintForeignKey ConstraintType = "f"
	ConstraintCheck      ConstraintType = "c"
)

// IsUnique reports whether the constraint guarantees at most one row per key.
func (t ConstraintType) IsUnique() bool {
	return t == ConstraintPrimaryKey || t == ConstraintUnique
}

// Namespace is a schema (pg_namespace row).
type Namespace struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Class is a table-like relation (pg_class row).
type Class struct {
	ID            uint32    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	NamespaceID   uint32    `json:"namespaceId"`
	NamespaceName string    `json:"namespaceName,omitempty"`
	Kind          ClassKind `json:"kind"`
	// TypeID is the oid of the class row type. Output types are looked up by it.
	TypeID uint32 `json:"typeId"`
	Tags   Tags   `json:"tags,omitempty"`
}

// QualifiedName returns the unquoted namespace.name of the class.
func (c *Class) QualifiedName() string {
	return c.NamespaceName + "." + c.Name
}

// Attribute is a column (pg_attribute row).
type Attribute struct {
	ClassID     uint32 `json:"classId"`
	Num         int    `json:"num"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TypeID      uint32 `json:"typeId,omitempty"`
	TypeName    string `json:"typeName"`
	NotNull     bool   `json:"notNull,omitempty"`
	Tags        Tags   `json:"tags,omitempty"`
}

// Constraint is a pg_constraint row. KeyAttributeNums lists the Num of each
// participating attribute in constraint order.
type Constraint struct {
	ID               uint32         `json:"id"`
	Name             string         `json:"name"`
	ClassID          uint32         `json:"classId"`
	Type             ConstraintType `json:"type"`
	KeyAttributeNums []int          `json:"keyAttributeNums"`
}
