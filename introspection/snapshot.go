package introspection

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSnapshot is returned when snapshot contents are inconsistent,
// for example an attribute that belongs to no known class.
var ErrInvalidSnapshot = errors.New("reltag/introspection: invalid snapshot")

// IsInvalidSnapshotErr returns true if err is or wraps ErrInvalidSnapshot.
func IsInvalidSnapshotErr(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot)
}

// Snapshot is an immutable view of the catalog. Build it with NewSnapshot.
type Snapshot struct {
	namespaces  []*Namespace
	classes     []*Class
	attributes  []*Attribute
	constraints []*Constraint

	namespaceByID      map[uint32]*Namespace
	classByID          map[uint32]*Class
	classByName        map[classKey]*Class
	attributesByClass  map[uint32][]*Attribute
	constraintsByClass map[uint32][]*Constraint
}

type classKey struct {
	namespace string
	name      string
}

// NewSnapshot indexes the given catalog rows. Class namespace names are
// filled in from namespaces when missing, and attributes are ordered by Num.
// Duplicate ids and rows pointing at unknown classes are rejected.
func NewSnapshot(namespaces []*Namespace, classes []*Class, attributes []*Attribute, constraints []*Constraint) (*Snapshot, error) {
	s := &Snapshot{
		namespaces:         namespaces,
		classes:            classes,
		attributes:         attributes,
		constraints:        constraints,
		namespaceByID:      make(map[uint32]*Namespace, len(namespaces)),
		classByID:          make(map[uint32]*Class, len(classes)),
		classByName:        make(map[classKey]*Class, len(classes)),
		attributesByClass:  make(map[uint32][]*Attribute),
		constraintsByClass: make(map[uint32][]*Constraint),
	}

	for _, ns := range namespaces {
		if _, dup := s.namespaceByID[ns.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate namespace id %d", ErrInvalidSnapshot, ns.ID)
		}
		s.namespaceByID[ns.ID] = ns
	}

	for _, c := range classes {
		if _, dup := s.classByID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate class id %d", ErrInvalidSnapshot, c.ID)
		}
		if ns, ok := s.namespaceByID[c.NamespaceID]; ok && c.NamespaceName == "" {
			c.NamespaceName = ns.Name
		}
		s.classByID[c.ID] = c
		s.classByName[classKey{c.NamespaceName, c.Name}] = c
	}

	for _, a := range attributes {
		if _, ok := s.classByID[a.ClassID]; !ok {
			return nil, fmt.Errorf("%w: attribute %q belongs to unknown class %d", ErrInvalidSnapshot, a.Name, a.ClassID)
		}
		s.attributesByClass[a.ClassID] = append(s.attributesByClass[a.ClassID], a)
	}
	for _, attrs := range s.attributesByClass {
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Num < attrs[j].Num })
	}

	for _, con := range constraints {
		if _, ok := s.classByID[con.ClassID]; !ok {
			return nil, fmt.Errorf("%w: constraint %q belongs to unknown class %d", ErrInvalidSnapshot, con.Name, con.ClassID)
		}
		s.constraintsByClass[con.ClassID] = append(s.constraintsByClass[con.ClassID], con)
	}

	return s, nil
}

// Namespaces returns every namespace in load order.
func (s *Snapshot) Namespaces() []*Namespace { return s.namespaces }

// Classes returns every class in load order, selectable or not.
func (s *Snapshot) Classes() []*Class { return s.classes }

// Namespace returns the namespace with the given id, or nil.
func (s *Snapshot) Namespace(id uint32) *Namespace {
	return s.namespaceByID[id]
}

// Class returns the class with the given id, or nil.
func (s *Snapshot) Class(id uint32) *Class {
	return s.classByID[id]
}

// FindClass returns the class named namespace.name, or nil. Names are
// matched exactly.
func (s *Snapshot) FindClass(namespace, name string) *Class {
	return s.classByName[classKey{namespace, name}]
}

// SelectableClasses returns every selectable class ordered by namespace and
// name.
func (s *Snapshot) SelectableClasses() []*Class {
	var out []*Class
	for _, c := range s.classes {
		if c.Kind.IsSelectable() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NamespaceName != out[j].NamespaceName {
			return out[i].NamespaceName < out[j].NamespaceName
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Attributes returns the attributes of a class ordered by Num.
func (s *Snapshot) Attributes(classID uint32) []*Attribute {
	return s.attributesByClass[classID]
}

// Attribute returns the named attribute of a class, or nil.
func (s *Snapshot) Attribute(classID uint32, name string) *Attribute {
	for _, a := range s.attributesByClass[classID] {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AttributeByNum returns the attribute with the given ordinal, or nil.
func (s *Snapshot) AttributeByNum(classID uint32, num int) *Attribute {
	for _, a := range s.attributesByClass[classID] {
		if a.Num == num {
			return a
		}
	}
	return nil
}

// Constraints returns the constraints declared on a class.
func (s *Snapshot) Constraints(classID uint32) []*Constraint {
	return s.constraintsByClass[classID]
}

// PrimaryKey returns the primary key constraint of a class, or nil.
func (s *Snapshot) PrimaryKey(classID uint32) *Constraint {
	for _, con := range s.constraintsByClass[classID] {
		if con.Type == ConstraintPrimaryKey {
			return con
		}
	}
	return nil
}

// KeyAttributes resolves the attributes of a constraint in constraint order.
// It returns nil if any ordinal is unknown.
func (s *Snapshot) KeyAttributes(con *Constraint) []*Attribute {
	attrs := make([]*Attribute, 0, len(con.KeyAttributeNums))
	for _, num := range con.KeyAttributeNums {
		a := s.AttributeByNum(con.ClassID, num)
		if a == nil {
			return nil
		}
		attrs = append(attrs, a)
	}
	return attrs
}
