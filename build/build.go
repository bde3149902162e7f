// Package build turns an introspection snapshot into a GraphQL schema.
//
// Every selectable class becomes an object type with one field per column.
// Hooks registered with SchemaBuilder.AddHook then run once per object type
// and may add fields; this is how forward relations are attached. Fields
// resolve without I/O: a root query compiles the whole selection into one
// SQL statement, each field contributing its own column through the query
// builder, and resolvers read their value back by safe alias.
//
// Example usage:
//
//	sb := build.NewSchemaBuilder(build.Options{Snapshot: snap, Executor: pool})
//	sb.AddHook(reltag.Plugin)
//	schema, err := sb.Build(ctx)
//	if err != nil {
//		return err
//	}
//	result := schema.Do(ctx, `{ postById(id: 1) { title authorByAuthorId { name } } }`, nil)
package build

import (
	"errors"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/pthm/reltag/inflection"
	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
)

// Sentinel errors for schema construction and execution.
var (
	// ErrDuplicateField is returned when a field name is added twice to the
	// same type.
	ErrDuplicateField = errors.New("reltag/build: duplicate field")

	// ErrDuplicateType is returned when two classes inflect to the same
	// type name.
	ErrDuplicateType = errors.New("reltag/build: duplicate type name")

	// ErrNoExecutor is returned by root queries when the schema was built
	// without an Executor.
	ErrNoExecutor = errors.New("reltag/build: no executor configured")
)

// IsDuplicateFieldErr returns true if err is or wraps ErrDuplicateField.
func IsDuplicateFieldErr(err error) bool {
	return errors.Is(err, ErrDuplicateField)
}

// IsDuplicateTypeErr returns true if err is or wraps ErrDuplicateType.
func IsDuplicateTypeErr(err error) bool {
	return errors.Is(err, ErrDuplicateType)
}

// IsNoExecutorErr returns true if err is or wraps ErrNoExecutor.
func IsNoExecutorErr(err error) bool {
	return errors.Is(err, ErrNoExecutor)
}

// Modifier wraps an output type returned by TypeByTypeID.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierNonNull
	ModifierList
)

// Build is what hooks can use while the schema is being constructed.
// Implementations are safe for concurrent use by hooks running in parallel.
type Build interface {
	// Snapshot returns the catalog the schema is built from.
	Snapshot() *introspection.Snapshot
	// TypeByTypeID returns the output type of the class whose row type is
	// typeID, or nil if there is none.
	TypeByTypeID(typeID uint32, mod Modifier) graphql.Output
	Inflector() inflection.Inflector
	// Aliases allocates table aliases for generated SQL.
	Aliases() pgsql.AliasAllocator
	// SafeAlias maps a requested field alias to its result column key.
	SafeAlias(alias string) string
	// SafeAliasFromResolveInfo is SafeAlias applied to the alias (or field
	// name) of the field being resolved.
	SafeAliasFromResolveInfo(info graphql.ResolveInfo) string
	Logger() *slog.Logger
}

// Scope describes the type a hook is being run for.
type Scope struct {
	// IsRowType is set for types that represent one row of Table.
	IsRowType bool
	// IsMutationPayload is set for payload types that wrap a row under "data".
	IsMutationPayload bool
	Table             *introspection.Class
	Self              *graphql.Object
	TypeName          string
}

// Hook receives the fields built so far for a type and returns the fields the
// type should have. Hooks must not modify fields in place.
type Hook func(fields *Fields, b Build, scope Scope) (*Fields, error)
