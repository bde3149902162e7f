package reltag

import "errors"

// Sentinel errors for relation inference. All of them are schema build
// errors: they mean a tag or the catalog is wrong, and the build stops at the
// first one. Messages of returned errors name the offending tag value and the
// tables and columns involved.
//
// Use the Is*Err helper functions to check for specific errors.
var (
	// ErrMalformedIdentifier is returned when a qualified name is not
	// exactly two dot-separated identifiers.
	ErrMalformedIdentifier = errors.New("reltag: malformed identifier")

	// ErrMalformedReferenceTag is returned when a @references or @foreignKey
	// value does not match its grammar, or lists origin and target columns
	// of different lengths.
	ErrMalformedReferenceTag = errors.New("reltag: malformed reference tag")

	// ErrUnknownForeignTable is returned when the referenced table is not a
	// selectable class in the snapshot.
	ErrUnknownForeignTable = errors.New("reltag: unknown foreign table")

	// ErrUnknownOriginColumn is returned when a @foreignKey names a column
	// the tagged table does not have.
	ErrUnknownOriginColumn = errors.New("reltag: unknown origin column")

	// ErrUnknownTargetColumn is returned when a referenced column does not
	// exist on the foreign table.
	ErrUnknownTargetColumn = errors.New("reltag: unknown target column")

	// ErrAmbiguousImplicitKey is returned when target columns are omitted
	// and the foreign table's primary key cannot stand in for them.
	ErrAmbiguousImplicitKey = errors.New("reltag: ambiguous implicit key")

	// ErrTargetNotUnique is returned when no primary key or unique
	// constraint covers exactly the target columns.
	ErrTargetNotUnique = errors.New("reltag: target columns not unique")

	// ErrFieldNameCollision is returned when a relation field name is
	// already used on the type.
	ErrFieldNameCollision = errors.New("reltag: field name collision")

	// ErrMissingOutputType is returned when either side of a relation has no
	// output type in the schema being built.
	ErrMissingOutputType = errors.New("reltag: missing output type")
)

// IsMalformedIdentifierErr returns true if err is or wraps ErrMalformedIdentifier.
func IsMalformedIdentifierErr(err error) bool {
	return errors.Is(err, ErrMalformedIdentifier)
}

// IsMalformedReferenceTagErr returns true if err is or wraps ErrMalformedReferenceTag.
func IsMalformedReferenceTagErr(err error) bool {
	return errors.Is(err, ErrMalformedReferenceTag)
}

// IsUnknownForeignTableErr returns true if err is or wraps ErrUnknownForeignTable.
func IsUnknownForeignTableErr(err error) bool {
	return errors.Is(err, ErrUnknownForeignTable)
}

// IsUnknownOriginColumnErr returns true if err is or wraps ErrUnknownOriginColumn.
func IsUnknownOriginColumnErr(err error) bool {
	return errors.Is(err, ErrUnknownOriginColumn)
}

// IsUnknownTargetColumnErr returns true if err is or wraps ErrUnknownTargetColumn.
func IsUnknownTargetColumnErr(err error) bool {
	return errors.Is(err, ErrUnknownTargetColumn)
}

// IsAmbiguousImplicitKeyErr returns true if err is or wraps ErrAmbiguousImplicitKey.
func IsAmbiguousImplicitKeyErr(err error) bool {
	return errors.Is(err, ErrAmbiguousImplicitKey)
}

// IsTargetNotUniqueErr returns true if err is or wraps ErrTargetNotUnique.
func IsTargetNotUniqueErr(err error) bool {
	return errors.Is(err, ErrTargetNotUnique)
}

// IsFieldNameCollisionErr returns true if err is or wraps ErrFieldNameCollision.
func IsFieldNameCollisionErr(err error) bool {
	return errors.Is(err, ErrFieldNameCollision)
}

// IsMissingOutputTypeErr returns true if err is or wraps ErrMissingOutputType.
func IsMissingOutputTypeErr(err error) bool {
	return errors.Is(err, ErrMissingOutputType)
}
