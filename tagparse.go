package reltag

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pthm/reltag/introspection"
)

// Tag names read by relation inference.
const (
	// TagReferences on a column: "ns.table" or "ns.table(column)".
	TagReferences = "references"
	// TagForeignKey on a table: "(a, b) references ns.table(x, y)".
	TagForeignKey = "foreignKey"
)

// A target is a run of quoted identifiers or characters other than
// parentheses, quotes and whitespace; ParseQualifiedName validates it.
const targetPattern = `((?:"(?:[^"]|"")*"|[^()"\s])+)`

var (
	columnReferencePattern = regexp.MustCompile(`(?s)^\s*` + targetPattern + `\s*(?:\(([^()]*)\))?\s*$`)
	foreignKeyPattern      = regexp.MustCompile(`(?is)^\s*\(([^()]*)\)\s*references\s+` + targetPattern + `\s*(?:\(([^()]*)\))?\s*$`)
)

// ReferenceSource says which kind of tag a reference came from.
type ReferenceSource int

const (
	SourceColumn ReferenceSource = iota
	SourceTable
)

func (s ReferenceSource) String() string {
	if s == SourceTable {
		return "@" + TagForeignKey
	}
	return "@" + TagReferences
}

// ReferenceDraft is a parsed reference tag that has not been checked against
// the catalog yet.
type ReferenceDraft struct {
	// Raw is the tag value as written.
	Raw           string
	Source        ReferenceSource
	OriginColumns []string
	Target        QualifiedName
	// TargetColumns is nil when the tag leaves them out, meaning the
	// target's primary key.
	TargetColumns []string
}

// ParseColumnReference parses the @references value of column:
//
//	p.authors       -> author by primary key
//	p.authors(id)   -> author by id
func ParseColumnReference(column, raw string) (ReferenceDraft, error) {
	m := columnReferencePattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return ReferenceDraft{}, malformed(SourceColumn, raw, column, "expected namespace.table or namespace.table(column)", nil)
	}

	target, err := ParseQualifiedName(raw[m[2]:m[3]])
	if err != nil {
		return ReferenceDraft{}, malformed(SourceColumn, raw, column, "invalid target table", err)
	}

	draft := ReferenceDraft{
		Raw:           raw,
		Source:        SourceColumn,
		OriginColumns: []string{column},
		Target:        target,
	}
	if m[4] >= 0 {
		cols, err := parseIdentList(raw[m[4]:m[5]])
		if err != nil {
			return ReferenceDraft{}, malformed(SourceColumn, raw, column, "invalid target column", err)
		}
		if len(cols) != 1 {
			return ReferenceDraft{}, malformed(SourceColumn, raw, column,
				fmt.Sprintf("expected a single target column, got %d", len(cols)), nil)
		}
		draft.TargetColumns = cols
	}
	return draft, nil
}

// ParseForeignKey parses a @foreignKey value. The keyword is case
// insensitive. The target column list may be left out only for a single
// origin column.
//
//	(post_id, author_id) references p.post_authorship(post_id, author_id)
//	(author_id) references p.authors
func ParseForeignKey(raw string) (ReferenceDraft, error) {
	m := foreignKeyPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return ReferenceDraft{}, malformed(SourceTable, raw, "", "expected (columns) references namespace.table(columns)", nil)
	}

	origin, err := parseIdentList(raw[m[2]:m[3]])
	if err != nil {
		return ReferenceDraft{}, malformed(SourceTable, raw, "", "invalid origin columns", err)
	}

	target, err := ParseQualifiedName(raw[m[4]:m[5]])
	if err != nil {
		return ReferenceDraft{}, malformed(SourceTable, raw, "", "invalid target table", err)
	}

	draft := ReferenceDraft{
		Raw:           raw,
		Source:        SourceTable,
		OriginColumns: origin,
		Target:        target,
	}

	if m[6] < 0 {
		if len(origin) != 1 {
			return ReferenceDraft{}, malformed(SourceTable, raw, "",
				fmt.Sprintf("target columns are required for %d origin columns", len(origin)), nil)
		}
		return draft, nil
	}

	targetCols, err := parseIdentList(raw[m[6]:m[7]])
	if err != nil {
		return ReferenceDraft{}, malformed(SourceTable, raw, "", "invalid target columns", err)
	}
	if len(targetCols) != len(origin) {
		return ReferenceDraft{}, malformed(SourceTable, raw, "",
			fmt.Sprintf("%d origin columns but %d target columns", len(origin), len(targetCols)), nil)
	}
	draft.TargetColumns = targetCols
	return draft, nil
}

// ColumnReferences parses every value of a column's @references tag.
func ColumnReferences(column string, tag introspection.Tag) ([]ReferenceDraft, error) {
	return parseAll(tag, func(raw string) (ReferenceDraft, error) {
		return ParseColumnReference(column, raw)
	})
}

// ForeignKeys parses every value of a table's @foreignKey tag.
func ForeignKeys(tag introspection.Tag) ([]ReferenceDraft, error) {
	return parseAll(tag, ParseForeignKey)
}

func parseAll(tag introspection.Tag, parse func(string) (ReferenceDraft, error)) ([]ReferenceDraft, error) {
	var drafts []ReferenceDraft
	for _, raw := range tag.Values() {
		d, err := parse(raw)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func malformed(source ReferenceSource, raw, column, reason string, cause error) error {
	var where strings.Builder
	fmt.Fprintf(&where, "%s %q", source, raw)
	if column != "" {
		fmt.Fprintf(&where, " on column %q", column)
	}

	if cause != nil {
		return fmt.Errorf("%w: %s: %s: %w", ErrMalformedReferenceTag, where.String(), reason, cause)
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformedReferenceTag, where.String(), reason)
}
