package reltag

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern matches one SQL identifier: unquoted, or double-quoted with
// "" standing for a literal quote.
const identPattern = `(?:"(?:[^"]|"")+"|[A-Za-z_][A-Za-z0-9_$]*)`

var (
	qualifiedName = regexp.MustCompile(`^\s*(` + identPattern + `)\s*\.\s*(` + identPattern + `)\s*$`)
	identListItem = regexp.MustCompile(`^\s*(` + identPattern + `)\s*(,|$)`)
)

// QualifiedName is a namespace-qualified table name with quoting removed.
type QualifiedName struct {
	Namespace string
	Entity    string
}

// String returns the name as namespace.entity, without quoting.
func (q QualifiedName) String() string {
	return q.Namespace + "." + q.Entity
}

// ParseQualifiedName parses "namespace.entity". Either part may be quoted,
// in which case it is matched exactly as written:
//
//	p.posts          -> {p, posts}
//	"My Schema"."x"  -> {My Schema, x}
func ParseQualifiedName(raw string) (QualifiedName, error) {
	m := qualifiedName.FindStringSubmatch(raw)
	if m == nil {
		return QualifiedName{}, fmt.Errorf("%w: %q is not of the form namespace.table", ErrMalformedIdentifier, raw)
	}
	return QualifiedName{Namespace: unquoteIdent(m[1]), Entity: unquoteIdent(m[2])}, nil
}

// parseIdentList parses a comma-separated list of identifiers. An empty
// list is malformed.
func parseIdentList(raw string) ([]string, error) {
	var names []string
	rest := raw
	for {
		m := identListItem.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("%w: column list %q", ErrMalformedIdentifier, raw)
		}
		names = append(names, unquoteIdent(m[1]))
		rest = rest[len(m[0]):]
		if m[2] == "" {
			return names, nil
		}
	}
}

func unquoteIdent(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
