package introspection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// TagKind distinguishes the shapes a tag value can take.
type TagKind int

const (
	TagAbsent TagKind = iota
	TagSingle
	TagMultiple
)

// Tag is an annotation value: absent, a single string, or a list of strings.
// The zero value is absent.
type Tag struct {
	kind   TagKind
	values []string
}

// Single returns a tag holding one value.
func Single(value string) Tag {
	return Tag{kind: TagSingle, values: []string{value}}
}

// Multiple returns a tag holding a list of values.
func Multiple(values ...string) Tag {
	return Tag{kind: TagMultiple, values: append([]string(nil), values...)}
}

// Kind returns the tag shape.
func (t Tag) Kind() TagKind { return t.kind }

// IsAbsent reports whether the tag was not set.
func (t Tag) IsAbsent() bool { return t.kind == TagAbsent }

// Values returns every value of the tag in declaration order. A single tag
// yields one value and an absent tag yields none.
func (t Tag) Values() []string {
	if t.kind == TagAbsent {
		return nil
	}
	return append([]string(nil), t.values...)
}

// Append returns the tag with value added. A single tag becomes a list.
func (t Tag) Append(value string) Tag {
	switch t.kind {
	case TagAbsent:
		return Single(value)
	default:
		return Multiple(append(t.Values(), value)...)
	}
}

// MarshalJSON encodes a single tag as a string and a list tag as an array.
func (t Tag) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TagSingle:
		return json.Marshal(t.values[0])
	case TagMultiple:
		return json.Marshal(t.values)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, a list of strings, true (a bare flag), or
// null/false (absent).
func (t *Tag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*t = Tag{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*t = Single("")
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Single(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("tag list must contain only strings: %w", err)
		}
		*t = Multiple(list...)
		return nil
	default:
		return fmt.Errorf("unsupported tag value %s", data)
	}
}

// Tags maps tag names to values.
type Tags map[string]Tag

// Get returns the named tag, or an absent tag.
func (t Tags) Get(name string) Tag {
	if t == nil {
		return Tag{}
	}
	return t[name]
}

// Names returns the tag names in sorted order.
func (t Tags) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
