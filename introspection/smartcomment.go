package introspection

import (
	"regexp"
	"strings"
)

var smartTagLine = regexp.MustCompile(`^@([A-Za-z][A-Za-z0-9_]*)(?:\s+(.*))?$`)

// ParseSmartComment splits a catalog comment into tags and a description.
//
// Leading lines of the form "@name value" become tags; a bare "@name" is a
// flag with an empty value. Repeating a name turns the tag into a list. The
// first line that is not a tag ends the tag block and everything from there
// on is the description.
//
//	@references p.authors
//	@references p.editors(id)
//	Who wrote the post.
func ParseSmartComment(comment string) (Tags, string) {
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	tags := Tags{}

	i := 0
	for ; i < len(lines); i++ {
		m := smartTagLine.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			break
		}
		name, value := m[1], strings.TrimSpace(m[2])
		tags[name] = tags[name].Append(value)
	}

	description := strings.TrimSpace(strings.Join(lines[i:], "\n"))
	if len(tags) == 0 {
		tags = nil
	}
	return tags, description
}
