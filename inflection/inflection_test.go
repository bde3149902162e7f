package inflection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/reltag/introspection"
)

func attrs(names ...string) []*introspection.Attribute {
	out := make([]*introspection.Attribute, len(names))
	for i, n := range names {
		out[i] = &introspection.Attribute{Name: n, Num: i + 1}
	}
	return out
}

func TestDefault_TableType(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"posts", "Post"},
		{"authors", "Author"},
		{"post_authorship", "PostAuthorship"},
		{"categories", "Category"},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.want, Default{}.TableType(&introspection.Class{Name: tt.table}))
		})
	}
}

func TestDefault_Column(t *testing.T) {
	assert.Equal(t, "authorId", Default{}.Column(&introspection.Attribute{Name: "author_id"}))
	assert.Equal(t, "title", Default{}.Column(&introspection.Attribute{Name: "title"}))
}

func TestDefault_SingleRelationByKeys(t *testing.T) {
	authors := &introspection.Class{Name: "authors"}
	posts := &introspection.Class{Name: "posts"}
	authorship := &introspection.Class{Name: "post_authorship"}

	tests := []struct {
		name    string
		keys    []*introspection.Attribute
		foreign *introspection.Class
		tags    introspection.Tags
		want    string
	}{
		{"single key", attrs("author_id"), authors, nil, "authorByAuthorId"},
		{"other column same table", attrs("editor_id"), authors, nil, "authorByEditorId"},
		{"composite key", attrs("post_id", "author_id"), authorship, nil, "postAuthorshipByPostIdAndAuthorId"},
		{"field name override", attrs("author_id"), authors, introspection.Tags{TagFieldName: introspection.Single("writer")}, "writer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default{}.SingleRelationByKeys(tt.keys, tt.foreign, posts, tt.tags)
			assert.Equal(t, tt.want, got)
			// Pure: same inputs, same name.
			assert.Equal(t, got, Default{}.SingleRelationByKeys(tt.keys, tt.foreign, posts, tt.tags))
		})
	}
}

func TestDefault_SingleRowByUniqueKey(t *testing.T) {
	assert.Equal(t, "postById", Default{}.SingleRowByUniqueKey(attrs("id"), &introspection.Class{Name: "posts"}))
}
