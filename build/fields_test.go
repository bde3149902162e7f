package build

import (
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringField(name string) *Field {
	return &Field{Name: name, Config: &graphql.Field{Type: graphql.String}}
}

func TestFields_AddKeepsOrder(t *testing.T) {
	f := NewFields()
	require.NoError(t, f.Add(stringField("b")))
	require.NoError(t, f.Add(stringField("a")))

	assert.Equal(t, []string{"b", "a"}, f.Names())
	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Has("a"))
	assert.Nil(t, f.Get("c"))

	err := f.Add(stringField("a"))
	assert.True(t, IsDuplicateFieldErr(err))
	assert.Equal(t, 2, f.Len())
}

func TestFields_CloneIsIndependent(t *testing.T) {
	f := NewFields()
	require.NoError(t, f.Add(stringField("a")))

	c := f.Clone()
	require.NoError(t, c.Add(stringField("b")))

	assert.Equal(t, []string{"a"}, f.Names())
	assert.Equal(t, []string{"a", "b"}, c.Names())
	assert.Same(t, f.Get("a"), c.Get("a"))
}

func TestFields_GraphQLFieldsAreCopies(t *testing.T) {
	f := NewFields()
	field := stringField("a")
	require.NoError(t, f.Add(field))

	out := f.graphqlFields()
	require.Contains(t, out, "a")
	assert.NotSame(t, field.Config, out["a"])
	assert.Equal(t, graphql.String, out["a"].Type)
}

func TestSafeAlias(t *testing.T) {
	assert.Equal(t, "@title", SafeAlias("title"))

	long := strings.Repeat("x", 61)
	hashed := SafeAlias(long)
	assert.True(t, strings.HasPrefix(hashed, "@@"))
	assert.Len(t, hashed, 2+40)
	assert.Equal(t, hashed, SafeAlias(long), "stable")

	assert.Equal(t, "@"+strings.Repeat("x", 60), SafeAlias(strings.Repeat("x", 60)))
	assert.NotEqual(t, "@@x", SafeAlias("@x"), "prefixed aliases are hashed")
	assert.True(t, strings.HasPrefix(SafeAlias("@x"), "@@"))
}

func TestSafeAliasFromResolveInfo(t *testing.T) {
	tests := []struct {
		name string
		info graphql.ResolveInfo
		want string
	}{
		{"field name only", graphql.ResolveInfo{FieldName: "title"}, "@title"},
		{"ast name", graphql.ResolveInfo{FieldName: "x", FieldASTs: []*ast.Field{{Name: &ast.Name{Value: "title"}}}}, "@title"},
		{"alias", graphql.ResolveInfo{FieldName: "title", FieldASTs: []*ast.Field{{
			Alias: &ast.Name{Value: "heading"},
			Name:  &ast.Name{Value: "title"},
		}}}, "@heading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeAliasFromResolveInfo(tt.info))
		})
	}
}
