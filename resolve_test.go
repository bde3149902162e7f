package reltag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/reltag"
	"github.com/pthm/reltag/introspection"
)

func columnDraft(t *testing.T, column, raw string) reltag.ReferenceDraft {
	t.Helper()
	d, err := reltag.ParseColumnReference(column, raw)
	require.NoError(t, err)
	return d
}

func foreignKeyDraft(t *testing.T, raw string) reltag.ReferenceDraft {
	t.Helper()
	d, err := reltag.ParseForeignKey(raw)
	require.NoError(t, err)
	return d
}

func TestResolveReferences_ImplicitPrimaryKey(t *testing.T) {
	snap := loadBlog(t)
	posts := snap.Class(postsID)

	refs, err := reltag.ResolveReferences(snap, posts, []reltag.ReferenceDraft{
		columnDraft(t, "author_id", "p.authors"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, refs.Len())

	ref := refs.All()[0]
	assert.Equal(t, "author_id->p.authors", ref.Key)
	assert.Equal(t, "author_id->p.authors(id)", ref.String())
	assert.Same(t, posts, ref.Origin)
	assert.Same(t, snap.Class(authorsID), ref.Target)
	assert.Equal(t, []*introspection.Attribute{snap.Attribute(postsID, "author_id")}, ref.OriginColumns)
	assert.Equal(t, []*introspection.Attribute{snap.Attribute(authorsID, "id")}, ref.TargetColumns)
	assert.Equal(t, []string{"p.authors"}, ref.Tags)
	assert.Same(t, ref, refs.Get(ref.Key))
}

func TestResolveReferences_UniqueTarget(t *testing.T) {
	snap := loadBlog(t)

	refs, err := reltag.ResolveReferences(snap, snap.Class(postsID), []reltag.ReferenceDraft{
		columnDraft(t, "editor_id", "p.authors(email)"),
	})
	require.NoError(t, err)
	assert.Equal(t, "editor_id->p.authors(email)", refs.All()[0].String())
}

func TestResolveReferences_Deduplicates(t *testing.T) {
	snap := loadBlog(t)

	refs, err := reltag.ResolveReferences(snap, snap.Class(postsID), []reltag.ReferenceDraft{
		columnDraft(t, "author_id", "p.authors"),
		columnDraft(t, "author_id", "p.authors(id)"),
		foreignKeyDraft(t, "(author_id) references p.authors(id)"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, refs.Len(), "same origin, target and key collapse")
	assert.Equal(t, []string{"p.authors", "p.authors(id)", "(author_id) references p.authors(id)"}, refs.All()[0].Tags)
}

func TestResolveReferences_SameOriginAndTargetMerge(t *testing.T) {
	snap := loadBlog(t)

	refs, err := reltag.ResolveReferences(snap, snap.Class(postsID), []reltag.ReferenceDraft{
		columnDraft(t, "author_id", "p.authors"),
		columnDraft(t, "editor_id", "p.authors"),
		columnDraft(t, "author_id", "p.authors(email)"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, refs.Len())

	author := refs.All()[0]
	assert.Equal(t, "author_id->p.authors(id)", author.String(), "first target columns win")
	assert.Equal(t, []string{"p.authors", "p.authors(email)"}, author.Tags)
	assert.Equal(t, "editor_id->p.authors(id)", refs.All()[1].String())
}

func TestResolveReferences_OriginColumnOrderDoesNotSplit(t *testing.T) {
	snap := loadBlog(t)

	refs, err := reltag.ResolveReferences(snap, snap.Class(commentsID), []reltag.ReferenceDraft{
		foreignKeyDraft(t, "(post_id, author_id) references p.post_authorship(post_id, author_id)"),
		foreignKeyDraft(t, "(author_id, post_id) references p.post_authorship(author_id, post_id)"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, refs.Len())

	ref := refs.All()[0]
	assert.Equal(t, "author_id,post_id->p.post_authorship", ref.Key)
	assert.Equal(t, "post_id,author_id->p.post_authorship(post_id,author_id)", ref.String())
	assert.Len(t, ref.Tags, 2)
}

func TestResolveReferences_CompositeKeyIgnoresColumnOrder(t *testing.T) {
	snap := loadBlog(t)
	comments := snap.Class(commentsID)

	for _, raw := range []string{
		"(post_id, author_id) references p.post_authorship(post_id, author_id)",
		"(author_id, post_id) references p.post_authorship(author_id, post_id)",
	} {
		t.Run(raw, func(t *testing.T) {
			refs, err := reltag.ResolveReferences(snap, comments, []reltag.ReferenceDraft{foreignKeyDraft(t, raw)})
			require.NoError(t, err)
			require.Equal(t, 1, refs.Len())
			ref := refs.All()[0]
			assert.Len(t, ref.OriginColumns, 2)
			assert.Len(t, ref.TargetColumns, 2)
			assert.Equal(t, reltag.SourceTable, ref.Source)
		})
	}
}

func TestResolveReferences_Errors(t *testing.T) {
	tests := []struct {
		name     string
		table    uint32
		draft    reltag.ReferenceDraft
		is       func(error) bool
		contains []string
	}{
		{
			name:     "unknown table",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "p.nope", OriginColumns: []string{"author_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "nope"}},
			is:       reltag.IsUnknownForeignTableErr,
			contains: []string{"p.nope"},
		},
		{
			name:     "unknown namespace",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "q.authors", OriginColumns: []string{"author_id"}, Target: reltag.QualifiedName{Namespace: "q", Entity: "authors"}},
			is:       reltag.IsUnknownForeignTableErr,
			contains: []string{"q.authors"},
		},
		{
			name:     "index is not a table",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "p.authors_pkey", OriginColumns: []string{"author_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "authors_pkey"}},
			is:       reltag.IsUnknownForeignTableErr,
			contains: []string{"p.authors_pkey"},
		},
		{
			name:     "unknown origin column",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "(writer_id) references p.authors", OriginColumns: []string{"writer_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "authors"}},
			is:       reltag.IsUnknownOriginColumnErr,
			contains: []string{"p.posts", `"writer_id"`},
		},
		{
			name:     "unknown target column",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "p.authors(uid)", OriginColumns: []string{"author_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "authors"}, TargetColumns: []string{"uid"}},
			is:       reltag.IsUnknownTargetColumnErr,
			contains: []string{"p.authors", `"uid"`},
		},
		{
			name:     "implicit key without primary key",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "p.recent_posts", OriginColumns: []string{"id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "recent_posts"}},
			is:       reltag.IsAmbiguousImplicitKeyErr,
			contains: []string{"p.recent_posts"},
		},
		{
			name:     "implicit key narrower than origin",
			table:    commentsID,
			draft:    reltag.ReferenceDraft{Raw: "composite", Source: reltag.SourceTable, OriginColumns: []string{"post_id", "author_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "post_authorship"}},
			is:       reltag.IsAmbiguousImplicitKeyErr,
			contains: []string{"p.post_authorship", "1 columns", "has 2"},
		},
		{
			name:     "target not unique",
			table:    postsID,
			draft:    reltag.ReferenceDraft{Raw: "p.authors(name)", OriginColumns: []string{"author_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "authors"}, TargetColumns: []string{"name"}},
			is:       reltag.IsTargetNotUniqueErr,
			contains: []string{"p.authors(name)"},
		},
		{
			name:     "subset of a composite unique constraint",
			table:    commentsID,
			draft:    reltag.ReferenceDraft{Raw: "p.post_authorship(post_id)", OriginColumns: []string{"post_id"}, Target: reltag.QualifiedName{Namespace: "p", Entity: "post_authorship"}, TargetColumns: []string{"post_id"}},
			is:       reltag.IsTargetNotUniqueErr,
			contains: []string{"p.post_authorship(post_id)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := loadBlog(t)
			_, err := reltag.ResolveReferences(snap, snap.Class(tt.table), []reltag.ReferenceDraft{tt.draft})
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error: %v", err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestResolveReferences_FirstFailureAborts(t *testing.T) {
	snap := loadBlog(t)

	refs, err := reltag.ResolveReferences(snap, snap.Class(postsID), []reltag.ReferenceDraft{
		columnDraft(t, "author_id", "p.authors"),
		columnDraft(t, "editor_id", "p.nope"),
	})
	require.Error(t, err)
	assert.Nil(t, refs)
}
