package reltag_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pthm/reltag"
	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/inflection"
	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
)

// Class ids in testdata/blog.yaml.
const (
	authorsID        = 1001
	postsID          = 1002
	postAuthorshipID = 1003
	commentsID       = 1004
	recentPostsID    = 1005
	authorsPkeyID    = 1006
)

// loadBlog returns a fresh copy of the blog fixture, so tests may edit tags.
func loadBlog(t testing.TB) *introspection.Snapshot {
	t.Helper()
	snap, err := introspection.LoadFile(filepath.Join("testdata", "blog.yaml"))
	require.NoError(t, err)
	return snap
}

func setTags(t testing.TB, snap *introspection.Snapshot, classID uint32, column string, tags introspection.Tags) {
	t.Helper()
	if column == "" {
		class := snap.Class(classID)
		require.NotNil(t, class)
		class.Tags = tags
		return
	}
	attr := snap.Attribute(classID, column)
	require.NotNil(t, attr, "column %s", column)
	attr.Tags = tags
}

func newBuilder(snap *introspection.Snapshot, exec build.Executor) *build.SchemaBuilder {
	sb := build.NewSchemaBuilder(build.Options{
		Snapshot: snap,
		Executor: exec,
		Aliases:  &pgsql.SequenceAllocator{},
	})
	sb.AddHook(reltag.Plugin)
	return sb
}

func buildSchema(t testing.TB, snap *introspection.Snapshot, exec build.Executor) *build.Schema {
	t.Helper()
	schema, err := newBuilder(snap, exec).Build(context.Background())
	require.NoError(t, err)
	return schema
}

// fakeBuild is a build.Build over a snapshot with one placeholder object per
// selectable class.
type fakeBuild struct {
	snap    *introspection.Snapshot
	types   map[uint32]*graphql.Object
	aliases pgsql.AliasAllocator
}

func newFakeBuild(snap *introspection.Snapshot) *fakeBuild {
	b := &fakeBuild{
		snap:    snap,
		types:   make(map[uint32]*graphql.Object),
		aliases: &pgsql.SequenceAllocator{},
	}
	for _, class := range snap.SelectableClasses() {
		b.types[class.TypeID] = graphql.NewObject(graphql.ObjectConfig{
			Name:   inflection.Default{}.TableType(class),
			Fields: graphql.Fields{"id": &graphql.Field{Type: graphql.Int}},
		})
	}
	return b
}

func (b *fakeBuild) Snapshot() *introspection.Snapshot { return b.snap }

func (b *fakeBuild) TypeByTypeID(typeID uint32, _ build.Modifier) graphql.Output {
	if obj, ok := b.types[typeID]; ok {
		return obj
	}
	return nil
}

func (b *fakeBuild) Inflector() inflection.Inflector { return inflection.Default{} }

func (b *fakeBuild) Aliases() pgsql.AliasAllocator { return b.aliases }

func (b *fakeBuild) SafeAlias(alias string) string { return build.SafeAlias(alias) }

func (b *fakeBuild) SafeAliasFromResolveInfo(info graphql.ResolveInfo) string {
	return build.SafeAliasFromResolveInfo(info)
}

func (b *fakeBuild) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func rowScope(class *introspection.Class) build.Scope {
	return build.Scope{IsRowType: true, Table: class, TypeName: inflection.Default{}.TableType(class)}
}

// fakeExecutor records every query and answers with a canned JSON row.
type fakeExecutor struct {
	mu      sync.Mutex
	row     string
	err     error
	queries []recordedQuery
}

type recordedQuery struct {
	sql  string
	args []any
}

func (e *fakeExecutor) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, recordedQuery{sql: sql, args: args})
	return fakeRow{data: e.row, err: e.err}
}

func (e *fakeExecutor) lastQuery(t testing.TB) recordedQuery {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	require.NotEmpty(t, e.queries, "no query was executed")
	return e.queries[len(e.queries)-1]
}

type fakeRow struct {
	data string
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = []byte(r.data)
	return nil
}
