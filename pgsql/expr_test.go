package pgsql

import (
	"strings"
	"sync"
	"testing"
)

func TestExpr_SQL(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"identifier", Ident("p", "posts"), `"p"."posts"`},
		{"identifier with quote", Ident(`we"ird`), `"we""ird"`},
		{"column", Col{Table: Ident("t"), Column: "author_id"}, `"t"."author_id"`},
		{"bare column", Col{Column: "id"}, `"id"`},
		{"literal", Lit("it's"), `'it''s'`},
		{"literal with backslash", Lit(`a\b`), `E'a\\b'`},
		{"int", Int(42), "42"},
		{"placeholder", Placeholder(2), "$2"},
		{"cast", Cast{Expr: Placeholder(1), Type: "int8"}, `$1::"int8"`},
		{"qualified cast", Cast{Expr: Raw("x"), Type: "pg_catalog.text"}, "x::pg_catalog.text"},
		{"func", Func{Name: "coalesce", Args: []Expr{Raw("a"), Lit("")}}, "coalesce(a, '')"},
		{"alias", Alias{Expr: Int(1), Name: Ident("@one")}, `1 AS "@one"`},
		{"paren", Paren{Expr: Raw("SELECT 1")}, "(SELECT 1)"},
		{"eq", Eq{Left: Col{Table: Ident("a"), Column: "x"}, Right: Col{Table: Ident("b"), Column: "y"}}, `"a"."x" = "b"."y"`},
		{"and none", And(), "TRUE"},
		{"and one", And(Raw("a")), "a"},
		{"and many", And(Raw("a"), nil, Raw("b")), "(a AND b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectStmt_SQL(t *testing.T) {
	tests := []struct {
		name string
		stmt SelectStmt
		want string
	}{
		{
			name: "no columns",
			stmt: SelectStmt{},
			want: "SELECT 1",
		},
		{
			name: "full",
			stmt: SelectStmt{
				Columns: []Expr{Col{Table: Ident("t"), Column: "id"}},
				From:    TableRef{Table: Ident("p", "posts"), Alias: Ident("t")},
				Where:   Eq{Left: Col{Table: Ident("t"), Column: "id"}, Right: Placeholder(1)},
				Limit:   1,
			},
			want: `SELECT "t"."id" FROM "p"."posts" AS "t" WHERE "t"."id" = $1 LIMIT 1`,
		},
		{
			name: "unaliased table",
			stmt: SelectStmt{Columns: []Expr{Raw("*")}, From: TableRef{Table: Ident("p", "posts")}},
			want: `SELECT * FROM "p"."posts"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONBuildObject_SQL(t *testing.T) {
	obj := JSONBuildObject{Pairs: []JSONPair{
		{Key: "@id", Value: Col{Table: Ident("t"), Column: "id"}},
		{Key: "@name", Value: Col{Table: Ident("t"), Column: "name"}},
	}}
	want := `json_build_object('@id', "t"."id", '@name', "t"."name")`
	if got := obj.SQL(); got != want {
		t.Errorf("SQL() = %q, want %q", got, want)
	}

	if got := (JSONBuildObject{}).SQL(); got != "json_build_object()" {
		t.Errorf("empty object SQL() = %q", got)
	}
}

func TestJSONBuildObject_ChunksWideObjects(t *testing.T) {
	var pairs []JSONPair
	for i := 0; i < 120; i++ {
		pairs = append(pairs, JSONPair{Key: "k", Value: Int(i)})
	}
	got := JSONBuildObject{Pairs: pairs}.SQL()

	if !strings.HasPrefix(got, "(jsonb_build_object(") || !strings.HasSuffix(got, ")::json") {
		t.Fatalf("expected chunked jsonb object, got %q", got)
	}
	if n := strings.Count(got, "jsonb_build_object("); n != 3 {
		t.Errorf("expected 3 chunks, got %d", n)
	}
	if strings.Count(got, " || ") != 2 {
		t.Errorf("expected chunks joined with ||, got %q", got)
	}
}

func TestSequenceAllocator(t *testing.T) {
	a := &SequenceAllocator{}
	if got := a.Next().SQL(); got != `"__local_1__"` {
		t.Errorf("first alias = %s", got)
	}
	if got := a.Next().SQL(); got != `"__local_2__"` {
		t.Errorf("second alias = %s", got)
	}
}

func TestAllocators_ConcurrentUniqueness(t *testing.T) {
	for _, kind := range []string{AllocatorSequence, AllocatorUUID} {
		t.Run(kind, func(t *testing.T) {
			alloc, err := NewAllocator(kind)
			if err != nil {
				t.Fatal(err)
			}

			const workers, perWorker = 8, 200
			var (
				mu   sync.Mutex
				seen = make(map[string]bool)
				wg   sync.WaitGroup
			)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						name := alloc.Next().SQL()
						mu.Lock()
						seen[name] = true
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if len(seen) != workers*perWorker {
				t.Errorf("expected %d unique aliases, got %d", workers*perWorker, len(seen))
			}
		})
	}
}

func TestNewAllocator_Unknown(t *testing.T) {
	if _, err := NewAllocator("symbol"); err == nil {
		t.Error("expected error for unknown allocator kind")
	}
}
