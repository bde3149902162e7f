// Package pgintrospect loads an introspection.Snapshot from the PostgreSQL
// system catalogs. Comments on namespaces, tables and columns are parsed as
// smart comments, so "@references" and "@foreignKey" lines become tags.
package pgintrospect

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pthm/reltag/introspection"
)

// Querier is the subset of *pgxpool.Pool and *pgx.Conn used by Load.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (*pgx.Conn)(nil)
)

const namespacesQuery = `
SELECT n.oid, n.nspname, coalesce(obj_description(n.oid, 'pg_namespace'), '')
FROM pg_catalog.pg_namespace n
WHERE n.nspname = ANY($1)
ORDER BY n.nspname`

const classesQuery = `
SELECT c.oid, c.relname, coalesce(obj_description(c.oid, 'pg_class'), ''),
       c.relnamespace, c.relkind::text, c.reltype
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
  AND c.relkind IN ('r', 'p', 'v', 'm', 'f', 'c', 'i')
ORDER BY n.nspname, c.relname`

const attributesQuery = `
SELECT a.attrelid, a.attnum, a.attname, coalesce(col_description(a.attrelid, a.attnum), ''),
       a.atttypid, t.typname, a.attnotnull
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
WHERE n.nspname = ANY($1)
  AND c.relkind IN ('r', 'p', 'v', 'm', 'f')
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attrelid, a.attnum`

const constraintsQuery = `
SELECT con.oid, con.conname, con.conrelid, con.contype::text, con.conkey
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class c ON c.oid = con.conrelid
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
  AND c.relkind IN ('r', 'p', 'v', 'm', 'f')
  AND con.contype IN ('p', 'u', 'f')
ORDER BY con.conrelid, con.conname`

// Load reads the namespaces named in namespaces together with their classes,
// columns and key constraints. Indexes and composite types are loaded
// without columns so that tags placed on them can be reported; only
// selectable classes carry columns and constraints. Namespaces that do not
// exist are skipped.
func Load(ctx context.Context, q Querier, namespaces []string) (*introspection.Snapshot, error) {
	nss, err := loadNamespaces(ctx, q, namespaces)
	if err != nil {
		return nil, fmt.Errorf("introspecting namespaces: %w", err)
	}
	classes, err := loadClasses(ctx, q, namespaces)
	if err != nil {
		return nil, fmt.Errorf("introspecting classes: %w", err)
	}
	attrs, err := loadAttributes(ctx, q, namespaces)
	if err != nil {
		return nil, fmt.Errorf("introspecting columns: %w", err)
	}
	cons, err := loadConstraints(ctx, q, namespaces)
	if err != nil {
		return nil, fmt.Errorf("introspecting constraints: %w", err)
	}
	return introspection.NewSnapshot(nss, classes, attrs, cons)
}

func loadNamespaces(ctx context.Context, q Querier, namespaces []string) ([]*introspection.Namespace, error) {
	rows, err := q.Query(ctx, namespacesQuery, namespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*introspection.Namespace
	for rows.Next() {
		ns := &introspection.Namespace{}
		var comment string
		if err := rows.Scan(&ns.ID, &ns.Name, &comment); err != nil {
			return nil, err
		}
		// Namespaces carry no tags.
		_, ns.Description = introspection.ParseSmartComment(comment)
		out = append(out, ns)
	}
	return out, rows.Err()
}

func loadClasses(ctx context.Context, q Querier, namespaces []string) ([]*introspection.Class, error) {
	rows, err := q.Query(ctx, classesQuery, namespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*introspection.Class
	for rows.Next() {
		c := &introspection.Class{}
		var comment, kind string
		if err := rows.Scan(&c.ID, &c.Name, &comment, &c.NamespaceID, &kind, &c.TypeID); err != nil {
			return nil, err
		}
		c.Kind = introspection.ClassKind(kind)
		c.Tags, c.Description = introspection.ParseSmartComment(comment)
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadAttributes(ctx context.Context, q Querier, namespaces []string) ([]*introspection.Attribute, error) {
	rows, err := q.Query(ctx, attributesQuery, namespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*introspection.Attribute
	for rows.Next() {
		a := &introspection.Attribute{}
		var num int16
		var comment string
		if err := rows.Scan(&a.ClassID, &num, &a.Name, &comment, &a.TypeID, &a.TypeName, &a.NotNull); err != nil {
			return nil, err
		}
		a.Num = int(num)
		a.Tags, a.Description = introspection.ParseSmartComment(comment)
		out = append(out, a)
	}
	return out, rows.Err()
}

func loadConstraints(ctx context.Context, q Querier, namespaces []string) ([]*introspection.Constraint, error) {
	rows, err := q.Query(ctx, constraintsQuery, namespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*introspection.Constraint
	for rows.Next() {
		con := &introspection.Constraint{}
		var contype string
		var key []int16
		if err := rows.Scan(&con.ID, &con.Name, &con.ClassID, &contype, &key); err != nil {
			return nil, err
		}
		con.Type = introspection.ConstraintType(contype)
		con.KeyAttributeNums = attributeNums(key)
		out = append(out, con)
	}
	return out, rows.Err()
}

func attributeNums(key []int16) []int {
	nums := make([]int, len(key))
	for i, n := range key {
		nums[i] = int(n)
	}
	return nums
}
