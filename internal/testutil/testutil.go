// Package testutil provides a shared PostgreSQL container for reltag
// integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BlogSQL creates the p schema: authors, posts (tagged @references),
// post_authorship, comments (tagged @foreignKey) and the recent_posts view.
//
//go:embed testdata/blog.sql
var BlogSQL string

var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// ensureSingleton lazily starts the PostgreSQL container. The container is
// left to ryuk for cleanup.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}
		singletonDSN = dsn
	})
	return singletonDSN, singletonErr
}

// DB returns a pool on a fresh database with BlogSQL applied. The database
// is dropped when the test completes.
func DB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	return newDB(tb, BlogSQL)
}

// EmptyDB returns a pool on a fresh empty database.
func EmptyDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	return newDB(tb, "")
}

// DSN returns the connection string of a fresh database with BlogSQL
// applied, for code that opens its own connections.
func DSN(tb testing.TB) string {
	tb.Helper()
	pool := newDB(tb, BlogSQL)
	return pool.Config().ConnString()
}

func newDB(tb testing.TB, setup string) *pgxpool.Pool {
	tb.Helper()

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL container")

	name := uniqueDBName("reltag")
	require.NoError(tb, execAdmin(context.Background(), adminDSN, "CREATE DATABASE "+name),
		"failed to create test database")

	dsn, err := replaceDBName(adminDSN, name)
	require.NoError(tb, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, pool.Ping(ctx), "failed to ping test database")

	if setup != "" {
		_, err = pool.Exec(ctx, setup)
		require.NoError(tb, err, "failed to apply fixture")
	}

	tb.Cleanup(func() {
		pool.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = execAdmin(ctx, adminDSN, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})
	return pool
}

// execAdmin runs a statement on the maintenance database through the pgx
// database/sql driver.
func execAdmin(ctx context.Context, adminDSN, stmt string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, stmt)
	return err
}

func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

func replaceDBName(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing dsn: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}
