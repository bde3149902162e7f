package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pthm/reltag"
	"github.com/pthm/reltag/build"
	"github.com/pthm/reltag/internal/cli"
	"github.com/pthm/reltag/internal/pgintrospect"
	"github.com/pthm/reltag/introspection"
	"github.com/pthm/reltag/pgsql"
)

const connectTimeout = 10 * time.Second

// resolveDSN returns the --db flag, or the DSN built from configuration.
func resolveDSN() (string, error) {
	if dbFlag != "" {
		return dbFlag, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	if dsn == "" {
		return "", cli.ConfigError("database URL is required (use --db or set in config)", nil)
	}
	return dsn, nil
}

// connect opens a pool and checks that the server answers.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dsn, err := resolveDSN()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, cli.ConfigError("parsing database URL", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, cli.DBConnectError("connecting to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	logger.Debug("connected", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
	return pool, nil
}

// catalog is a loaded snapshot and, when it came from the database, the pool
// it was read through.
type catalog struct {
	snap *introspection.Snapshot
	pool *pgxpool.Pool
}

func (c *catalog) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// loadCatalog reads the snapshot file when one is configured and the
// database otherwise. Snapshot files are used as written; the schemas
// setting only filters live introspection.
func loadCatalog(ctx context.Context) (*catalog, error) {
	if path := resolveString(snapshotFlag, cfg.Snapshot); path != "" {
		snap, err := introspection.LoadFile(path)
		if err != nil {
			return nil, cli.ConfigError("loading snapshot", err)
		}
		logger.Debug("loaded snapshot", "path", path, "classes", len(snap.Classes()))
		return &catalog{snap: snap}, nil
	}

	pool, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := pgintrospect.Load(ctx, pool, cfg.Schemas)
	if err != nil {
		pool.Close()
		return nil, cli.GeneralError("introspecting database", err)
	}
	logger.Debug("introspected database", "schemas", cfg.Schemas, "classes", len(snap.Classes()))
	return &catalog{snap: snap, pool: pool}, nil
}

// newBuilder returns a schema builder over the catalog with the relation
// plugin registered. Root queries run against the catalog's pool, if any.
func newBuilder(c *catalog) (*build.SchemaBuilder, error) {
	aliases, err := pgsql.NewAllocator(cfg.Aliases)
	if err != nil {
		return nil, cli.ConfigError("aliases", err)
	}

	opts := build.Options{
		Snapshot:    c.snap,
		Aliases:     aliases,
		Logger:      logger,
		Concurrency: cfg.Build.Concurrency,
	}
	if c.pool != nil {
		opts.Executor = c.pool
	}

	sb := build.NewSchemaBuilder(opts)
	sb.AddHook(reltag.Plugin)
	return sb, nil
}

// buildSchema loads the catalog and builds the schema. The caller closes
// the returned catalog.
func buildSchema(ctx context.Context) (*build.Schema, *catalog, error) {
	c, err := loadCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	sb, err := newBuilder(c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	schema, err := sb.Build(ctx)
	if err != nil {
		c.Close()
		return nil, nil, cli.SchemaError("building schema", err)
	}
	return schema, c, nil
}

func typeName(f *build.Field) string {
	if f.Config == nil || f.Config.Type == nil {
		return ""
	}
	return f.Config.Type.String()
}
