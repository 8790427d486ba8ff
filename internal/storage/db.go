package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// catalogMaxConns bounds the pool. The catalog is small and read-mostly.
const catalogMaxConns = 4

// DB serves the exercise catalog from Postgres.
type DB struct {
	Pool *pgxpool.Pool
}

// Open migrates the schema at dsn and connects to it. It returns the applied
// schema version alongside the catalog.
func Open(ctx context.Context, dsn, migrationsPath string) (*DB, uint, error) {
	version, err := RunMigrations(dsn, migrationsPath)
	if err != nil {
		return nil, 0, err
	}
	db, err := New(ctx, dsn)
	if err != nil {
		return nil, 0, err
	}
	return db, version, nil
}

// New connects to the catalog database without migrating it.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	if cfg.MaxConns > catalogMaxConns {
		cfg.MaxConns = catalogMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations brings the catalog schema up to date and reports the
// resulting version.
func RunMigrations(dsn, migrationsPath string) (uint, error) {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrating catalog schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("catalog schema version %d is dirty", version)
	}
	return version, nil
}
