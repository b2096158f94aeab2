package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/fejiro0/gomart/internal/config"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func Connect(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	const op = "db.Connect"

	if cfg.DSN == "" {
		return nil, fmt.Errorf("%s: postgres dsn is empty", op)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, e.Wrap(op, err)
	}

	return pool, nil
}

// RunMigrations applies the embedded migrations. It reports whether anything
// was applied.
func RunMigrations(dsn string) (bool, error) {
	const op = "db.RunMigrations"

	m, closeFn, err := newMigrate(dsn)
	if err != nil {
		return false, e.Wrap(op, err)
	}
	defer closeFn()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, e.Wrap(op, err)
	}
	return true, nil
}

// RollbackMigrations reverts the last steps migrations.
func RollbackMigrations(dsn string, steps int) error {
	const op = "db.RollbackMigrations"

	m, closeFn, err := newMigrate(dsn)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer closeFn()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return e.Wrap(op, err)
	}
	return nil
}

func newMigrate(dsn string) (*migrate.Migrate, func(), error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	return m, func() { m.Close() }, nil
}
