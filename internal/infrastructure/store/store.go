// Package store opens the user repository selected by configuration.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-users-contract/config"
	"github.com/oksasatya/go-users-contract/internal/domain/repository"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/memory"
	"github.com/oksasatya/go-users-contract/internal/infrastructure/migrations"
	pginfra "github.com/oksasatya/go-users-contract/internal/infrastructure/postgres"
	sqliteinfra "github.com/oksasatya/go-users-contract/internal/infrastructure/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Store is an opened user repository with its lifecycle hooks.
type Store struct {
	Repo   repository.UserRepository
	Driver string
	Ping   func(ctx context.Context) error
	Close  func()
}

// Open connects the configured driver and migrates its schema. With
// cfg.SeedDemoUsers set, an empty store receives the demo users.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	var (
		s   *Store
		err error
	)
	switch cfg.StoreDriver {
	case DriverMemory:
		s = &Store{
			Repo:  memory.NewUserRepository(),
			Ping:  func(context.Context) error { return nil },
			Close: func() {},
		}
	case DriverSQLite:
		s, err = openSQLite(cfg.SQLitePath, logger)
	case DriverPostgres, "":
		s, err = openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	if s.Driver == "" {
		s.Driver = cfg.StoreDriver
	}
	if cfg.SeedDemoUsers {
		n, err := Seed(ctx, s.Repo)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("seed demo users: %w", err)
		}
		if n > 0 {
			logger.WithField("count", n).Info("seeded demo users")
		}
	}
	return s, nil
}

func openSQLite(path string, logger *logrus.Logger) (*Store, error) {
	db, err := sqliteinfra.Open(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.SQLite(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		Repo:   sqliteinfra.NewUserRepository(db),
		Driver: DriverSQLite,
		Ping:   db.PingContext,
		Close:  closer(db),
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	if err := migrations.Postgres(cfg.PostgresDSN(), logger); err != nil {
		return nil, err
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Store{
		Repo:   pginfra.NewUserRepository(pool),
		Driver: DriverPostgres,
		Ping:   pool.Ping,
		Close:  pool.Close,
	}, nil
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// Seed inserts the demo users when repo is empty and reports how many were
// added.
func Seed(ctx context.Context, repo repository.UserRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range memory.DemoUsers {
		u := memory.DemoUsers[i]
		if err := repo.Create(ctx, &u); err != nil {
			return i, err
		}
	}
	return len(memory.DemoUsers), nil
}
