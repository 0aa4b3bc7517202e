// Package migrations applies the embedded users schema with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed sql
var files embed.FS

// Postgres opens its own connection through the pgx stdlib driver and
// migrates the database at dsn to the latest version.
func Postgres(dsn string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := newMigrate("sql/postgres", "postgres", driver)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return up(m, "postgres", logger)
}

// SQLite migrates db in place. db stays open; the caller owns it.
func SQLite(db *sql.DB, logger *logrus.Logger) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}
	m, err := newMigrate("sql/sqlite", "sqlite", driver)
	if err != nil {
		return err
	}
	// m.Close would close db through the driver
	return up(m, "sqlite", logger)
}

func newMigrate(dir, dbName string, driver database.Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, dbName, driver)
}

func up(m *migrate.Migrate, dialect string, logger *logrus.Logger) error {
	if logger != nil {
		logger.WithField("dialect", dialect).Info("running migrations...")
	}
	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		if logger != nil {
			logger.Info("no migrations to run")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}
