package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/psiai/psiai-backend/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies all pending migrations for the configured driver.
func RunMigrations(cfg config.DatabaseConfig, db *DB) error {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverPgx:
		return migratePostgres(cfg.URL)
	case config.DriverSQLite:
		return MigrateSQLite(db.DB.DB)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migratePostgres(dsn string) error {
	src, err := newSource("postgres")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateSQLite applies the SQLite schema on an open handle. The migrate
// instance is not closed because that would close db.
func MigrateSQLite(db *sql.DB) error {
	src, err := newSource("sqlite")
	if err != nil {
		return err
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func newSource(dialect string) (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	return src, nil
}
