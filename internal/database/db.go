package database

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"

	"github.com/psiai/psiai-backend/internal/config"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the database connection
type DB struct {
	*sqlx.DB
	Driver string
}

// NewConnection opens the record store selected by cfg.Driver.
func NewConnection(cfg config.DatabaseConfig) (*DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres, config.DriverPgx:
		db, err = sqlx.Connect(cfg.Driver, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = OpenSQLite(SQLiteDSN(cfg.Path))
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	return &DB{DB: db, Driver: cfg.Driver}, nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN with foreign keys enforced and
// a fixed time format so created_at sorts lexically.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// OpenSQLite opens a single-connection SQLite handle. One connection keeps
// ":memory:" databases shared across queries and serializes writers.
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
