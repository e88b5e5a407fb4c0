// Package sqlstore implements the repository interfaces on sqlx. The same
// queries run on PostgreSQL (lib/pq or pgx) and SQLite (modernc.org/sqlite);
// placeholders are rebound per driver.
package sqlstore

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/psiai/psiai-backend/internal/repository"
)

// Clock returns the timestamp written to created_at and updated_at.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// Store bundles the three repositories over one connection.
type Store struct {
	Psychologists *PsychologistRepository
	Patients      *PatientRepository
	Sessions      *SessionRepository
}

// NewStore creates all repositories sharing db and clock. A nil clock uses
// the current UTC time.
func NewStore(db *sqlx.DB, clock Clock) *Store {
	if clock == nil {
		clock = utcNow
	}
	return &Store{
		Psychologists: &PsychologistRepository{db: db, now: clock},
		Patients:      &PatientRepository{db: db, now: clock},
		Sessions:      &SessionRepository{db: db, now: clock},
	}
}

var (
	_ repository.PsychologistRepository = (*PsychologistRepository)(nil)
	_ repository.PatientRepository      = (*PatientRepository)(nil)
	_ repository.SessionRepository      = (*SessionRepository)(nil)
)

const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == foreignKeyViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == foreignKeyViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "FOREIGN KEY"))
	}

	return false
}
