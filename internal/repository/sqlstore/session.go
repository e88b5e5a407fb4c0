package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
)

const sessionColumns = "id, psychologist_id, patient_id, audio_url, transcription, full_summary, " +
	"anonymous_summary, patient_demand, context, analise_da_ia, questions, answers, conclusion, " +
	"created_at, updated_at"

// SessionRepository implements repository.SessionRepository
type SessionRepository struct {
	db  *sqlx.DB
	now Clock
}

// Create inserts an empty session referencing s.PsychologistID and s.PatientID.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO sessions (id, psychologist_id, patient_id, audio_url, created_at, updated_at)
		VALUES (:id, :psychologist_id, :patient_id, :audio_url, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFoundf("psychologist %s or patient %s not found", s.PsychologistID, s.PatientID)
		}
		return apperr.Persistence(err, "failed to create session")
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "failed to get session")
	}
	return &s, nil
}

// List returns sessions matching filter, newest first.
func (r *SessionRepository) List(ctx context.Context, filter repository.SessionFilter) ([]*models.Session, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.PsychologistID != nil {
		where = append(where, "psychologist_id = ?")
		args = append(args, *filter.PsychologistID)
	}
	if filter.PatientID != nil {
		where = append(where, "patient_id = ?")
		args = append(args, *filter.PatientID)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	sessions := []*models.Session{}
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, apperr.Persistence(err, "failed to list sessions")
	}
	return sessions, nil
}

// Update applies patch and returns the stored row.
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, patch repository.SessionPatch) (*models.Session, error) {
	updates := patch.Fields()
	updates["updated_at"] = r.now()

	columns := make([]string, 0, len(updates))
	for column := range updates {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	setClause := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for _, column := range columns {
		setClause = append(setClause, column+" = ?")
		args = append(args, updates[column])
	}
	args = append(args, id)

	query := r.db.Rebind("UPDATE sessions SET " + strings.Join(setClause, ", ") + " WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to update session")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, noRowUpdated(id)
	}

	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, noRowUpdated(id)
	}
	return s, nil
}

func noRowUpdated(id uuid.UUID) error {
	return apperr.New(apperr.PersistenceFailure, fmt.Sprintf("update of session %s returned no row", id))
}
