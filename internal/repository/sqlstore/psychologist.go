package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
)

const psychologistColumns = "id, name, email, created_at, updated_at"

// PsychologistRepository implements repository.PsychologistRepository
type PsychologistRepository struct {
	db  *sqlx.DB
	now Clock
}

// Create inserts p, assigning its id and timestamps.
func (r *PsychologistRepository) Create(ctx context.Context, p *models.Psychologist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO psychologists (id, name, email, created_at, updated_at)
		VALUES (:id, :name, :email, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return apperr.Persistence(err, "failed to create psychologist")
	}
	return nil
}

// Get retrieves a psychologist by ID
func (r *PsychologistRepository) Get(ctx context.Context, id uuid.UUID) (*models.Psychologist, error) {
	var p models.Psychologist
	query := r.db.Rebind(`SELECT ` + psychologistColumns + ` FROM psychologists WHERE id = ?`)

	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "failed to get psychologist")
	}
	return &p, nil
}

// List returns all psychologists, newest first.
func (r *PsychologistRepository) List(ctx context.Context) ([]*models.Psychologist, error) {
	psychologists := []*models.Psychologist{}
	query := `SELECT ` + psychologistColumns + ` FROM psychologists ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &psychologists, query); err != nil {
		return nil, apperr.Persistence(err, "failed to list psychologists")
	}
	return psychologists, nil
}
