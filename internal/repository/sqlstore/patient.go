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

const patientColumns = "id, name, created_at, updated_at"

// PatientRepository implements repository.PatientRepository
type PatientRepository struct {
	db  *sqlx.DB
	now Clock
}

func (r *PatientRepository) Create(ctx context.Context, p *models.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO patients (id, name, created_at, updated_at)
		VALUES (:id, :name, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return apperr.Persistence(err, "failed to create patient")
	}
	return nil
}

func (r *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	query := r.db.Rebind(`SELECT ` + patientColumns + ` FROM patients WHERE id = ?`)

	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Persistence(err, "failed to get patient")
	}
	return &p, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*models.Patient, error) {
	patients := []*models.Patient{}
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, apperr.Persistence(err, "failed to list patients")
	}
	return patients, nil
}
