package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/psiai/psiai-backend/internal/models"
)

// PsychologistRepository defines psychologist storage operations.
// Get returns nil, nil when the record does not exist.
type PsychologistRepository interface {
	Create(ctx context.Context, p *models.Psychologist) error
	Get(ctx context.Context, id uuid.UUID) (*models.Psychologist, error)
	List(ctx context.Context) ([]*models.Psychologist, error)
}

// PatientRepository defines patient storage operations.
// Get returns nil, nil when the record does not exist.
type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context) ([]*models.Patient, error)
}

// SessionRepository defines session storage operations.
// Get returns nil, nil when the record does not exist. Create fails with
// apperr.NotFound when either reference is dangling.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]*models.Session, error)
	Update(ctx context.Context, id uuid.UUID, patch SessionPatch) (*models.Session, error)
}

// SessionFilter restricts List to sessions matching every non-nil field.
type SessionFilter struct {
	PsychologistID *uuid.UUID
	PatientID      *uuid.UUID
}

// SessionPatch is a partial update. Nil fields are left untouched; a
// non-nil pointer to a nil list writes NULL.
type SessionPatch struct {
	AudioURL         *string
	Transcription    *string
	FullSummary      *string
	AnonymousSummary *string
	PatientDemand    *string
	Context          *string
	ClinicalAnalysis *string
	Conclusion       *string
	Questions        *models.StringList
	Answers          *models.StringList
}

// Fields returns the patch as a column to value map.
func (p SessionPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})

	text := map[string]*string{
		"audio_url":         p.AudioURL,
		"transcription":     p.Transcription,
		"full_summary":      p.FullSummary,
		"anonymous_summary": p.AnonymousSummary,
		"patient_demand":    p.PatientDemand,
		"context":           p.Context,
		"analise_da_ia":     p.ClinicalAnalysis,
		"conclusion":        p.Conclusion,
	}
	for column, value := range text {
		if value != nil {
			fields[column] = *value
		}
	}

	if p.Questions != nil {
		fields["questions"] = *p.Questions
	}
	if p.Answers != nil {
		fields["answers"] = *p.Answers
	}

	return fields
}

// ClearAnswers returns a list pointer that, used in a patch, sets answers to NULL.
func ClearAnswers() *models.StringList {
	var none models.StringList
	return &none
}
