package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
)

// RecordService maps CRUD requests onto the repositories and turns absent
// records into apperr.NotFound.
type RecordService struct {
	psychologists repository.PsychologistRepository
	patients      repository.PatientRepository
	sessions      repository.SessionRepository
}

func NewRecordService(
	psychologists repository.PsychologistRepository,
	patients repository.PatientRepository,
	sessions repository.SessionRepository,
) *RecordService {
	return &RecordService{psychologists: psychologists, patients: patients, sessions: sessions}
}

func (s *RecordService) CreatePsychologist(ctx context.Context, req models.CreatePsychologistRequest) (*models.Psychologist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidInput, "name is required")
	}

	p := &models.Psychologist{Name: name}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		addr, err := mail.ParseAddress(strings.TrimSpace(*req.Email))
		if err != nil || addr.Name != "" {
			return nil, apperr.InvalidInputf("invalid email address %q", *req.Email)
		}
		p.Email = &addr.Address
	}

	if err := s.psychologists.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RecordService) GetPsychologist(ctx context.Context, id uuid.UUID) (*models.Psychologist, error) {
	p, err := s.psychologists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("psychologist %s not found", id)
	}
	return p, nil
}

func (s *RecordService) ListPsychologists(ctx context.Context) ([]*models.Psychologist, error) {
	return s.psychologists.List(ctx)
}

func (s *RecordService) CreatePatient(ctx context.Context, req models.CreatePatientRequest) (*models.Patient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidInput, "name is required")
	}

	p := &models.Patient{Name: name}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RecordService) GetPatient(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFoundf("patient %s not found", id)
	}
	return p, nil
}

func (s *RecordService) ListPatients(ctx context.Context) ([]*models.Patient, error) {
	return s.patients.List(ctx)
}

func (s *RecordService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFoundf("session %s not found", id)
	}
	return session, nil
}

func (s *RecordService) ListSessions(ctx context.Context, filter repository.SessionFilter) ([]*models.Session, error) {
	return s.sessions.List(ctx, filter)
}
