package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/llm"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
)

type memoryStore struct {
	mu            sync.Mutex
	psychologists map[uuid.UUID]*models.Psychologist
	patients      map[uuid.UUID]*models.Patient
	sessions      map[uuid.UUID]*models.Session
	updates       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		psychologists: map[uuid.UUID]*models.Psychologist{},
		patients:      map[uuid.UUID]*models.Patient{},
		sessions:      map[uuid.UUID]*models.Session{},
	}
}

type memPsychologists struct{ s *memoryStore }
type memPatients struct{ s *memoryStore }
type memSessions struct{ s *memoryStore }

func (r memPsychologists) Create(_ context.Context, p *models.Psychologist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.psychologists[p.ID] = &cp
	return nil
}

func (r memPsychologists) Get(_ context.Context, id uuid.UUID) (*models.Psychologist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.psychologists[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPsychologists) List(context.Context) ([]*models.Psychologist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Psychologist{}
	for _, p := range r.s.psychologists {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memPatients) Create(_ context.Context, p *models.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.patients[p.ID] = &cp
	return nil
}

func (r memPatients) Get(_ context.Context, id uuid.UUID) (*models.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r memPatients) List(context.Context) ([]*models.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Patient{}
	for _, p := range r.s.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memSessions) Create(_ context.Context, s *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.psychologists[s.PsychologistID]; !ok {
		return apperr.NotFoundf("psychologist %s not found", s.PsychologistID)
	}
	if _, ok := r.s.patients[s.PatientID]; !ok {
		return apperr.NotFoundf("patient %s not found", s.PatientID)
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.s.sessions[s.ID] = &cp
	return nil
}

func (r memSessions) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r memSessions) List(_ context.Context, filter repository.SessionFilter) ([]*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Session{}
	for _, s := range r.s.sessions {
		if filter.PsychologistID != nil && s.PsychologistID != *filter.PsychologistID {
			continue
		}
		if filter.PatientID != nil && s.PatientID != *filter.PatientID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memSessions) Update(_ context.Context, id uuid.UUID, patch repository.SessionPatch) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, apperr.Persistence(errors.New("no rows"), "session update affected no rows")
	}
	set := func(dst **string, v *string) {
		if v != nil {
			val := *v
			*dst = &val
		}
	}
	set(&s.AudioURL, patch.AudioURL)
	set(&s.Transcription, patch.Transcription)
	set(&s.FullSummary, patch.FullSummary)
	set(&s.AnonymousSummary, patch.AnonymousSummary)
	set(&s.PatientDemand, patch.PatientDemand)
	set(&s.Context, patch.Context)
	set(&s.ClinicalAnalysis, patch.ClinicalAnalysis)
	set(&s.Conclusion, patch.Conclusion)
	if patch.Questions != nil {
		s.Questions = *patch.Questions
	}
	if patch.Answers != nil {
		s.Answers = *patch.Answers
	}
	s.UpdatedAt = time.Now()
	r.s.updates++
	cp := *s
	return &cp, nil
}

func (m *memoryStore) addPsychologist(name string) *models.Psychologist {
	p := &models.Psychologist{Name: name}
	_ = memPsychologists{m}.Create(context.Background(), p)
	return p
}

func (m *memoryStore) addPatient(name string) *models.Patient {
	p := &models.Patient{Name: name}
	_ = memPatients{m}.Create(context.Background(), p)
	return p
}

type fakeTranscriber struct {
	text  string
	err   error
	block bool
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeGenerator echoes the task name into its output and fails the task
// named in failOn.
type fakeGenerator struct {
	mu           sync.Mutex
	calls        []string
	failOn       string
	questions    []string
	anonymized   string
	anonNames    [2]string
	labels       [2]string
	conclusionIn llm.ConclusionInput
}

func (f *fakeGenerator) record(task string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, task)
	if task == f.failOn {
		return apperr.Upstream(fmt.Errorf("boom"), task+" failed")
	}
	return nil
}

func (f *fakeGenerator) artifact(task, transcript string) (string, error) {
	if err := f.record(task); err != nil {
		return "", err
	}
	return task + ":" + transcript, nil
}

func (f *fakeGenerator) SummarizeFull(_ context.Context, t string) (string, error) {
	return f.artifact("full_summary", t)
}

func (f *fakeGenerator) SummarizeAnonymous(_ context.Context, t string) (string, error) {
	return f.artifact("anonymous_summary", t)
}

func (f *fakeGenerator) ExtractDemand(_ context.Context, t string) (string, error) {
	return f.artifact("patient_demand", t)
}

func (f *fakeGenerator) ExtractContext(_ context.Context, t string) (string, error) {
	return f.artifact("context", t)
}

func (f *fakeGenerator) ClinicalAnalysis(_ context.Context, t string) (string, error) {
	return f.artifact("clinical_analysis", t)
}

func (f *fakeGenerator) AnonymizeTranscript(_ context.Context, t, subject, counterpart string) (string, error) {
	if err := f.record("anonymize"); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.anonNames = [2]string{subject, counterpart}
	f.mu.Unlock()
	return f.anonymized, nil
}

func (f *fakeGenerator) GenerateQuestions(_ context.Context, t, subjectLabel, counterpartLabel string) ([]string, error) {
	if err := f.record("questions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.labels = [2]string{subjectLabel, counterpartLabel}
	f.mu.Unlock()
	return f.questions, nil
}

func (f *fakeGenerator) GenerateConclusion(_ context.Context, in llm.ConclusionInput) (string, error) {
	if err := f.record("conclusion"); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.conclusionIn = in
	f.mu.Unlock()
	return "conclusion text", nil
}

func (f *fakeGenerator) called(task string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == task {
			return true
		}
	}
	return false
}

type fakeAudioStore struct {
	url      string
	err      error
	uploaded []byte
	name     string
}

func (f *fakeAudioStore) Upload(_ context.Context, data []byte, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = data
	f.name = filename
	return f.url, nil
}
