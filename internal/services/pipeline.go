package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/config"
	"github.com/psiai/psiai-backend/internal/llm"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
)

// ProcessInput is one uploaded session recording.
type ProcessInput struct {
	PsychologistID uuid.UUID
	PatientID      uuid.UUID
	Audio          []byte
	Filename       string
}

// SessionPipeline runs the session lifecycle: create, transcribe, anonymize,
// generate artifacts and persist. It also owns the follow-up operations that
// mutate a processed session (answers and conclusion).
type SessionPipeline struct {
	// Records
	psychologists repository.PsychologistRepository
	patients      repository.PatientRepository
	sessions      repository.SessionRepository

	// Upstream services
	transcriber llm.Transcriber
	generator   ArtifactGenerator
	audio       AudioStore // nil when audio is discarded

	subjectLabel     string
	counterpartLabel string
	concurrent       bool
	timeout          time.Duration

	logger *logrus.Logger
}

// PipelineDeps groups the collaborators of a SessionPipeline.
type PipelineDeps struct {
	Psychologists repository.PsychologistRepository
	Patients      repository.PatientRepository
	Sessions      repository.SessionRepository
	Transcriber   llm.Transcriber
	Generator     ArtifactGenerator
	Audio         AudioStore
}

// NewSessionPipeline creates a pipeline. A zero timeout disables the deadline.
func NewSessionPipeline(deps PipelineDeps, cfg config.PipelineConfig, timeout time.Duration, logger *logrus.Logger) *SessionPipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionPipeline{
		psychologists:    deps.Psychologists,
		patients:         deps.Patients,
		sessions:         deps.Sessions,
		transcriber:      deps.Transcriber,
		generator:        deps.Generator,
		audio:            deps.Audio,
		subjectLabel:     cfg.SubjectLabel,
		counterpartLabel: cfg.CounterpartLabel,
		concurrent:       cfg.ConcurrentArtifacts,
		timeout:          timeout,
		logger:           logger,
	}
}

// Process creates a session from an uploaded recording and fills in every
// generated artifact. On failure after the row is created the partial row is
// kept; the returned error carries the apperr category.
func (p *SessionPipeline) Process(ctx context.Context, in ProcessInput) (*models.Session, error) {
	if len(in.Audio) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "audio file is empty")
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	session, err := p.process(ctx, in)
	if err != nil {
		return nil, p.timeoutAware(ctx, err)
	}
	return session, nil
}

func (p *SessionPipeline) process(ctx context.Context, in ProcessInput) (*models.Session, error) {
	log := p.logger.WithFields(logrus.Fields{
		"psychologist_id": in.PsychologistID,
		"patient_id":      in.PatientID,
		"filename":        in.Filename,
	})

	session := &models.Session{
		PsychologistID: in.PsychologistID,
		PatientID:      in.PatientID,
	}

	if p.audio != nil {
		url, err := p.audio.Upload(ctx, in.Audio, in.Filename)
		if err != nil {
			log.WithError(err).Error("Audio upload failed")
			return nil, err
		}
		session.AudioURL = &url
	}

	// 1. Create
	if err := p.sessions.Create(ctx, session); err != nil {
		log.WithError(err).Error("Failed to create session")
		return nil, err
	}
	log = log.WithField("session_id", session.ID)
	log.Info("Session created")

	// 2. Resolve identities
	psychologist, err := p.psychologists.Get(ctx, in.PsychologistID)
	if err != nil {
		return nil, err
	}
	if psychologist == nil {
		return nil, apperr.NotFoundf("psychologist %s not found", in.PsychologistID)
	}
	patient, err := p.patients.Get(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperr.NotFoundf("patient %s not found", in.PatientID)
	}

	// 3. Transcribe
	raw, err := p.transcriber.Transcribe(ctx, in.Audio, in.Filename)
	if err != nil {
		log.WithError(err).Error("Transcription failed")
		return nil, err
	}
	log.WithField("chars", len(raw)).Debug("Transcription received")

	// 4. Anonymize; only the anonymized text is ever stored
	transcript, err := p.generator.AnonymizeTranscript(ctx, raw, patient.Name, psychologist.Name)
	if err != nil {
		log.WithError(err).Error("Anonymization failed")
		return nil, err
	}
	if _, err := p.sessions.Update(ctx, session.ID, repository.SessionPatch{Transcription: &transcript}); err != nil {
		log.WithError(err).Error("Failed to store transcription")
		return nil, err
	}

	// 5. Questions
	questions, err := p.generator.GenerateQuestions(ctx, transcript, p.subjectLabel, p.counterpartLabel)
	if err != nil {
		log.WithError(err).Error("Question generation failed")
		return nil, err
	}

	// 6. Derived artifacts
	patch, err := p.generateArtifacts(ctx, transcript)
	if err != nil {
		log.WithError(err).Error("Artifact generation failed")
		return nil, err
	}

	// 7. Persist
	list := models.StringList(questions)
	patch.Questions = &list
	patch.Answers = repository.ClearAnswers()

	updated, err := p.sessions.Update(ctx, session.ID, patch)
	if err != nil {
		log.WithError(err).Error("Failed to store artifacts")
		return nil, err
	}

	log.WithField("questions", len(questions)).Info("Session processed")
	return updated, nil
}

type artifactJob struct {
	name string
	run  func(context.Context, string) (string, error)
	dst  **string
}

func (p *SessionPipeline) generateArtifacts(ctx context.Context, transcript string) (repository.SessionPatch, error) {
	var patch repository.SessionPatch
	jobs := []artifactJob{
		{"full_summary", p.generator.SummarizeFull, &patch.FullSummary},
		{"anonymous_summary", p.generator.SummarizeAnonymous, &patch.AnonymousSummary},
		{"patient_demand", p.generator.ExtractDemand, &patch.PatientDemand},
		{"context", p.generator.ExtractContext, &patch.Context},
		{"clinical_analysis", p.generator.ClinicalAnalysis, &patch.ClinicalAnalysis},
	}

	results := make([]string, len(jobs))

	if p.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				out, err := job.run(gctx, transcript)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return repository.SessionPatch{}, err
		}
	} else {
		for i, job := range jobs {
			out, err := job.run(ctx, transcript)
			if err != nil {
				return repository.SessionPatch{}, err
			}
			results[i] = out
		}
	}

	for i, job := range jobs {
		value := results[i]
		*job.dst = &value
	}
	return patch, nil
}

// SubmitAnswers overwrites the answers of a processed session.
func (p *SessionPipeline) SubmitAnswers(ctx context.Context, id uuid.UUID, answers []string) (*models.Session, error) {
	session, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFoundf("session %s not found", id)
	}
	if len(session.Questions) == 0 {
		return nil, apperr.Newf(apperr.InvalidState, "session %s has no questions to answer", id)
	}
	if len(answers) != len(session.Questions) {
		return nil, apperr.Newf(apperr.LengthMismatch,
			"expected %d answers, got %d", len(session.Questions), len(answers))
	}

	list := make(models.StringList, len(answers))
	copy(list, answers)

	updated, err := p.sessions.Update(ctx, id, repository.SessionPatch{Answers: &list})
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"session_id": id,
		"answers":    len(list),
	}).Info("Answers stored")
	return updated, nil
}

// Conclude generates and stores the closing synthesis of a session.
func (p *SessionPipeline) Conclude(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	session, err := p.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFoundf("session %s not found", id)
	}
	if session.Transcription == nil || *session.Transcription == "" {
		return nil, apperr.Newf(apperr.InvalidState, "session %s has no transcription", id)
	}

	conclusion, err := p.generator.GenerateConclusion(ctx, llm.ConclusionInput{
		Transcript:       *session.Transcription,
		Context:          deref(session.Context),
		Demand:           deref(session.PatientDemand),
		ClinicalAnalysis: deref(session.ClinicalAnalysis),
		Answers:          session.Answers,
	})
	if err != nil {
		return nil, p.timeoutAware(ctx, err)
	}

	updated, err := p.sessions.Update(ctx, id, repository.SessionPatch{Conclusion: &conclusion})
	if err != nil {
		return nil, p.timeoutAware(ctx, err)
	}

	p.logger.WithField("session_id", id).Info("Conclusion stored")
	return updated, nil
}

func (p *SessionPipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// timeoutAware reports an expired deadline as an upstream failure whatever
// step was interrupted.
func (p *SessionPipeline) timeoutAware(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !apperr.HasCategory(err, apperr.UpstreamFailure) {
		return apperr.Upstream(err, "session processing timed out")
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
