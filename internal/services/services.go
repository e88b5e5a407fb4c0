package services

import (
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/config"
	"github.com/psiai/psiai-backend/internal/llm"
	"github.com/psiai/psiai-backend/internal/repository/sqlstore"
)

// Services holds all service instances
type Services struct {
	// Plain record CRUD
	Records *RecordService

	// Session processing, answers and conclusion
	Pipeline *SessionPipeline
}

// Upstream groups the external clients the pipeline calls.
type Upstream struct {
	Transcriber llm.Transcriber
	Generator   ArtifactGenerator
	Audio       AudioStore // nil unless storage.retain_audio is set
}

// NewServices creates all service instances
func NewServices(store *sqlstore.Store, upstream Upstream, cfg *config.Config, logger *logrus.Logger) *Services {
	records := NewRecordService(store.Psychologists, store.Patients, store.Sessions)

	pipeline := NewSessionPipeline(PipelineDeps{
		Psychologists: store.Psychologists,
		Patients:      store.Patients,
		Sessions:      store.Sessions,
		Transcriber:   upstream.Transcriber,
		Generator:     upstream.Generator,
		Audio:         upstream.Audio,
	}, cfg.Pipeline, cfg.Server.RequestTimeout, logger)

	return &Services{
		Records:  records,
		Pipeline: pipeline,
	}
}
