package services

import (
	"context"

	"github.com/psiai/psiai-backend/internal/llm"
	"github.com/psiai/psiai-backend/internal/storage"
)

// ArtifactGenerator produces every text artifact of a session.
// *llm.Generator implements it.
type ArtifactGenerator interface {
	SummarizeFull(ctx context.Context, transcript string) (string, error)
	SummarizeAnonymous(ctx context.Context, transcript string) (string, error)
	ExtractDemand(ctx context.Context, transcript string) (string, error)
	ExtractContext(ctx context.Context, transcript string) (string, error)
	ClinicalAnalysis(ctx context.Context, transcript string) (string, error)
	AnonymizeTranscript(ctx context.Context, transcript, subjectName, counterpartName string) (string, error)
	GenerateQuestions(ctx context.Context, transcript, subjectLabel, counterpartLabel string) ([]string, error)
	GenerateConclusion(ctx context.Context, in llm.ConclusionInput) (string, error)
}

// AudioStore persists uploaded audio and returns its public URL.
// *storage.Uploader implements it.
type AudioStore interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

var (
	_ ArtifactGenerator = (*llm.Generator)(nil)
	_ AudioStore        = (*storage.Uploader)(nil)
)
