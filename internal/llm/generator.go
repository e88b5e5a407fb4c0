package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/psiai/psiai-backend/internal/apperr"
)

// NoAnswersPlaceholder stands in for the answer list when none were given.
const NoAnswersPlaceholder = "Nenhuma resposta fornecida ainda."

// Generator produces the clinical artifacts of a session. Each call is one
// completion; failures are returned as apperr.UpstreamFailure without retry.
type Generator struct {
	client           Client
	prompts          Catalogue
	subjectLabel     string
	counterpartLabel string
}

// NewGenerator uses the embedded prompt catalogue. The labels are the
// generic role names used in the conclusion.
func NewGenerator(client Client, subjectLabel, counterpartLabel string) (*Generator, error) {
	prompts, err := DefaultCatalogue()
	if err != nil {
		return nil, err
	}
	return &Generator{
		client:           client,
		prompts:          prompts,
		subjectLabel:     subjectLabel,
		counterpartLabel: counterpartLabel,
	}, nil
}

func (g *Generator) run(ctx context.Context, task Task, data PromptData) (string, error) {
	prompt, ok := g.prompts[task]
	if !ok {
		return "", fmt.Errorf("no prompt for task %q", task)
	}
	req, err := prompt.Render(data)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task, err)
	}

	out, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", apperr.Upstream(err, fmt.Sprintf("%s generation failed", task))
	}
	return out, nil
}

func (g *Generator) SummarizeFull(ctx context.Context, transcript string) (string, error) {
	return g.run(ctx, TaskFullSummary, PromptData{Transcript: transcript})
}

// SummarizeAnonymous produces a de-identified summary for sharing outside
// the treating relationship.
func (g *Generator) SummarizeAnonymous(ctx context.Context, transcript string) (string, error) {
	return g.run(ctx, TaskAnonymousSummary, PromptData{Transcript: transcript})
}

func (g *Generator) ExtractDemand(ctx context.Context, transcript string) (string, error) {
	return g.run(ctx, TaskPatientDemand, PromptData{Transcript: transcript})
}

func (g *Generator) ExtractContext(ctx context.Context, transcript string) (string, error) {
	return g.run(ctx, TaskContext, PromptData{Transcript: transcript})
}

// ClinicalAnalysis returns the seven-section FAP analysis. The model may
// answer with clarifying questions instead; that text is returned as is.
func (g *Generator) ClinicalAnalysis(ctx context.Context, transcript string) (string, error) {
	return g.run(ctx, TaskClinicalAnalysis, PromptData{Transcript: transcript})
}

// AnonymizeTranscript replaces personal names with their initials.
func (g *Generator) AnonymizeTranscript(ctx context.Context, transcript, subjectName, counterpartName string) (string, error) {
	return g.run(ctx, TaskAnonymizeTranscript, PromptData{
		Transcript:      transcript,
		SubjectName:     subjectName,
		CounterpartName: counterpartName,
	})
}

// GenerateQuestions returns the reflective questions, one per non-blank line
// of the model output.
func (g *Generator) GenerateQuestions(ctx context.Context, transcript, subjectLabel, counterpartLabel string) ([]string, error) {
	out, err := g.run(ctx, TaskQuestions, PromptData{
		Transcript:       transcript,
		SubjectLabel:     subjectLabel,
		CounterpartLabel: counterpartLabel,
	})
	if err != nil {
		return nil, err
	}
	return SplitLines(out), nil
}

// ConclusionInput carries the stored session artifacts into the conclusion.
type ConclusionInput struct {
	Transcript       string
	Context          string
	Demand           string
	ClinicalAnalysis string
	Answers          []string
}

func (g *Generator) GenerateConclusion(ctx context.Context, in ConclusionInput) (string, error) {
	return g.run(ctx, TaskConclusion, PromptData{
		Transcript:       in.Transcript,
		Context:          in.Context,
		Demand:           in.Demand,
		ClinicalAnalysis: in.ClinicalAnalysis,
		Answers:          FormatAnswers(in.Answers),
		SubjectLabel:     g.subjectLabel,
		CounterpartLabel: g.counterpartLabel,
	})
}

// SplitLines trims each line and drops blank ones.
func SplitLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// FormatAnswers renders answers as a numbered list.
func FormatAnswers(answers []string) string {
	if len(answers) == 0 {
		return NoAnswersPlaceholder
	}
	lines := make([]string, len(answers))
	for i, a := range answers {
		lines[i] = fmt.Sprintf("%d. %s", i+1, a)
	}
	return strings.Join(lines, "\n")
}
