package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Task names one templated generation.
type Task string

const (
	TaskFullSummary         Task = "full_summary"
	TaskAnonymousSummary    Task = "anonymous_summary"
	TaskPatientDemand       Task = "patient_demand"
	TaskContext             Task = "context"
	TaskClinicalAnalysis    Task = "clinical_analysis"
	TaskAnonymizeTranscript Task = "anonymize_transcript"
	TaskQuestions           Task = "questions"
	TaskConclusion          Task = "conclusion"
)

// AllTasks lists every task the catalogue must define.
var AllTasks = []Task{
	TaskFullSummary,
	TaskAnonymousSummary,
	TaskPatientDemand,
	TaskContext,
	TaskClinicalAnalysis,
	TaskAnonymizeTranscript,
	TaskQuestions,
	TaskConclusion,
}

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptData is the data available to prompt templates.
type PromptData struct {
	Transcript       string
	SubjectName      string
	CounterpartName  string
	SubjectLabel     string
	CounterpartLabel string
	Context          string
	Demand           string
	ClinicalAnalysis string
	Answers          string
}

type promptSpec struct {
	Temperature float32 `yaml:"temperature"`
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
}

// Prompt is a compiled system/user template pair.
type Prompt struct {
	Temperature float32
	system      *template.Template
	user        *template.Template
}

// Catalogue maps tasks to their prompts.
type Catalogue map[Task]*Prompt

// DefaultCatalogue returns the embedded prompt catalogue.
func DefaultCatalogue() (Catalogue, error) {
	return ParseCatalogue(defaultPrompts)
}

// ParseCatalogue compiles a YAML catalogue and checks that every task is present.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var specs map[Task]promptSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse prompt catalogue: %w", err)
	}

	catalogue := make(Catalogue, len(specs))
	for _, task := range AllTasks {
		spec, ok := specs[task]
		if !ok {
			return nil, fmt.Errorf("prompt catalogue is missing task %q", task)
		}

		system, err := template.New(string(task) + ".system").Option("missingkey=error").Parse(spec.System)
		if err != nil {
			return nil, fmt.Errorf("parse %s system prompt: %w", task, err)
		}
		user, err := template.New(string(task) + ".user").Option("missingkey=error").Parse(spec.User)
		if err != nil {
			return nil, fmt.Errorf("parse %s user prompt: %w", task, err)
		}

		catalogue[task] = &Prompt{Temperature: spec.Temperature, system: system, user: user}
	}
	return catalogue, nil
}

// Render builds the chat request for data.
func (p *Prompt) Render(data PromptData) (Request, error) {
	var system, user strings.Builder
	if err := p.system.Execute(&system, data); err != nil {
		return Request{}, err
	}
	if err := p.user.Execute(&user, data); err != nil {
		return Request{}, err
	}

	return Request{
		Messages: []Message{
			{Role: "system", Content: system.String()},
			{Role: "user", Content: user.String()},
		},
		Temperature: p.Temperature,
	}, nil
}
