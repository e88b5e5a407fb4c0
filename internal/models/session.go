package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one recorded therapy encounter and the artifacts derived from it.
// Every artifact is nil until the processing pipeline writes it.
type Session struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PsychologistID   uuid.UUID  `json:"psychologist_id" db:"psychologist_id"`
	PatientID        uuid.UUID  `json:"patient_id" db:"patient_id"`
	AudioURL         *string    `json:"audio_url" db:"audio_url"`
	Transcription    *string    `json:"transcription" db:"transcription"`
	FullSummary      *string    `json:"full_summary" db:"full_summary"`
	AnonymousSummary *string    `json:"anonymous_summary" db:"anonymous_summary"`
	PatientDemand    *string    `json:"patient_demand" db:"patient_demand"`
	Context          *string    `json:"context" db:"context"`
	ClinicalAnalysis *string    `json:"analise_da_ia" db:"analise_da_ia"`
	Questions        StringList `json:"questions" db:"questions"`
	Answers          StringList `json:"answers" db:"answers"`
	Conclusion       *string    `json:"conclusion" db:"conclusion"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// SubmitAnswersRequest is the body of PATCH /sessions/:id/answers.
type SubmitAnswersRequest struct {
	Answers []string `json:"answers"`
}

// StringList is an ordered list of strings stored as a JSON array.
// A nil list is stored as NULL.
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if string(raw) == "null" {
		*l = nil
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}
