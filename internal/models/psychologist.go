package models

import (
	"time"

	"github.com/google/uuid"
)

// Psychologist is the treating professional who owns sessions.
type Psychologist struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePsychologistRequest is the body of POST /psychologists.
type CreatePsychologistRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}
