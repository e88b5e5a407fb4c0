package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the subject of a session.
type Patient struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePatientRequest is the body of POST /patients.
type CreatePatientRequest struct {
	Name string `json:"name"`
}
