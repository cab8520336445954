package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job status enums. Completed and cancelled are terminal; jobs are never
// hard-deleted.
const (
	JobStatusOpen       = "open"
	JobStatusHired      = "hired"
	JobStatusInProgress = "in_progress"
	JobStatusSubmitted  = "submitted"
	JobStatusCompleted  = "completed"
	JobStatusDisputed   = "disputed"
	JobStatusCancelled  = "cancelled"
)

type Job struct {
	ID                 uuid.UUID       `json:"id"`
	ClientID           uuid.UUID       `json:"client_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	BudgetCents        int64           `json:"budget_cents"`
	Deadline           time.Time       `json:"deadline"`
	Status             string          `json:"status"`
	HiredFreelancerID  *uuid.UUID      `json:"hired_freelancer_id,omitempty"`
	DeliverablePayload json.RawMessage `json:"deliverable_payload,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// HiredStatus reports whether hired_freelancer_id must be set for the
// given status.
func HiredStatus(status string) bool {
	switch status {
	case JobStatusHired, JobStatusInProgress, JobStatusSubmitted, JobStatusCompleted, JobStatusDisputed:
		return true
	}
	return false
}
