package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal is unique per (job, freelancer); resubmission replaces the prior
// one. Proposals become read-only once the job leaves open (enforced by the
// job-status gate on submission, not by mutating rows).
type Proposal struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"job_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	CoverLetter  string    `json:"cover_letter"`
	RateCents    int64     `json:"rate_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
