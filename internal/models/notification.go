package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds emitted on job lifecycle events.
const (
	NotifyHired     = "hired"
	NotifyStarted   = "started"
	NotifySubmitted = "submitted"
	NotifyCompleted = "completed"
	NotifyRejected  = "rejected"
	NotifyCancelled = "cancelled"
	NotifyDisputed  = "disputed"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	JobID     uuid.UUID `json:"job_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
