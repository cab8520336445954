package models

import (
	"time"

	"github.com/google/uuid"
)

// Escrow hold states.
const (
	HoldStateHeld     = "held"
	HoldStateReleased = "released"
	HoldStateRefunded = "refunded"
)

// EscrowHold tracks where held funds go. The hold mechanic is a completed
// negative transaction on the client plus this record; release credits the
// freelancer, refund credits the client back. At most one hold per job is in
// the held state (partial unique index on escrow_holds).
type EscrowHold struct {
	ID           uuid.UUID `json:"id"`
	JobID        uuid.UUID `json:"job_id"`
	ClientID     uuid.UUID `json:"client_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	AmountCents  int64     `json:"amount_cents"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
