package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction statuses. Only completed rows count toward a balance.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Ledger entry descriptions for machine-generated rows.
const (
	TxDescEscrowHold    = "Escrow hold"
	TxDescEscrowRelease = "Escrow release"
	TxDescEscrowRefund  = "Escrow refund"
	TxDescWithdrawal    = "Withdrawal"
)

// Transaction is an append-only ledger entry. AmountCents is signed: top-ups
// and releases are positive, holds and withdrawals negative. A user's balance
// is always SUM(amount_cents) over completed rows, never a stored field.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
