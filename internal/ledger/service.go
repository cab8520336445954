package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/metrics"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

var (
	// ErrInsufficientFunds is returned when a completed-transaction balance
	// is too low for the requested hold or withdrawal.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicateHold is returned when the job already has a live hold.
	ErrDuplicateHold = errors.New("active escrow hold already exists for job")
	// ErrHoldNotFound is returned when no hold exists for the job.
	ErrHoldNotFound = errors.New("no escrow hold for job")
	// ErrInvalidHoldState is returned when a hold is in the opposite terminal
	// state (released vs refunded) from the one requested.
	ErrInvalidHoldState = errors.New("escrow hold is not in a transitionable state")
)

// Store is the minimal persistence interface the ledger service needs.
// The tx parameter is nil when the operation runs outside a caller-owned
// transaction; the pgx repository then falls back to the pool.
type Store interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	Append(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
	SumCompleted(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error)
	LockBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	InsertHold(ctx context.Context, tx pgx.Tx, h *models.EscrowHold) error
	HoldForUpdate(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (*models.EscrowHold, error)
	SetHoldState(ctx context.Context, tx pgx.Tx, holdID uuid.UUID, state string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

type Service interface {
	RecordTransaction(ctx context.Context, userID uuid.UUID, description string, amountCents int64, status string) (*models.Transaction, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	TopUp(ctx context.Context, userID uuid.UUID, amountCents int64, sourceMethodID string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amountCents int64) (*models.Transaction, error)
	CreateHold(ctx context.Context, tx pgx.Tx, jobID, clientID, freelancerID uuid.UUID, amountCents int64) error
	ReleaseHold(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error
	RefundHold(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) RecordTransaction(ctx context.Context, userID uuid.UUID, description string, amountCents int64, status string) (*models.Transaction, error) {
	t := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		AmountCents: amountCents,
		Status:      status,
	}
	if err := s.store.Append(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindOther).Inc()
	return t, nil
}

// GetBalance derives the balance from completed transactions. It is never
// read from a stored column, so the ledger cannot drift from the balance.
func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.SumCompleted(ctx, nil, userID)
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *service) TopUp(ctx context.Context, userID uuid.UUID, amountCents int64, sourceMethodID string) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, models.ErrBadAmount
	}
	t := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Description: fmt.Sprintf("Top-up via %s", sourceMethodID),
		AmountCents: amountCents,
		Status:      models.TxStatusCompleted,
	}
	if err := s.store.Append(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("append top-up: %w", err)
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindTopUp).Inc()
	return t, nil
}

// Withdraw debits the spendable balance. The per-user lock serializes the
// balance check against concurrent holds and withdrawals.
func (s *service) Withdraw(ctx context.Context, userID uuid.UUID, amountCents int64) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, models.ErrBadAmount
	}
	t := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Description: models.TxDescWithdrawal,
		AmountCents: -amountCents,
		Status:      models.TxStatusCompleted,
	}
	err := s.store.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.store.LockBalance(ctx, tx, userID); err != nil {
			return err
		}
		balance, err := s.store.SumCompleted(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance < amountCents {
			return ErrInsufficientFunds
		}
		return s.store.Append(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindWithdrawal).Inc()
	return t, nil
}

// CreateHold runs inside the caller's transaction. Held funds are a completed
// negative transaction on the client plus a hold record tracking where they
// go; there is no separate "held" bucket to drift.
func (s *service) CreateHold(ctx context.Context, tx pgx.Tx, jobID, clientID, freelancerID uuid.UUID, amountCents int64) error {
	if err := s.store.LockBalance(ctx, tx, clientID); err != nil {
		return err
	}
	existing, err := s.store.HoldForUpdate(ctx, tx, jobID)
	if err != nil {
		return err
	}
	if existing != nil && existing.State == models.HoldStateHeld {
		return ErrDuplicateHold
	}
	balance, err := s.store.SumCompleted(ctx, tx, clientID)
	if err != nil {
		return err
	}
	if balance < amountCents {
		return ErrInsufficientFunds
	}
	if err := s.store.Append(ctx, tx, &models.Transaction{
		ID:          uuid.New(),
		UserID:      clientID,
		Description: models.TxDescEscrowHold,
		AmountCents: -amountCents,
		Status:      models.TxStatusCompleted,
	}); err != nil {
		return err
	}
	if err := s.store.InsertHold(ctx, tx, &models.EscrowHold{
		ID:           uuid.New(),
		JobID:        jobID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		AmountCents:  amountCents,
		State:        models.HoldStateHeld,
	}); err != nil {
		return err
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindEscrowHold).Inc()
	return nil
}

// ReleaseHold credits the freelancer and marks the hold released. Calling it
// on an already-released hold is a no-op so retries after a crash between
// the ledger write and the job-status write are safe.
func (s *service) ReleaseHold(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error {
	h, err := s.store.HoldForUpdate(ctx, tx, jobID)
	if err != nil {
		return err
	}
	if h == nil {
		return ErrHoldNotFound
	}
	switch h.State {
	case models.HoldStateReleased:
		return nil
	case models.HoldStateRefunded:
		return ErrInvalidHoldState
	}
	if err := s.store.Append(ctx, tx, &models.Transaction{
		ID:          uuid.New(),
		UserID:      h.FreelancerID,
		Description: models.TxDescEscrowRelease,
		AmountCents: h.AmountCents,
		Status:      models.TxStatusCompleted,
	}); err != nil {
		return err
	}
	if err := s.store.SetHoldState(ctx, tx, h.ID, models.HoldStateReleased); err != nil {
		return err
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindEscrowRelease).Inc()
	return nil
}

// RefundHold credits the client back and marks the hold refunded. Same
// idempotence rule as ReleaseHold.
func (s *service) RefundHold(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) error {
	h, err := s.store.HoldForUpdate(ctx, tx, jobID)
	if err != nil {
		return err
	}
	if h == nil {
		return ErrHoldNotFound
	}
	switch h.State {
	case models.HoldStateRefunded:
		return nil
	case models.HoldStateReleased:
		return ErrInvalidHoldState
	}
	if err := s.store.Append(ctx, tx, &models.Transaction{
		ID:          uuid.New(),
		UserID:      h.ClientID,
		Description: models.TxDescEscrowRefund,
		AmountCents: h.AmountCents,
		Status:      models.TxStatusCompleted,
	}); err != nil {
		return err
	}
	if err := s.store.SetHoldState(ctx, tx, h.ID, models.HoldStateRefunded); err != nil {
		return err
	}
	metrics.LedgerEntries.WithLabelValues(metrics.KindEscrowRefund).Inc()
	return nil
}
