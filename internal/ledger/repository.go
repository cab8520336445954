package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// Repository implements Store against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// querier is satisfied by both pgx.Tx and *pgxpool.Pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) q(tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *Repository) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Append(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	row := r.q(tx).QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, description, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.UserID, t.Description, t.AmountCents, t.Status)
	return row.Scan(&t.CreatedAt)
}

func (r *Repository) SumCompleted(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.q(tx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'completed'
	`, userID).Scan(&total)
	return total, err
}

// LockBalance takes a transaction-scoped advisory lock on the user so the
// derived-balance check cannot race a concurrent debit. There is no balance
// row to SELECT FOR UPDATE.
func (r *Repository) LockBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := r.q(tx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID)
	return err
}

func (r *Repository) InsertHold(ctx context.Context, tx pgx.Tx, h *models.EscrowHold) error {
	row := r.q(tx).QueryRow(ctx, `
		INSERT INTO escrow_holds (id, job_id, client_id, freelancer_id, amount_cents, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, h.ID, h.JobID, h.ClientID, h.FreelancerID, h.AmountCents, h.State)
	if err := row.Scan(&h.CreatedAt, &h.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateHold
		}
		return err
	}
	return nil
}

// HoldForUpdate returns the most recent hold for the job, row-locked, or nil
// when the job has never had one.
func (r *Repository) HoldForUpdate(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (*models.EscrowHold, error) {
	var h models.EscrowHold
	row := r.q(tx).QueryRow(ctx, `
		SELECT id, job_id, client_id, freelancer_id, amount_cents, state, created_at, updated_at
		FROM escrow_holds
		WHERE job_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, jobID)
	err := row.Scan(&h.ID, &h.JobID, &h.ClientID, &h.FreelancerID, &h.AmountCents, &h.State, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) SetHoldState(ctx context.Context, tx pgx.Tx, holdID uuid.UUID, state string) error {
	_, err := r.q(tx).Exec(ctx, `
		UPDATE escrow_holds SET state = $1, updated_at = now() WHERE id = $2
	`, state, holdID)
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, description, amount_cents, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.AmountCents, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
