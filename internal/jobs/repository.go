package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

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

const jobColumns = `id, client_id, title, description, category, budget_cents, deadline, status,
	hired_freelancer_id, deliverable_payload, created_at, updated_at`

func scanJob(row pgx.Row, j *models.Job) error {
	return row.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &j.Category, &j.BudgetCents,
		&j.Deadline, &j.Status, &j.HiredFreelancerID, &j.DeliverablePayload, &j.CreatedAt, &j.UpdatedAt)
}

func (r *Repository) Insert(ctx context.Context, j *models.Job) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, client_id, title, description, category, budget_cents, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, j.ID, j.ClientID, j.Title, j.Description, j.Category, j.BudgetCents, j.Deadline, j.Status)
	return row.Scan(&j.CreatedAt, &j.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var j models.Job
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID)
	if err := scanJob(row, &j); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

// UpdateStatus is the compare-and-swap behind Service.Transition. The WHERE
// clause on the current status makes concurrent transitions lose cleanly
// instead of clobbering each other. Cancellation clears the hired freelancer.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to string, hiredFreelancerID *uuid.UUID) (bool, error) {
	result, err := r.q(tx).Exec(ctx, `
		UPDATE jobs
		SET status = $1,
		    hired_freelancer_id = CASE
		        WHEN $1 = 'cancelled' THEN NULL
		        ELSE COALESCE($2, hired_freelancer_id)
		    END,
		    updated_at = now()
		WHERE id = $3 AND status = $4
	`, to, hiredFreelancerID, jobID, from)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *Repository) SetDeliverable(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, payload json.RawMessage) error {
	_, err := r.q(tx).Exec(ctx, `
		UPDATE jobs SET deliverable_payload = $1, updated_at = now() WHERE id = $2
	`, payload, jobID)
	return err
}

func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *Repository) ListOpen(ctx context.Context) ([]*models.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE status = 'open' ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func collectJobs(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()
	var list []*models.Job
	for rows.Next() {
		var j models.Job
		if err := scanJob(rows, &j); err != nil {
			return nil, err
		}
		list = append(list, &j)
	}
	return list, rows.Err()
}
