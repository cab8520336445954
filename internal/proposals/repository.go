package proposals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// Upsert relies on the UNIQUE (job_id, freelancer_id) constraint. A
// resubmission replaces the letter and rate but keeps the row's created_at,
// so submission order is stable.
func (r *Repository) Upsert(ctx context.Context, p *models.Proposal) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO proposals (id, job_id, freelancer_id, cover_letter, rate_cents)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id, freelancer_id) DO UPDATE
		SET cover_letter = EXCLUDED.cover_letter,
		    rate_cents = EXCLUDED.rate_cents,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, p.ID, p.JobID, p.FreelancerID, p.CoverLetter, p.RateCents)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *Repository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, freelancer_id, cover_letter, rate_cents, created_at, updated_at
		FROM proposals
		WHERE job_id = $1
		ORDER BY created_at ASC
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.JobID, &p.FreelancerID, &p.CoverLetter, &p.RateCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// GetByJobAndFreelancer returns nil when the freelancer has no proposal on
// the job.
func (r *Repository) GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, freelancer_id, cover_letter, rate_cents, created_at, updated_at
		FROM proposals
		WHERE job_id = $1 AND freelancer_id = $2
	`, jobID, freelancerID)
	err := row.Scan(&p.ID, &p.JobID, &p.FreelancerID, &p.CoverLetter, &p.RateCents, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
