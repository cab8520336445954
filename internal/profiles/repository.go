package profiles

import (
	"context"
	"errors"
	"fmt"

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

func (r *Repository) Upsert(ctx context.Context, p *models.FreelancerProfile) (*models.FreelancerProfile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO freelancer_profiles (user_id, skills, bio, hourly_rate_cents, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE
		SET skills = EXCLUDED.skills,
		    bio = EXCLUDED.bio,
		    hourly_rate_cents = EXCLUDED.hourly_rate_cents,
		    updated_at = now()
		RETURNING updated_at
	`, p.UserID, p.Skills, p.Bio, p.HourlyRateCents)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

// GetByUserID returns nil when no profile exists.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, skills, bio, hourly_rate_cents, updated_at
		FROM freelancer_profiles WHERE user_id = $1
	`, userID)
	err := row.Scan(&p.UserID, &p.Skills, &p.Bio, &p.HourlyRateCents, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}
