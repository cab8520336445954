package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

type Service interface {
	UpsertProfile(ctx context.Context, userID uuid.UUID, skills []string, bio string, hourlyRateCents int64) (*models.FreelancerProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	ProfileText(ctx context.Context, freelancerID uuid.UUID) (string, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) *service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

// normalizeSkills lowercases each skill so matching is case-insensitive.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *service) UpsertProfile(ctx context.Context, userID uuid.UUID, skills []string, bio string, hourlyRateCents int64) (*models.FreelancerProfile, error) {
	return s.repo.Upsert(ctx, &models.FreelancerProfile{
		UserID:          userID,
		Skills:          normalizeSkills(skills),
		Bio:             strings.TrimSpace(bio),
		HourlyRateCents: hourlyRateCents,
	})
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// ProfileText flattens a profile into the one-line form the ranking provider
// consumes. A missing profile yields an empty string, not an error.
func (s *service) ProfileText(ctx context.Context, freelancerID uuid.UUID) (string, error) {
	p, err := s.repo.GetByUserID(ctx, freelancerID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return fmt.Sprintf("Skills: %s. Bio: %s", strings.Join(p.Skills, ", "), p.Bio), nil
}
