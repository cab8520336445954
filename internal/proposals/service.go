package proposals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

var (
	// ErrJobNotOpen is returned when submitting against a job that has left
	// the open state; existing proposals are read-only from then on.
	ErrJobNotOpen = errors.New("job is not open for proposals")
	// ErrInvalidProposal is returned when submission validation fails.
	ErrInvalidProposal = errors.New("invalid proposal")
)

// JobGetter is the slice of the job store the proposal service needs for the
// open-status gate.
type JobGetter interface {
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
}

// Store persists proposals. Upsert replaces any earlier proposal by the same
// freelancer on the same job, keeping the original submission position.
type Store interface {
	Upsert(ctx context.Context, p *models.Proposal) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Proposal, error)
	GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error)
}

type Service interface {
	Submit(ctx context.Context, jobID, freelancerID uuid.UUID, coverLetter string, rateCents int64) (*models.Proposal, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Proposal, error)
	GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error)
}

type service struct {
	store Store
	jobs  JobGetter
}

func NewService(store Store, jobs JobGetter) Service {
	return &service{store: store, jobs: jobs}
}

var _ Service = (*service)(nil)

func (s *service) Submit(ctx context.Context, jobID, freelancerID uuid.UUID, coverLetter string, rateCents int64) (*models.Proposal, error) {
	if strings.TrimSpace(coverLetter) == "" {
		return nil, fmt.Errorf("%w: cover letter is required", ErrInvalidProposal)
	}
	if rateCents <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrInvalidProposal)
	}
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, ErrJobNotOpen
	}
	p := &models.Proposal{
		ID:           uuid.New(),
		JobID:        jobID,
		FreelancerID: freelancerID,
		CoverLetter:  coverLetter,
		RateCents:    rateCents,
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert proposal: %w", err)
	}
	return p, nil
}

func (s *service) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Proposal, error) {
	return s.store.ListByJob(ctx, jobID)
}

func (s *service) GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error) {
	return s.store.GetByJobAndFreelancer(ctx, jobID, freelancerID)
}
