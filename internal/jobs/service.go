package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/metrics"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

var (
	// ErrInvalidTransition is returned when (from, to) is not an edge of the
	// lifecycle state machine, or when the job's stored status no longer
	// matches from (optimistic concurrency guard).
	ErrInvalidTransition = errors.New("invalid job status transition")
	// ErrJobNotFound is returned when the job does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidJob is returned when creation-time validation fails.
	ErrInvalidJob = errors.New("invalid job")
)

// edges is the lifecycle state machine. completed and cancelled are terminal.
var edges = map[string][]string{
	models.JobStatusOpen:       {models.JobStatusHired, models.JobStatusCancelled},
	models.JobStatusHired:      {models.JobStatusInProgress, models.JobStatusDisputed},
	models.JobStatusInProgress: {models.JobStatusSubmitted, models.JobStatusDisputed},
	models.JobStatusSubmitted:  {models.JobStatusCompleted, models.JobStatusInProgress, models.JobStatusDisputed},
	models.JobStatusDisputed:   {models.JobStatusCompleted, models.JobStatusCancelled},
}

func legalTransition(from, to string) bool {
	for _, t := range edges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Store is the persistence interface for jobs. UpdateStatus must be a
// compare-and-swap on the status column: it reports false when the stored
// status no longer equals from.
type Store interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	Insert(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error)
	ListOpen(ctx context.Context) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to string, hiredFreelancerID *uuid.UUID) (bool, error)
	SetDeliverable(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, payload json.RawMessage) error
}

type Service interface {
	CreateJob(ctx context.Context, clientID uuid.UUID, title, description, category string, budgetCents int64, deadline time.Time) (*models.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error)
	ListOpen(ctx context.Context) ([]*models.Job, error)
	Transition(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to string, hiredFreelancerID *uuid.UUID) error
	SetDeliverable(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, payload json.RawMessage) error
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func (s *service) CreateJob(ctx context.Context, clientID uuid.UUID, title, description, category string, budgetCents int64, deadline time.Time) (*models.Job, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidJob)
	}
	if budgetCents <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidJob)
	}
	// Deadline is validated at creation only, never re-checked later.
	if !deadline.After(time.Now()) {
		return nil, fmt.Errorf("%w: deadline must be in the future", ErrInvalidJob)
	}
	j := &models.Job{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Category:    strings.ToLower(strings.TrimSpace(category)),
		BudgetCents: budgetCents,
		Deadline:    deadline,
		Status:      models.JobStatusOpen,
	}
	if err := s.store.Insert(ctx, j); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

func (s *service) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.store.GetByID(ctx, jobID)
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Job, error) {
	return s.store.ListByClient(ctx, clientID)
}

func (s *service) ListOpen(ctx context.Context) ([]*models.Job, error) {
	return s.store.ListOpen(ctx)
}

// Transition is the only way a job's status changes. hiredFreelancerID may
// only accompany the open->hired edge and is written atomically with the
// status; transitions into cancelled clear it so the hired-iff-active
// invariant holds.
func (s *service) Transition(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to string, hiredFreelancerID *uuid.UUID) error {
	if !legalTransition(from, to) {
		return ErrInvalidTransition
	}
	if hiredFreelancerID != nil && !(from == models.JobStatusOpen && to == models.JobStatusHired) {
		return ErrInvalidTransition
	}
	if from == models.JobStatusOpen && to == models.JobStatusHired && hiredFreelancerID == nil {
		return ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, tx, jobID, from, to, hiredFreelancerID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !ok {
		if _, err := s.store.GetByID(ctx, jobID); err != nil {
			return err
		}
		// Job exists but its status moved under us.
		return ErrInvalidTransition
	}
	metrics.JobTransitions.WithLabelValues(from, to).Inc()
	return nil
}

func (s *service) SetDeliverable(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, payload json.RawMessage) error {
	return s.store.SetDeliverable(ctx, tx, jobID, payload)
}
