package proposals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockJobGetter struct {
	jobs map[uuid.UUID]*models.Job
}

func (m *mockJobGetter) GetJob(_ context.Context, jobID uuid.UUID) (*models.Job, error) {
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

// memProposalStore keeps insertion order and replaces on (job, freelancer),
// preserving the original position like the SQL upsert does.
type memProposalStore struct {
	mu   sync.Mutex
	list []*models.Proposal
}

func (m *memProposalStore) Upsert(_ context.Context, p *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.list {
		if existing.JobID == p.JobID && existing.FreelancerID == p.FreelancerID {
			existing.CoverLetter = p.CoverLetter
			existing.RateCents = p.RateCents
			existing.UpdatedAt = time.Now()
			*p = *existing
			return nil
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.list = append(m.list, &cp)
	return nil
}

func (m *memProposalStore) ListByJob(_ context.Context, jobID uuid.UUID) ([]*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Proposal
	for _, p := range m.list {
		if p.JobID == jobID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProposalStore) GetByJobAndFreelancer(_ context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.list {
		if p.JobID == jobID && p.FreelancerID == freelancerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func jobWithStatus(status string) *models.Job {
	return &models.Job{
		ID:          uuid.New(),
		ClientID:    uuid.New(),
		Title:       "Build landing page",
		Status:      status,
		BudgetCents: 30000,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSubmitUpsertsPerFreelancer(t *testing.T) {
	job := jobWithStatus(models.JobStatusOpen)
	store := &memProposalStore{}
	svc := NewService(store, &mockJobGetter{jobs: map[uuid.UUID]*models.Job{job.ID: job}})
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()

	if _, err := svc.Submit(ctx, job.ID, first, "I can do this", 20000); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, job.ID, second, "Pick me", 25000); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Resubmission replaces, never duplicates, and keeps position.
	if _, err := svc.Submit(ctx, job.ID, first, "Revised offer", 18000); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	list, err := svc.ListByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("proposals: got %d, want 2", len(list))
	}
	if list[0].FreelancerID != first || list[1].FreelancerID != second {
		t.Error("submission order must be preserved across resubmission")
	}
	if list[0].CoverLetter != "Revised offer" || list[0].RateCents != 18000 {
		t.Errorf("resubmission should replace content: %+v", list[0])
	}
}

func TestSubmitJobNotOpen(t *testing.T) {
	for _, status := range []string{
		models.JobStatusHired, models.JobStatusInProgress, models.JobStatusSubmitted,
		models.JobStatusCompleted, models.JobStatusDisputed, models.JobStatusCancelled,
	} {
		job := jobWithStatus(status)
		svc := NewService(&memProposalStore{}, &mockJobGetter{jobs: map[uuid.UUID]*models.Job{job.ID: job}})
		_, err := svc.Submit(context.Background(), job.ID, uuid.New(), "late", 1000)
		if err != ErrJobNotOpen {
			t.Errorf("status %s: expected ErrJobNotOpen, got %v", status, err)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	job := jobWithStatus(models.JobStatusOpen)
	svc := NewService(&memProposalStore{}, &mockJobGetter{jobs: map[uuid.UUID]*models.Job{job.ID: job}})
	ctx := context.Background()

	if _, err := svc.Submit(ctx, job.ID, uuid.New(), "   ", 1000); err == nil {
		t.Error("blank cover letter should fail")
	}
	if _, err := svc.Submit(ctx, job.ID, uuid.New(), "ok", 0); err == nil {
		t.Error("zero rate should fail")
	}
	if _, err := svc.Submit(ctx, uuid.New(), uuid.New(), "ok", 1000); err != jobs.ErrJobNotFound {
		t.Errorf("missing job: expected ErrJobNotFound, got %v", err)
	}
}
