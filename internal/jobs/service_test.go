package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory Store with real compare-and-swap semantics on UpdateStatus.
// ---------------------------------------------------------------------------

type memJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.Job
}

func newMemJobStore(jobs ...*models.Job) *memJobStore {
	m := &memJobStore{jobs: make(map[uuid.UUID]*models.Job)}
	for _, j := range jobs {
		cp := *j
		m.jobs[j.ID] = &cp
	}
	return m
}

func (m *memJobStore) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (m *memJobStore) Insert(_ context.Context, j *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	cp.CreatedAt = time.Now()
	m.jobs[j.ID] = &cp
	return nil
}

func (m *memJobStore) GetByID(_ context.Context, jobID uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobStore) ListByClient(_ context.Context, clientID uuid.UUID) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, j := range m.jobs {
		if j.ClientID == clientID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memJobStore) ListOpen(_ context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, j := range m.jobs {
		if j.Status == models.JobStatusOpen {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memJobStore) UpdateStatus(_ context.Context, _ pgx.Tx, jobID uuid.UUID, from, to string, hired *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != from {
		return false, nil
	}
	j.Status = to
	if to == models.JobStatusCancelled {
		j.HiredFreelancerID = nil
	} else if hired != nil {
		j.HiredFreelancerID = hired
	}
	return true, nil
}

func (m *memJobStore) SetDeliverable(_ context.Context, _ pgx.Tx, jobID uuid.UUID, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	j.DeliverablePayload = payload
	return nil
}

func openJob(clientID uuid.UUID) *models.Job {
	return &models.Job{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       "Translate product catalog",
		Description: "English to Somali, ~40 pages",
		Category:    "translation",
		BudgetCents: 50000,
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
		Status:      models.JobStatusOpen,
	}
}

func jobAt(t *testing.T, store *memJobStore, status string, hired *uuid.UUID) *models.Job {
	t.Helper()
	j := openJob(uuid.New())
	j.Status = status
	if hired != nil {
		j.HiredFreelancerID = hired
	}
	if err := store.Insert(context.Background(), j); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return j
}

// ---------------------------------------------------------------------------
// Creation validation.
// ---------------------------------------------------------------------------

func TestCreateJobValidation(t *testing.T) {
	svc := NewService(newMemJobStore())
	ctx := context.Background()
	client := uuid.New()
	future := time.Now().Add(24 * time.Hour)

	j, err := svc.CreateJob(ctx, client, "Logo design", "Need a logo", "Design", 25000, future)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if j.Status != models.JobStatusOpen {
		t.Errorf("new job status: got %q, want open", j.Status)
	}
	if j.Category != "design" {
		t.Errorf("category should be normalized: got %q", j.Category)
	}

	cases := []struct {
		name     string
		title    string
		budget   int64
		deadline time.Time
	}{
		{"zero budget", "t", 0, future},
		{"negative budget", "t", -100, future},
		{"past deadline", "t", 100, time.Now().Add(-time.Hour)},
		{"empty title", "  ", 100, future},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateJob(ctx, client, tc.title, "d", "design", tc.budget, tc.deadline)
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Transition legality: every pair outside the edge set must fail, every
// listed edge must succeed given the matching current status.
// ---------------------------------------------------------------------------

func TestTransitionEdgeSet(t *testing.T) {
	all := []string{
		models.JobStatusOpen, models.JobStatusHired, models.JobStatusInProgress,
		models.JobStatusSubmitted, models.JobStatusCompleted, models.JobStatusDisputed,
		models.JobStatusCancelled,
	}
	ctx := context.Background()

	for _, from := range all {
		for _, to := range all {
			store := newMemJobStore()
			svc := NewService(store)
			freelancer := uuid.New()
			var hiredArg *uuid.UUID
			var seedHired *uuid.UUID
			if models.HiredStatus(from) {
				seedHired = &freelancer
			}
			if from == models.JobStatusOpen && to == models.JobStatusHired {
				hiredArg = &freelancer
			}
			j := jobAt(t, store, from, seedHired)

			err := svc.Transition(ctx, nil, j.ID, from, to, hiredArg)
			if legalEdge(from, to) {
				if err != nil {
					t.Errorf("%s -> %s: expected success, got %v", from, to, err)
					continue
				}
				got, _ := store.GetByID(ctx, j.ID)
				if got.Status != to {
					t.Errorf("%s -> %s: status is %q", from, to, got.Status)
				}
				if to == models.JobStatusCancelled && got.HiredFreelancerID != nil {
					t.Errorf("%s -> cancelled: hired freelancer should be cleared", from)
				}
			} else if err != ErrInvalidTransition {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

// legalEdge duplicates the lifecycle edge list independently of the
// production map so a typo there fails the test.
func legalEdge(from, to string) bool {
	switch from + ">" + to {
	case "open>hired", "open>cancelled",
		"hired>in_progress", "hired>disputed",
		"in_progress>submitted", "in_progress>disputed",
		"submitted>completed", "submitted>in_progress", "submitted>disputed",
		"disputed>completed", "disputed>cancelled":
		return true
	}
	return false
}

func TestTransitionStaleFrom(t *testing.T) {
	store := newMemJobStore()
	svc := NewService(store)
	ctx := context.Background()
	freelancer := uuid.New()
	j := jobAt(t, store, models.JobStatusOpen, nil)

	if err := svc.Transition(ctx, nil, j.ID, models.JobStatusOpen, models.JobStatusHired, &freelancer); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// Second caller still believes the job is open.
	other := uuid.New()
	err := svc.Transition(ctx, nil, j.ID, models.JobStatusOpen, models.JobStatusHired, &other)
	if err != ErrInvalidTransition {
		t.Fatalf("stale transition: expected ErrInvalidTransition, got %v", err)
	}
	got, _ := store.GetByID(ctx, j.ID)
	if got.HiredFreelancerID == nil || *got.HiredFreelancerID != freelancer {
		t.Error("first hire must win")
	}
}

func TestTransitionMissingJob(t *testing.T) {
	svc := NewService(newMemJobStore())
	err := svc.Transition(context.Background(), nil, uuid.New(), models.JobStatusOpen, models.JobStatusCancelled, nil)
	if err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestHireRequiresFreelancer(t *testing.T) {
	store := newMemJobStore()
	svc := NewService(store)
	j := jobAt(t, store, models.JobStatusOpen, nil)

	err := svc.Transition(context.Background(), nil, j.ID, models.JobStatusOpen, models.JobStatusHired, nil)
	if err != ErrInvalidTransition {
		t.Fatalf("hire without freelancer: expected ErrInvalidTransition, got %v", err)
	}

	// hiredFreelancerID is only legal on the open->hired edge.
	freelancer := uuid.New()
	k := jobAt(t, store, models.JobStatusHired, &freelancer)
	err = svc.Transition(context.Background(), nil, k.ID, models.JobStatusHired, models.JobStatusInProgress, &freelancer)
	if err != ErrInvalidTransition {
		t.Fatalf("setting freelancer off the hire edge: expected ErrInvalidTransition, got %v", err)
	}
}
