package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

type memNotifier struct {
	inserted []*models.Notification
}

func (m *memNotifier) Insert(_ context.Context, n *models.Notification) error {
	cp := *n
	m.inserted = append(m.inserted, &cp)
	return nil
}

func TestJobEventArgsQueueKind(t *testing.T) {
	// The river queue kind is fixed; the lifecycle event travels in the
	// Event field and must not leak into the queue routing.
	args := JobEventArgs{Event: models.NotifyHired}
	if got := args.Kind(); got != "job_event" {
		t.Fatalf("queue kind: got %q, want job_event", got)
	}
	if args.Event != models.NotifyHired {
		t.Fatalf("event: got %q, want %q", args.Event, models.NotifyHired)
	}
}

func TestJobEventWorkerNotifiesBothParties(t *testing.T) {
	notifier := &memNotifier{}
	w := NewJobEventWorker(notifier, nil)

	client, freelancer := uuid.New(), uuid.New()
	err := w.Work(context.Background(), &river.Job[JobEventArgs]{
		Args: JobEventArgs{
			JobID:        uuid.New(),
			JobTitle:     "Logo design",
			Event:        models.NotifyHired,
			ClientID:     client,
			FreelancerID: &freelancer,
		},
	})
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if len(notifier.inserted) != 2 {
		t.Fatalf("notifications: got %d, want 2", len(notifier.inserted))
	}
	if notifier.inserted[0].UserID != client || notifier.inserted[1].UserID != freelancer {
		t.Errorf("wrong recipients: %+v", notifier.inserted)
	}
	for _, n := range notifier.inserted {
		if n.Kind != models.NotifyHired || n.Message == "" {
			t.Errorf("bad notification: %+v", n)
		}
	}
}

func TestJobEventWorkerClientOnlyBeforeHire(t *testing.T) {
	notifier := &memNotifier{}
	w := NewJobEventWorker(notifier, nil)

	err := w.Work(context.Background(), &river.Job[JobEventArgs]{
		Args: JobEventArgs{
			JobID:    uuid.New(),
			JobTitle: "Logo design",
			Event:    models.NotifyCancelled,
			ClientID: uuid.New(),
		},
	})
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if len(notifier.inserted) != 1 {
		t.Errorf("cancellation of an open job notifies the client only, got %d", len(notifier.inserted))
	}
}
