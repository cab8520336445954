// Package events delivers job lifecycle notifications through the river
// queue. Events are enqueued in the same transaction as the state change
// that caused them, so a notification never refers to a write that rolled
// back.
package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// JobEventArgs describes one lifecycle event. Event is the notification kind
// (models.Notify*); FreelancerID is nil for events raised before a freelancer
// is attached (cancellation of an open job).
type JobEventArgs struct {
	JobID        uuid.UUID  `json:"job_id"`
	JobTitle     string     `json:"job_title"`
	Event        string     `json:"kind"`
	ClientID     uuid.UUID  `json:"client_id"`
	FreelancerID *uuid.UUID `json:"freelancer_id,omitempty"`
}

func (JobEventArgs) Kind() string { return "job_event" }

// Notifier persists notifications for later retrieval.
type Notifier interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type JobEventWorker struct {
	river.WorkerDefaults[JobEventArgs]
	notifier Notifier
	log      *slog.Logger
}

func NewJobEventWorker(notifier Notifier, log *slog.Logger) *JobEventWorker {
	if log == nil {
		log = slog.Default()
	}
	return &JobEventWorker{notifier: notifier, log: log}
}

func (w *JobEventWorker) Work(ctx context.Context, job *river.Job[JobEventArgs]) error {
	args := job.Args
	for _, userID := range recipients(args) {
		n := &models.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			JobID:   args.JobID,
			Kind:    args.Event,
			Message: message(args),
		}
		if err := w.notifier.Insert(ctx, n); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	w.log.Info("job event delivered", "job_id", args.JobID, "kind", args.Event)
	return nil
}

// recipients returns everyone the event concerns: always the client, plus
// the freelancer once one is attached.
func recipients(args JobEventArgs) []uuid.UUID {
	out := []uuid.UUID{args.ClientID}
	if args.FreelancerID != nil && *args.FreelancerID != args.ClientID {
		out = append(out, *args.FreelancerID)
	}
	return out
}

func message(args JobEventArgs) string {
	switch args.Event {
	case models.NotifyHired:
		return fmt.Sprintf("A freelancer was hired for %q.", args.JobTitle)
	case models.NotifyStarted:
		return fmt.Sprintf("Work on %q has started.", args.JobTitle)
	case models.NotifySubmitted:
		return fmt.Sprintf("A deliverable was submitted for %q.", args.JobTitle)
	case models.NotifyCompleted:
		return fmt.Sprintf("%q was completed and payment released.", args.JobTitle)
	case models.NotifyRejected:
		return fmt.Sprintf("The deliverable for %q was sent back for revision.", args.JobTitle)
	case models.NotifyCancelled:
		return fmt.Sprintf("%q was cancelled.", args.JobTitle)
	case models.NotifyDisputed:
		return fmt.Sprintf("%q is in dispute.", args.JobTitle)
	default:
		return fmt.Sprintf("%q changed state.", args.JobTitle)
	}
}
