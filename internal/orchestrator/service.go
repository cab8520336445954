// Package orchestrator coordinates the job lifecycle operations that touch
// more than one domain: every hire, approval, and dispute resolution moves
// job status and escrow money in a single database transaction.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/events"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/ledger"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

var (
	// ErrForbidden is returned when the actor is not the party allowed to
	// perform the operation on this job.
	ErrForbidden = errors.New("actor may not perform this action on the job")
	// ErrProposalNotFound is returned when hiring a freelancer who never
	// submitted a proposal for the job.
	ErrProposalNotFound = errors.New("no proposal from this freelancer for the job")
)

// ProposalGetter resolves the proposal a hire refers to.
type ProposalGetter interface {
	GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID uuid.UUID) (*models.Proposal, error)
}

// TxRunner owns the transaction every lifecycle operation runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// InsertJobEventTxFunc enqueues a job event within the given transaction.
// Provided by main using river.Client.InsertTx.
type InsertJobEventTxFunc func(ctx context.Context, tx pgx.Tx, args events.JobEventArgs) error

type Service interface {
	Hire(ctx context.Context, clientID, jobID, freelancerID uuid.UUID) (*models.Job, error)
	Start(ctx context.Context, actorID, jobID uuid.UUID) error
	SubmitDeliverable(ctx context.Context, freelancerID, jobID uuid.UUID, payload json.RawMessage) error
	Approve(ctx context.Context, clientID, jobID uuid.UUID) error
	RejectSubmission(ctx context.Context, clientID, jobID uuid.UUID) error
	Cancel(ctx context.Context, clientID, jobID uuid.UUID) error
	Dispute(ctx context.Context, actorID, jobID uuid.UUID) error
	ResolveDispute(ctx context.Context, jobID uuid.UUID, resolution string) error
}

type service struct {
	jobs           jobs.Service
	proposals      ProposalGetter
	ledger         ledger.Service
	txRunner       TxRunner
	insertJobEvent InsertJobEventTxFunc
}

// NewService creates the lifecycle orchestrator. insertJobEvent is typically
// a closure over river.Client.InsertTx; a no-op is substituted when nil so
// tests can skip the queue.
func NewService(jobSvc jobs.Service, proposals ProposalGetter, ledgerSvc ledger.Service, txRunner TxRunner, insertJobEvent InsertJobEventTxFunc) Service {
	if insertJobEvent == nil {
		insertJobEvent = func(context.Context, pgx.Tx, events.JobEventArgs) error { return nil }
	}
	return &service{
		jobs:           jobSvc,
		proposals:      proposals,
		ledger:         ledgerSvc,
		txRunner:       txRunner,
		insertJobEvent: insertJobEvent,
	}
}

var _ Service = (*service)(nil)

// Hire places the escrow hold before moving the job to hired, both inside
// one transaction. If the client cannot fund the full budget the transaction
// rolls back and the job stays open.
func (s *service) Hire(ctx context.Context, clientID, jobID, freelancerID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, ErrForbidden
	}
	p, err := s.proposals.GetByJobAndFreelancer(ctx, jobID, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}

	err = s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.ledger.CreateHold(ctx, tx, jobID, clientID, freelancerID, job.BudgetCents); err != nil {
			return err
		}
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusOpen, models.JobStatusHired, &freelancerID); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, events.JobEventArgs{
			JobID:        jobID,
			JobTitle:     job.Title,
			Event:        models.NotifyHired,
			ClientID:     clientID,
			FreelancerID: &freelancerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.jobs.GetJob(ctx, jobID)
}

// Start is the explicit acknowledgment that work began. Either party of the
// engagement may make it.
func (s *service) Start(ctx context.Context, actorID, jobID uuid.UUID) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	party := job.ClientID == actorID ||
		(job.HiredFreelancerID != nil && *job.HiredFreelancerID == actorID)
	if !party {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusHired, models.JobStatusInProgress, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifyStarted))
	})
}

func (s *service) SubmitDeliverable(ctx context.Context, freelancerID, jobID uuid.UUID, payload json.RawMessage) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.HiredFreelancerID == nil || *job.HiredFreelancerID != freelancerID {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusInProgress, models.JobStatusSubmitted, nil); err != nil {
			return err
		}
		if err := s.jobs.SetDeliverable(ctx, tx, jobID, payload); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifySubmitted))
	})
}

// Approve releases the escrow hold to the freelancer and completes the job.
// The ledger write happens first so a crash between the two leaves a
// released hold that the retried approval treats as a no-op.
func (s *service) Approve(ctx context.Context, clientID, jobID uuid.UUID) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.ledger.ReleaseHold(ctx, tx, jobID); err != nil {
			return err
		}
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusSubmitted, models.JobStatusCompleted, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifyCompleted))
	})
}

// RejectSubmission sends a submitted deliverable back for revision. The hold
// stays in place.
func (s *service) RejectSubmission(ctx context.Context, clientID, jobID uuid.UUID) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusSubmitted, models.JobStatusInProgress, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifyRejected))
	})
}

// Cancel withdraws an open job. There is no hold yet at this point, so only
// the status moves.
func (s *service) Cancel(ctx context.Context, clientID, jobID uuid.UUID) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusOpen, models.JobStatusCancelled, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifyCancelled))
	})
}

// Dispute freezes the job; either party can raise it from any active state.
func (s *service) Dispute(ctx context.Context, actorID, jobID uuid.UUID) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	party := job.ClientID == actorID ||
		(job.HiredFreelancerID != nil && *job.HiredFreelancerID == actorID)
	if !party {
		return ErrForbidden
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.jobs.Transition(ctx, tx, jobID, job.Status, models.JobStatusDisputed, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, models.NotifyDisputed))
	})
}

// Dispute resolutions.
const (
	ResolutionRelease = "release"
	ResolutionRefund  = "refund"
)

// ResolveDispute settles a disputed job. Release pays the freelancer and
// completes the job; refund returns the money to the client and cancels it.
// Caller is responsible for the admin-role check.
func (s *service) ResolveDispute(ctx context.Context, jobID uuid.UUID, resolution string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	return s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		var kind, to string
		switch resolution {
		case ResolutionRelease:
			if err := s.ledger.ReleaseHold(ctx, tx, jobID); err != nil {
				return err
			}
			kind, to = models.NotifyCompleted, models.JobStatusCompleted
		case ResolutionRefund:
			if err := s.ledger.RefundHold(ctx, tx, jobID); err != nil {
				return err
			}
			kind, to = models.NotifyCancelled, models.JobStatusCancelled
		default:
			return fmt.Errorf("unknown resolution %q", resolution)
		}
		if err := s.jobs.Transition(ctx, tx, jobID, models.JobStatusDisputed, to, nil); err != nil {
			return err
		}
		return s.insertJobEvent(ctx, tx, s.event(job, kind))
	})
}

func (s *service) event(job *models.Job, kind string) events.JobEventArgs {
	return events.JobEventArgs{
		JobID:        job.ID,
		JobTitle:     job.Title,
		Event:        kind,
		ClientID:     job.ClientID,
		FreelancerID: job.HiredFreelancerID,
	}
}
