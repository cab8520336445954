package orchestrator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/ledger"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/middleware"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

type Handler struct {
	svc    Service
	jobSvc jobs.Service
	log    *slog.Logger
}

func NewHandler(svc Service, jobSvc jobs.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, jobSvc: jobSvc, log: log}
}

type HireRequest struct {
	FreelancerID string `json:"freelancer_id"`
}

type SubmitDeliverableRequest struct {
	Payload json.RawMessage `json:"payload"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

func (h *Handler) Hire(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, models.RoleClient)
	if !ok {
		return
	}
	var req HireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	freelancerID, err := uuid.Parse(req.FreelancerID)
	if err != nil {
		http.Error(w, `{"error":"invalid freelancer id"}`, http.StatusBadRequest)
		return
	}
	job, err := h.svc.Hire(r.Context(), user.ID, jobID, freelancerID)
	if err != nil {
		h.writeError(w, "hire", jobID, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs.ToJobResponse(job))
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, "")
	if !ok {
		return
	}
	if err := h.svc.Start(r.Context(), user.ID, jobID); err != nil {
		h.writeError(w, "start", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) SubmitDeliverable(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, models.RoleFreelancer)
	if !ok {
		return
	}
	var req SubmitDeliverableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.SubmitDeliverable(r.Context(), user.ID, jobID, req.Payload); err != nil {
		h.writeError(w, "submit deliverable", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, models.RoleClient)
	if !ok {
		return
	}
	if err := h.svc.Approve(r.Context(), user.ID, jobID); err != nil {
		h.writeError(w, "approve", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, models.RoleClient)
	if !ok {
		return
	}
	if err := h.svc.RejectSubmission(r.Context(), user.ID, jobID); err != nil {
		h.writeError(w, "reject submission", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, models.RoleClient)
	if !ok {
		return
	}
	if err := h.svc.Cancel(r.Context(), user.ID, jobID); err != nil {
		h.writeError(w, "cancel", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) Dispute(w http.ResponseWriter, r *http.Request) {
	user, jobID, ok := h.requireRole(w, r, "")
	if !ok {
		return
	}
	if err := h.svc.Dispute(r.Context(), user.ID, jobID); err != nil {
		h.writeError(w, "dispute", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	_, jobID, ok := h.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Resolution != ResolutionRelease && req.Resolution != ResolutionRefund {
		http.Error(w, `{"error":"resolution must be release or refund"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.ResolveDispute(r.Context(), jobID, req.Resolution); err != nil {
		h.writeError(w, "resolve dispute", jobID, err)
		return
	}
	h.writeJob(w, r, jobID)
}

// requireRole authenticates, checks the role (empty role means any), and
// parses the job id from the path.
func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, role string) (*middleware.User, uuid.UUID, bool) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil, uuid.Nil, false
	}
	if role != "" && user.Role != role {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return nil, uuid.Nil, false
	}
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return nil, uuid.Nil, false
	}
	return user, jobID, true
}

func (h *Handler) writeJob(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	job, err := h.jobSvc.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, "reload job", jobID, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs.ToJobResponse(job))
}

func (h *Handler) writeError(w http.ResponseWriter, op string, jobID uuid.UUID, err error) {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrProposalNotFound):
		http.Error(w, `{"error":"no proposal from this freelancer"}`, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	case errors.Is(err, jobs.ErrInvalidTransition):
		http.Error(w, `{"error":"job is not in a state that allows this action"}`, http.StatusConflict)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		http.Error(w, `{"error":"insufficient funds to cover the job budget"}`, http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrDuplicateHold),
		errors.Is(err, ledger.ErrHoldNotFound),
		errors.Is(err, ledger.ErrInvalidHoldState):
		http.Error(w, `{"error":"escrow state does not allow this action"}`, http.StatusConflict)
	default:
		h.log.Error(op+" failed", "job_id", jobID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
