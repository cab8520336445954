package proposals

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/middleware"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type SubmitRequest struct {
	CoverLetter string `json:"cover_letter"`
	Rate        string `json:"rate"`
}

type ProposalResponse struct {
	ID           string `json:"id"`
	JobID        string `json:"job_id"`
	FreelancerID string `json:"freelancer_id"`
	CoverLetter  string `json:"cover_letter"`
	Rate         string `json:"rate"`
	SubmittedAt  string `json:"submitted_at"`
}

func toResponse(p *models.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:           p.ID.String(),
		JobID:        p.JobID.String(),
		FreelancerID: p.FreelancerID.String(),
		CoverLetter:  p.CoverLetter,
		Rate:         models.FormatAmount(p.RateCents),
		SubmittedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if user.Role != models.RoleFreelancer {
		http.Error(w, `{"error":"only freelancers can submit proposals"}`, http.StatusForbidden)
		return
	}
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	rateCents, err := models.ParseAmount(req.Rate)
	if err != nil {
		http.Error(w, `{"error":"rate must be a decimal amount"}`, http.StatusBadRequest)
		return
	}
	p, err := h.svc.Submit(r.Context(), jobID, user.ID, req.CoverLetter, rateCents)
	if err != nil {
		switch {
		case errors.Is(err, ErrJobNotOpen):
			http.Error(w, `{"error":"job is no longer accepting proposals"}`, http.StatusConflict)
		case errors.Is(err, ErrInvalidProposal):
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		case errors.Is(err, jobs.ErrJobNotFound):
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
		default:
			h.log.Error("submit proposal", "job_id", jobID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	list, err := h.svc.ListByJob(r.Context(), jobID)
	if err != nil {
		h.log.Error("list proposals", "job_id", jobID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]ProposalResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
