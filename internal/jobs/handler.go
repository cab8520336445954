package jobs

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

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

type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Budget      string `json:"budget"`
	Deadline    string `json:"deadline"`
}

type JobResponse struct {
	ID                string `json:"id"`
	ClientID          string `json:"client_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	Budget            string `json:"budget"`
	Deadline          string `json:"deadline"`
	Status            string `json:"status"`
	HiredFreelancerID string `json:"hired_freelancer_id,omitempty"`
}

func ToJobResponse(j *models.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID.String(),
		ClientID:    j.ClientID.String(),
		Title:       j.Title,
		Description: j.Description,
		Category:    j.Category,
		Budget:      models.FormatAmount(j.BudgetCents),
		Deadline:    j.Deadline.Format(time.RFC3339),
		Status:      j.Status,
	}
	if j.HiredFreelancerID != nil {
		resp.HiredFreelancerID = j.HiredFreelancerID.String()
	}
	return resp
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if user.Role != models.RoleClient {
		http.Error(w, `{"error":"only clients can post jobs"}`, http.StatusForbidden)
		return
	}
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	// The posting guard already parsed and validated the budget; parse here
	// only when the handler is mounted without it.
	budgetCents := middleware.BudgetFromCtx(r.Context())
	if budgetCents == 0 {
		var err error
		budgetCents, err = models.ParseAmount(req.Budget)
		if err != nil {
			http.Error(w, `{"error":"budget must be a decimal amount"}`, http.StatusBadRequest)
			return
		}
	}
	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		http.Error(w, `{"error":"deadline must be RFC3339"}`, http.StatusBadRequest)
		return
	}
	job, err := h.svc.CreateJob(r.Context(), user.ID, req.Title, req.Description, req.Category, budgetCents, deadline)
	if err != nil {
		if errors.Is(err, ErrInvalidJob) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("create job", "client_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToJobResponse(job))
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, `{"error":"job not found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("get job", "job_id", jobID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToJobResponse(job))
}

// ListJobs returns the caller's jobs with ?mine=1, otherwise the open board.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var (
		list []*models.Job
		err  error
	)
	if r.URL.Query().Get("mine") == "1" {
		list, err = h.svc.ListByClient(r.Context(), user.ID)
	} else {
		list, err = h.svc.ListOpen(r.Context())
	}
	if err != nil {
		h.log.Error("list jobs", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]JobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, ToJobResponse(j))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
