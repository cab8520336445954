package profiles

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

type UpsertRequest struct {
	Skills     []string `json:"skills"`
	Bio        string   `json:"bio"`
	HourlyRate string   `json:"hourly_rate"`
}

type ProfileResponse struct {
	UserID     string   `json:"user_id"`
	Skills     []string `json:"skills"`
	Bio        string   `json:"bio"`
	HourlyRate string   `json:"hourly_rate"`
}

func toResponse(p *models.FreelancerProfile) ProfileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return ProfileResponse{
		UserID:     p.UserID.String(),
		Skills:     skills,
		Bio:        p.Bio,
		HourlyRate: models.FormatAmount(p.HourlyRateCents),
	}
}

// Upsert creates or replaces the caller's freelancer profile.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if user.Role != models.RoleFreelancer {
		http.Error(w, `{"error":"only freelancers have profiles"}`, http.StatusForbidden)
		return
	}
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	rateCents, err := models.ParseAmount(req.HourlyRate)
	if err != nil || rateCents < 0 {
		http.Error(w, `{"error":"hourly_rate must be a decimal amount"}`, http.StatusBadRequest)
		return
	}
	p, err := h.svc.UpsertProfile(r.Context(), user.ID, req.Skills, req.Bio, rateCents)
	if err != nil {
		h.log.Error("upsert profile", "user_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		h.log.Error("get profile", "user_id", userID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, `{"error":"profile not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
