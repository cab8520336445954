package matching

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type Handler struct {
	gateway *Gateway
}

func NewHandler(gateway *Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// Rank always answers 200; an empty array tells the client to fall back to
// the unranked proposal list.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid job id"}`, http.StatusBadRequest)
		return
	}
	ranked := h.gateway.RankProposals(r.Context(), jobID)
	if ranked == nil {
		ranked = []RankedCandidate{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ranked)
}
