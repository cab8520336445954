package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/middleware"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// Handler serves the wallet endpoints. Amounts cross the boundary as decimal
// strings; cents never leak into request bodies.
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

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

type TopUpRequest struct {
	Amount         string `json:"amount"`
	SourceMethodID string `json:"source_method_id"`
}

type WithdrawRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	balance, err := h.svc.GetBalance(r.Context(), user.ID)
	if err != nil {
		h.log.Error("get balance", "user_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Balance: models.FormatAmount(balance)})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	txs, err := h.svc.ListTransactions(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list transactions", "user_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionResponse{
			ID:          t.ID.String(),
			Description: t.Description,
			Amount:      models.FormatAmount(t.AmountCents),
			Status:      t.Status,
			Date:        t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	cents, err := models.ParseAmount(req.Amount)
	if err != nil || cents <= 0 {
		http.Error(w, `{"error":"amount must be a positive decimal"}`, http.StatusBadRequest)
		return
	}
	if req.SourceMethodID == "" {
		http.Error(w, `{"error":"source_method_id is required"}`, http.StatusBadRequest)
		return
	}
	t, err := h.svc.TopUp(r.Context(), user.ID, cents, req.SourceMethodID)
	if err != nil {
		h.log.Error("top-up", "user_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, TransactionResponse{
		ID:          t.ID.String(),
		Description: t.Description,
		Amount:      models.FormatAmount(t.AmountCents),
		Status:      t.Status,
		Date:        t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	cents, err := models.ParseAmount(req.Amount)
	if err != nil || cents <= 0 {
		http.Error(w, `{"error":"amount must be a positive decimal"}`, http.StatusBadRequest)
		return
	}
	t, err := h.svc.Withdraw(r.Context(), user.ID, cents)
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			http.Error(w, `{"error":"insufficient funds"}`, http.StatusUnprocessableEntity)
			return
		}
		h.log.Error("withdraw", "user_id", user.ID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, TransactionResponse{
		ID:          t.ID.String(),
		Description: t.Description,
		Amount:      models.FormatAmount(t.AmountCents),
		Status:      t.Status,
		Date:        t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
