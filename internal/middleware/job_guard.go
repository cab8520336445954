package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

const ctxPostingKey contextKey = "parsed_posting"

// AllowedCategories is the set of job categories the platform supports.
// JobGuard rejects postings with unknown categories early.
var AllowedCategories = map[string]bool{
	"design":      true,
	"development": true,
	"writing":     true,
	"marketing":   true,
	"translation": true,
	"other":       true,
}

// parsedPosting is stored in context so the handler can read the validated
// budget without re-parsing the body.
type parsedPosting struct {
	Budget   string `json:"budget"`
	Category string `json:"category"`
}

// BudgetFromCtx returns the budget in cents parsed by JobGuard, or 0 if unset.
func BudgetFromCtx(ctx context.Context) int64 {
	if p, ok := ctx.Value(ctxPostingKey).(*parsedPosting); ok {
		cents, err := models.ParseAmount(p.Budget)
		if err == nil {
			return cents
		}
	}
	return 0
}

// JobGuard validates the budget and category of a job posting before the
// handler runs. Reads the body to peek at the fields, then replaces r.Body
// so the handler can re-read it.
func JobGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var peek parsedPosting
			if err := json.Unmarshal(bodyBytes, &peek); err != nil {
				http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
				return
			}
			cents, err := models.ParseAmount(peek.Budget)
			if err != nil || cents <= 0 {
				http.Error(w, `{"error":"budget must be a positive decimal amount"}`, http.StatusBadRequest)
				return
			}
			if peek.Category != "" && !AllowedCategories[peek.Category] {
				http.Error(w, fmt.Sprintf(`{"error":"category %q is not allowed"}`, peek.Category), http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), ctxPostingKey, &peek)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
