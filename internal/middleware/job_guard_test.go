package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// injectUser wraps a handler to pre-set the user in context, simulating what
// JWTAuth would do upstream.
func injectUser(u *User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// guard200 proves the middleware let the request through.
var guard200 = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// 1. Valid posting -> 200 OK, budget available downstream
// ---------------------------------------------------------------------------

func TestJobGuard_ValidPosting(t *testing.T) {
	var seen int64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BudgetFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := injectUser(&User{ID: uuid.New(), Role: "client"}, JobGuard()(inner))

	body := `{"title":"Logo design","budget":"150.00","category":"design"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen != 15000 {
		t.Errorf("expected budget 15000 cents in context, got %d", seen)
	}
}

// ---------------------------------------------------------------------------
// 2. Non-positive or malformed budget -> 400
// ---------------------------------------------------------------------------

func TestJobGuard_BadBudget(t *testing.T) {
	handler := injectUser(&User{ID: uuid.New(), Role: "client"}, JobGuard()(guard200))

	for _, body := range []string{
		`{"budget":"0.00","category":"design"}`,
		`{"budget":"-5.00","category":"design"}`,
		`{"budget":"abc","category":"design"}`,
		`{"category":"design"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

// ---------------------------------------------------------------------------
// 3. Unknown category -> 400
// ---------------------------------------------------------------------------

func TestJobGuard_UnknownCategory(t *testing.T) {
	handler := injectUser(&User{ID: uuid.New(), Role: "client"}, JobGuard()(guard200))

	body := `{"budget":"50.00","category":"teleportation"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not allowed") {
		t.Errorf("expected category-not-allowed error, got: %s", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// 4. No authenticated user -> 401
// ---------------------------------------------------------------------------

func TestJobGuard_Unauthenticated(t *testing.T) {
	handler := JobGuard()(guard200)

	body := `{"budget":"50.00","category":"design"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
