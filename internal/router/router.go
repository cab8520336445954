package router

import (
	"net/http"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/auth"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/events"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/jobs"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/ledger"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/matching"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/middleware"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/orchestrator"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/profiles"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/proposals"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	Jobs      *jobs.Handler
	Proposals *proposals.Handler
	Lifecycle *orchestrator.Handler
	Ledger    *ledger.Handler
	Profiles  *profiles.Handler
	Matching  *matching.Handler
	Events    *events.Handler
}

// New returns an http.Handler that serves the API under /api/v1.
// Everything except register and login sits behind JWT auth.
func New(h Handlers, validator middleware.TokenValidator) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	authn := middleware.JWTAuth(validator)
	jobGuard := middleware.JobGuard()
	protected := func(fn http.HandlerFunc) http.Handler { return authn(fn) }

	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)
	mux.Handle("GET "+base+"/account/me", protected(h.Auth.Me))

	mux.Handle("POST "+base+"/jobs", authn(jobGuard(http.HandlerFunc(h.Jobs.CreateJob))))
	mux.Handle("GET "+base+"/jobs", protected(h.Jobs.ListJobs))
	mux.Handle("GET "+base+"/jobs/{id}", protected(h.Jobs.GetJob))

	mux.Handle("POST "+base+"/jobs/{id}/proposals", protected(h.Proposals.Submit))
	mux.Handle("GET "+base+"/jobs/{id}/proposals", protected(h.Proposals.ListByJob))
	mux.Handle("GET "+base+"/jobs/{id}/ranking", protected(h.Matching.Rank))

	mux.Handle("POST "+base+"/jobs/{id}/hire", protected(h.Lifecycle.Hire))
	mux.Handle("POST "+base+"/jobs/{id}/start", protected(h.Lifecycle.Start))
	mux.Handle("POST "+base+"/jobs/{id}/submit", protected(h.Lifecycle.SubmitDeliverable))
	mux.Handle("POST "+base+"/jobs/{id}/approve", protected(h.Lifecycle.Approve))
	mux.Handle("POST "+base+"/jobs/{id}/reject", protected(h.Lifecycle.RejectSubmission))
	mux.Handle("POST "+base+"/jobs/{id}/cancel", protected(h.Lifecycle.Cancel))
	mux.Handle("POST "+base+"/jobs/{id}/dispute", protected(h.Lifecycle.Dispute))
	mux.Handle("POST "+base+"/jobs/{id}/resolve", protected(h.Lifecycle.ResolveDispute))

	mux.Handle("GET "+base+"/wallet/balance", protected(h.Ledger.GetBalance))
	mux.Handle("GET "+base+"/wallet/transactions", protected(h.Ledger.ListTransactions))
	mux.Handle("POST "+base+"/wallet/top-up", protected(h.Ledger.TopUp))
	mux.Handle("POST "+base+"/wallet/withdraw", protected(h.Ledger.Withdraw))

	mux.Handle("PUT "+base+"/profiles/me", protected(h.Profiles.Upsert))
	mux.Handle("GET "+base+"/profiles/{id}", protected(h.Profiles.Get))

	mux.Handle("GET "+base+"/notifications", protected(h.Events.ListNotifications))

	return mux
}
