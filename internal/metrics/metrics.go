// Package metrics holds the Prometheus instruments for the marketplace
// engine. Counters are package-level promauto vars registered on the default
// registry; cmd/api exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobTransitions counts successful job status transitions by edge.
var JobTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shaqeyso_job_transitions_total",
	Help: "Successful job status transitions, labeled by (from, to).",
}, []string{"from", "to"})

// LedgerEntries counts appended ledger transactions by kind.
var LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shaqeyso_ledger_entries_total",
	Help: "Ledger transactions appended, labeled by entry kind.",
}, []string{"kind"})

// Ledger entry kinds.
const (
	KindTopUp         = "top_up"
	KindWithdrawal    = "withdrawal"
	KindEscrowHold    = "escrow_hold"
	KindEscrowRelease = "escrow_release"
	KindEscrowRefund  = "escrow_refund"
	KindOther         = "other"
)

// RankingRequests counts proposal-ranking attempts.
var RankingRequests = promauto.NewCounter(prometheus.CounterOpts{
	Name: "shaqeyso_ranking_requests_total",
	Help: "Proposal ranking requests made to the AI provider.",
})

// RankingFailures counts ranking attempts that degraded to an empty result.
var RankingFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "shaqeyso_ranking_failures_total",
	Help: "Ranking requests that failed and returned the unranked fallback.",
})
