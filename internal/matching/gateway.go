// Package matching ranks a job's proposals through an external AI provider.
// Ranking is an enhancement, not a correctness-critical path: every failure
// on this path degrades to an empty result and the caller falls back to the
// raw proposal list. Nothing here writes state or holds entity locks across
// the provider round-trip.
package matching

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/metrics"
	"github.com/Abdulkadirhassansaid/shaqeyso-sub000/internal/models"
)

// DefaultRankTimeout bounds the provider round-trip.
const DefaultRankTimeout = 10 * time.Second

// RankedCandidate is valid only for the requesting session and is never
// persisted or cached beyond the request.
type RankedCandidate struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Rank       int       `json:"rank"`
	Reason     string    `json:"reason"`
}

// Candidate is the provider input assembled per proposal.
type Candidate struct {
	ProposalID  uuid.UUID `json:"proposal_id"`
	CoverLetter string    `json:"cover_letter"`
	ProfileText string    `json:"profile_text"`
}

// RankResult is one scored entry from the provider.
type RankResult struct {
	ProposalID uuid.UUID
	Rank       int
	Reason     string
}

// GenerationResult is the tagged outcome of a text-generation call. Provider
// failure surfaces as Available=false, never as an error.
type GenerationResult struct {
	Text      string
	Available bool
}

// Provider is the external AI scoring/generation service.
type Provider interface {
	Rank(ctx context.Context, jobDescription string, candidates []Candidate) ([]RankResult, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// JobGetter is the read-only slice of the job store the gateway uses.
type JobGetter interface {
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
}

// ProposalLister lists a job's proposals in submission order.
type ProposalLister interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Proposal, error)
}

// ProfileTexts supplies the freelancer profile text (skills + bio) that
// accompanies each cover letter.
type ProfileTexts interface {
	ProfileText(ctx context.Context, freelancerID uuid.UUID) (string, error)
}

type Gateway struct {
	jobs      JobGetter
	proposals ProposalLister
	profiles  ProfileTexts
	provider  Provider
	timeout   time.Duration
	log       *slog.Logger
}

func NewGateway(jobs JobGetter, proposals ProposalLister, profiles ProfileTexts, provider Provider, timeout time.Duration, log *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultRankTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		jobs:      jobs,
		proposals: proposals,
		profiles:  profiles,
		provider:  provider,
		timeout:   timeout,
		log:       log,
	}
}

// RankProposals returns the provider's ranking of the job's proposals, or an
// empty slice on any failure. It never returns an error: ranking failures
// are silent by contract.
func (g *Gateway) RankProposals(ctx context.Context, jobID uuid.UUID) []RankedCandidate {
	metrics.RankingRequests.Inc()

	job, err := g.jobs.GetJob(ctx, jobID)
	if err != nil {
		return g.degrade(jobID, "load job", err)
	}
	props, err := g.proposals.ListByJob(ctx, jobID)
	if err != nil {
		return g.degrade(jobID, "load proposals", err)
	}
	if len(props) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(props))
	for _, p := range props {
		text, err := g.profiles.ProfileText(ctx, p.FreelancerID)
		if err != nil {
			// Missing profile text is not fatal; rank on the letter alone.
			g.log.Debug("profile text unavailable", "freelancer_id", p.FreelancerID, "error", err)
			text = ""
		}
		candidates = append(candidates, Candidate{
			ProposalID:  p.ID,
			CoverLetter: p.CoverLetter,
			ProfileText: text,
		})
	}

	rankCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	results, err := g.provider.Rank(rankCtx, job.Description, candidates)
	if err != nil {
		return g.degrade(jobID, "provider rank", err)
	}
	if len(results) == 0 {
		return g.degrade(jobID, "provider rank", errEmptyResponse)
	}

	byProposal := make(map[uuid.UUID]RankResult, len(results))
	for _, res := range results {
		byProposal[res.ProposalID] = res
	}

	// Walk proposals in submission order so equal ranks keep that order
	// after the stable sort.
	ranked := make([]RankedCandidate, 0, len(props))
	for _, p := range props {
		res, ok := byProposal[p.ID]
		if !ok {
			continue
		}
		ranked = append(ranked, RankedCandidate{ProposalID: p.ID, Rank: res.Rank, Reason: res.Reason})
	}
	if len(ranked) == 0 {
		return g.degrade(jobID, "provider rank", errUnknownProposals)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	return ranked
}

// GenerateText wraps the provider's generation endpoint for collaborators
// (bio/description/proposal assist). Failures become Available=false so the
// caller can show an "assistant unavailable" state without error handling.
func (g *Gateway) GenerateText(ctx context.Context, prompt string) GenerationResult {
	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	text, err := g.provider.Generate(genCtx, prompt)
	if err != nil || text == "" {
		g.log.Warn("generation unavailable", "error", err)
		return GenerationResult{}
	}
	return GenerationResult{Text: text, Available: true}
}

func (g *Gateway) degrade(jobID uuid.UUID, stage string, err error) []RankedCandidate {
	metrics.RankingFailures.Inc()
	g.log.Warn("ranking degraded to unranked fallback", "job_id", jobID, "stage", stage, "error", err)
	return nil
}
