package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	errEmptyResponse    = errors.New("provider returned no rankings")
	errUnknownProposals = errors.New("provider rankings reference no known proposal")
)

// rankResponseSchema guards against malformed provider output; a response
// that fails validation degrades like any other provider failure.
const rankResponseSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["proposal_id", "rank"],
		"properties": {
			"proposal_id": {"type": "string"},
			"rank": {"type": "integer"},
			"reason": {"type": "string"}
		}
	}
}`

// AIProvider talks to the external ranking/generation service over HTTP.
type AIProvider struct {
	baseURL    string
	httpClient *http.Client
	schema     *jsonschema.Schema
}

func NewAIProvider(baseURL string, timeout time.Duration) (*AIProvider, error) {
	schema, err := jsonschema.CompileString("shaqeyso://schemas/rank.response", rankResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("compile rank response schema: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultRankTimeout
	}
	return &AIProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		schema:     schema,
	}, nil
}

type rankRequest struct {
	JobDescription string      `json:"job_description"`
	Candidates     []Candidate `json:"candidates"`
}

type rankItem struct {
	ProposalID string `json:"proposal_id"`
	Rank       int    `json:"rank"`
	Reason     string `json:"reason"`
}

func (p *AIProvider) Rank(ctx context.Context, jobDescription string, candidates []Candidate) ([]RankResult, error) {
	raw, err := p.post(ctx, "/rank", rankRequest{JobDescription: jobDescription, Candidates: candidates})
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode rank response: %w", err)
	}
	if err := p.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("rank response failed validation: %w", err)
	}

	var items []rankItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode rank items: %w", err)
	}
	out := make([]RankResult, 0, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProposalID)
		if err != nil {
			return nil, fmt.Errorf("rank response proposal id %q: %w", it.ProposalID, err)
		}
		out = append(out, RankResult{ProposalID: id, Rank: it.Rank, Reason: it.Reason})
	}
	return out, nil
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (p *AIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	raw, err := p.post(ctx, "/generate", generateRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return resp.Text, nil
}

func (p *AIProvider) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	return raw, nil
}
