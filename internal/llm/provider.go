package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Provider defines the interface for generative assessment backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Assess asks the model to judge the credibility of extracted page text
	Assess(ctx context.Context, req AssessRequest) (*AssessResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AssessRequest contains the input for a content assessment
type AssessRequest struct {
	// Title is the page title, if extraction found one
	Title string

	// Text is the extracted plain text of the page (already truncated by
	// the caller to the configured character budget)
	Text string

	// Model overrides the configured model for this call
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AssessResponse is the model's structured judgment of the content
type AssessResponse struct {
	// RiskEstimate is the model's concern level, 0 (none) to 1 (maximal)
	RiskEstimate float64

	// Summary is a neutral one-sentence summary of the content
	Summary string

	// IssueTags are drawn from the fixed vocabulary in the prompt
	IssueTags []string

	// Rationale explains the estimate
	Rationale string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// assessmentSystemPrompt instructs the model to answer with strict JSON.
// The issue-tag vocabulary is fixed so downstream flags stay comparable
// across providers and models.
const assessmentSystemPrompt = `You assess the credibility of web page text. Respond with a single JSON object that strictly follows this structure:
{
  "risk_estimate": number (0.0 to 1.0, where 0.0 is fully credible and 1.0 is maximally concerning),
  "summary": "string (a neutral, one-sentence summary of the content)",
  "issue_tags": ["string", ...],
  "rationale": "string (a brief explanation of your estimate and tags)"
}

The only allowed issue_tags values are:
- "emotionally_charged": the text uses emotionally charged or inflammatory language.
- "logical_fallacy": the text contains logical fallacies.
- "no_trusted_sources": the text does not cite any trusted or verifiable sources.
- "sensationalist_title": the title is clickbait or sensationalist.
- "opinion_as_fact": the text presents opinions as established facts.
- "vague_claims": the claims made are vague or lack specific evidence.

Do not include any text outside the JSON object.`

// BuildPrompt constructs the user prompt for one assessment
func BuildPrompt(req AssessRequest) string {
	var b strings.Builder
	if req.Title != "" {
		b.WriteString("Title: ")
		b.WriteString(req.Title)
		b.WriteString("\n\n")
	}
	b.WriteString("Content:\n")
	b.WriteString(req.Text)
	return b.String()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type assessmentPayload struct {
	RiskEstimate *float64 `json:"risk_estimate"`
	Summary      string   `json:"summary"`
	IssueTags    []string `json:"issue_tags"`
	Rationale    string   `json:"rationale"`
}

// ParseAssessment extracts and validates the JSON object from a model
// completion. Models occasionally wrap the JSON in prose or code fences;
// the first object found wins.
func ParseAssessment(completion string) (*AssessResponse, error) {
	raw := jsonObjectPattern.FindString(completion)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var payload assessmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}

	if payload.RiskEstimate == nil {
		return nil, fmt.Errorf("assessment is missing risk_estimate")
	}

	risk := *payload.RiskEstimate
	if risk < 0 {
		risk = 0
	}
	if risk > 1 {
		risk = 1
	}

	return &AssessResponse{
		RiskEstimate: risk,
		Summary:      strings.TrimSpace(payload.Summary),
		IssueTags:    payload.IssueTags,
		Rationale:    strings.TrimSpace(payload.Rationale),
	}, nil
}
