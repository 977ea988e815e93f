package source

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/veracitylab/veracity/internal/llm"
	"github.com/veracitylab/veracity/internal/model"
)

// AssessAdapter asks a generative model to judge extracted page text.
// It is the only adapter that needs page content; without usable text
// it reports Unavailable instead of guessing from the URL alone.
type AssessAdapter struct {
	provider llm.Provider
	config   model.LLMConfig
}

// NewAssessAdapter creates a content assessment adapter. A nil provider
// is allowed and makes the adapter permanently unavailable.
func NewAssessAdapter(provider llm.Provider, config model.LLMConfig) *AssessAdapter {
	return &AssessAdapter{
		provider: provider,
		config:   config,
	}
}

// Source returns the signal slot this adapter fills
func (a *AssessAdapter) Source() model.Source {
	return model.SourceContentAssessment
}

// Check runs the generative assessment on the extracted content
func (a *AssessAdapter) Check(ctx context.Context, input Input) model.Signal {
	if a.provider == nil {
		return model.UnavailableSignal(model.SourceContentAssessment, "no content assessment provider configured")
	}
	if !input.HasContent {
		return model.UnavailableSignal(model.SourceContentAssessment, "no page text available for assessment")
	}

	resp, err := a.provider.Assess(ctx, llm.AssessRequest{
		Title:     input.Title,
		Text:      input.Text,
		Model:     a.config.Model,
		MaxTokens: a.config.MaxTokens,
	})
	if err != nil {
		if isTransient(err) {
			return model.UnavailableSignal(model.SourceContentAssessment, fmt.Sprintf("assessment provider unreachable: %v", err))
		}
		return model.ErrorSignal(model.SourceContentAssessment, fmt.Sprintf("assessment failed: %v", err))
	}

	detail := resp.Summary
	if detail == "" {
		detail = resp.Rationale
	}

	return model.OkSignal(model.SourceContentAssessment, resp.RiskEstimate, resp.IssueTags, detail)
}

// isTransient separates "try again later" failures from broken responses
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
