package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/veracitylab/veracity/internal/model"
)

// FactCheckAdapter searches the Google Fact Check Tools claim index for
// published reviews mentioning the URL. Absence of claims is treated as
// "nothing to say", not as an endorsement.
type FactCheckAdapter struct {
	config     model.FactCheckConfig
	httpClient *http.Client
}

// NewFactCheckAdapter creates a Fact Check Tools adapter
func NewFactCheckAdapter(config model.FactCheckConfig) *FactCheckAdapter {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &FactCheckAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source returns the signal slot this adapter fills
func (a *FactCheckAdapter) Source() model.Source {
	return model.SourceFactCheck
}

type factCheckResponse struct {
	Claims []factCheckClaim `json:"claims"`
}

type factCheckClaim struct {
	Text        string            `json:"text"`
	ClaimReview []factClaimReview `json:"claimReview"`
}

type factClaimReview struct {
	Publisher     factPublisher `json:"publisher"`
	TextualRating string        `json:"textualRating"`
}

type factPublisher struct {
	Name string `json:"name"`
}

// ratingRisks maps textual rating fragments to risk. Matched in order,
// first hit wins, so more specific fragments come first.
var ratingRisks = []struct {
	fragment string
	risk     float64
}{
	{"pants on fire", 1.0},
	{"fabricat", 1.0},
	{"mostly false", 0.8},
	{"mostly true", 0.2},
	{"half true", 0.5},
	{"half-true", 0.5},
	{"mixture", 0.5},
	{"misleading", 0.8},
	{"unproven", 0.5},
	{"false", 1.0},
	{"true", 0.0},
	{"correct", 0.0},
	{"accurate", 0.0},
}

// ratingRisk translates a publisher's textual rating into [0,1].
// Unrecognized ratings land in the middle rather than being discarded.
func ratingRisk(textualRating string) float64 {
	rating := strings.ToLower(strings.TrimSpace(textualRating))
	for _, entry := range ratingRisks {
		if strings.Contains(rating, entry.fragment) {
			return entry.risk
		}
	}
	return 0.5
}

// Check searches the claim index for reviews mentioning the page
func (a *FactCheckAdapter) Check(ctx context.Context, input Input) model.Signal {
	if a.config.APIKey == "" {
		return model.UnavailableSignal(model.SourceFactCheck, "fact check lookup is not configured")
	}
	if !input.HasContent {
		return model.UnavailableSignal(model.SourceFactCheck, "no page text available to search for claims")
	}

	// The claim index matches review text, so the title is a far better
	// query than the raw URL when extraction produced one.
	query := input.Title
	if query == "" {
		query = input.URL
	}

	pageSize := a.config.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", a.config.APIKey)
	params.Set("pageSize", strconv.Itoa(pageSize))
	if a.config.Language != "" {
		params.Set("languageCode", a.config.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return model.ErrorSignal(model.SourceFactCheck, fmt.Sprintf("build request: %v", err))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.UnavailableSignal(model.SourceFactCheck, fmt.Sprintf("fact check lookup unreachable: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return model.UnavailableSignal(model.SourceFactCheck, fmt.Sprintf("fact check lookup returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return model.ErrorSignal(model.SourceFactCheck, fmt.Sprintf("fact check lookup returned status %d", resp.StatusCode))
	}

	var result factCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.ErrorSignal(model.SourceFactCheck, fmt.Sprintf("decode response: %v", err))
	}

	if len(result.Claims) == 0 {
		return model.UnavailableSignal(model.SourceFactCheck, "no published fact checks mention this URL")
	}

	worst := 0.0
	reviewed := 0
	var worstRating, worstPublisher string
	for _, claim := range result.Claims {
		for _, review := range claim.ClaimReview {
			reviewed++
			risk := ratingRisk(review.TextualRating)
			if risk >= worst {
				worst = risk
				worstRating = review.TextualRating
				worstPublisher = review.Publisher.Name
			}
		}
	}

	if reviewed == 0 {
		return model.UnavailableSignal(model.SourceFactCheck, "fact check entries for this URL carry no reviews")
	}

	var tags []string
	if worst >= 0.9 {
		tags = append(tags, model.TagFabricatedClaim)
	} else if worst >= 0.4 {
		tags = append(tags, model.TagDisputedClaim)
	}

	detail := fmt.Sprintf("%d published fact check review(s) mention this URL", reviewed)
	if worstRating != "" {
		if worstPublisher != "" {
			detail += fmt.Sprintf("; worst rating %q by %s", worstRating, worstPublisher)
		} else {
			detail += fmt.Sprintf("; worst rating %q", worstRating)
		}
	}
	detail += "."

	return model.OkSignal(model.SourceFactCheck, worst, tags, detail)
}
