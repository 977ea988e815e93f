package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/veracitylab/veracity/internal/model"
)

// threatTypes are the Safe Browsing v4 threat lists consulted for every
// lookup.
var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// ThreatAdapter checks a URL against the Google Safe Browsing v4
// threatMatches:find endpoint. A clean answer is a strong positive
// signal; a match is conclusive evidence of danger.
type ThreatAdapter struct {
	config     model.ThreatConfig
	httpClient *http.Client
}

// NewThreatAdapter creates a Safe Browsing adapter
func NewThreatAdapter(config model.ThreatConfig) *ThreatAdapter {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &ThreatAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source returns the signal slot this adapter fills
func (a *ThreatAdapter) Source() model.Source {
	return model.SourceThreatLookup
}

type threatRequest struct {
	Client     threatClient `json:"client"`
	ThreatInfo threatInfo   `json:"threatInfo"`
}

type threatClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type threatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []threatEntry `json:"threatEntries"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type threatResponse struct {
	Matches []threatMatch `json:"matches"`
}

type threatMatch struct {
	ThreatType   string `json:"threatType"`
	PlatformType string `json:"platformType"`
}

// Check looks the URL up in the configured threat lists
func (a *ThreatAdapter) Check(ctx context.Context, input Input) model.Signal {
	if a.config.APIKey == "" {
		return model.UnavailableSignal(model.SourceThreatLookup, "threat lookup is not configured")
	}

	payload := threatRequest{
		Client: threatClient{
			ClientID:      a.config.ClientID,
			ClientVersion: a.config.ClientVersion,
		},
		ThreatInfo: threatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []threatEntry{{URL: input.URL}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.ErrorSignal(model.SourceThreatLookup, fmt.Sprintf("encode request: %v", err))
	}

	endpoint := a.config.BaseURL + "?key=" + a.config.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return model.ErrorSignal(model.SourceThreatLookup, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.UnavailableSignal(model.SourceThreatLookup, fmt.Sprintf("threat lookup unreachable: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return model.UnavailableSignal(model.SourceThreatLookup, fmt.Sprintf("threat lookup returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return model.ErrorSignal(model.SourceThreatLookup, fmt.Sprintf("threat lookup returned status %d", resp.StatusCode))
	}

	var result threatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.ErrorSignal(model.SourceThreatLookup, fmt.Sprintf("decode response: %v", err))
	}

	if len(result.Matches) == 0 {
		return model.OkSignal(model.SourceThreatLookup, 0, nil,
			"The URL is not present on any known threat list.")
	}

	tags := []string{model.TagKnownMalicious}
	var kinds []string
	seen := make(map[string]bool)
	for _, match := range result.Matches {
		kind := strings.ToLower(match.ThreatType)
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
		tags = append(tags, kind)
	}

	detail := "The URL matched a known threat list."
	if len(kinds) > 0 {
		detail = fmt.Sprintf("The URL matched known threat lists: %s.", strings.Join(kinds, ", "))
	}

	return model.OkSignal(model.SourceThreatLookup, 1.0, tags, detail)
}
