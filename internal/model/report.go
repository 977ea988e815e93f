package model

import "time"

// Verdict is the four-way categorical bucketing of the veracity score
type Verdict string

const (
	VerdictVerified   Verdict = "Verified"
	VerdictCaution    Verdict = "Caution"
	VerdictUnreliable Verdict = "Unreliable"
	VerdictDanger     Verdict = "Danger"
)

// Report is the final aggregated output of one analysis request.
// It is immutable once constructed; nothing persists across requests
// unless the history store is enabled.
type Report struct {
	ID         string    `json:"id,omitempty"`
	URL        string    `json:"url,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`

	VeracityScore int      `json:"veracity_score"` // 0-100, higher is more credible
	Verdict       Verdict  `json:"verdict"`
	Flags         []string `json:"flags"`
	Summary       string   `json:"summary"`

	// Degraded is true when at least one configured source did not return
	// usable data. Additive field: callers may ignore it.
	Degraded bool `json:"degraded"`

	// Signals is the per-source breakdown the score was computed from
	Signals SignalSet `json:"signals,omitempty"`
}

// DegradedSummary is the fixed summary used when no source produced
// usable data.
const DegradedSummary = "No external signal source returned usable data for this URL; the content could not be assessed."
