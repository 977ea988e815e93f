package score

import (
	"math"
	"strings"

	"github.com/veracitylab/veracity/internal/model"
)

// Engine reduces a SignalSet to a scored report. It performs no I/O and is
// deterministic: the same SignalSet always yields the same report,
// regardless of the order signals arrived in.
type Engine struct {
	weights    model.Weights
	thresholds model.Thresholds
}

// NewEngine creates an engine with the given scoring policy
func NewEngine(cfg model.ScoringConfig) *Engine {
	return &Engine{
		weights:    cfg.Weights,
		thresholds: cfg.Thresholds,
	}
}

// Score computes the veracity score, verdict, flags and summary for one
// SignalSet. Only Ok signals contribute; the weights of missing or errored
// sources are redistributed proportionally among the remaining Ok signals.
func (e *Engine) Score(set model.SignalSet) model.Report {
	ok := e.okSignals(set)

	if len(ok) == 0 {
		return model.Report{
			VeracityScore: 0,
			Verdict:       model.VerdictUnreliable,
			Flags:         []string{},
			Summary:       model.DegradedSummary,
			Degraded:      true,
			Signals:       set,
		}
	}

	risk := e.weightedRisk(ok)

	scoreValue := int(math.Round(100 * (1 - risk)))
	if scoreValue < 0 {
		scoreValue = 0
	}
	if scoreValue > 100 {
		scoreValue = 100
	}

	verdict := e.bucket(scoreValue)

	// A known-malicious URL must never be shown as anything better than
	// Danger, whatever the weighted average says.
	if threat, found := set[model.SourceThreatLookup]; found {
		if threat.Status == model.StatusOk && threat.HasTag(model.TagKnownMalicious) {
			verdict = model.VerdictDanger
		}
	}

	return model.Report{
		VeracityScore: scoreValue,
		Verdict:       verdict,
		Flags:         collectFlags(ok),
		Summary:       buildSummary(ok),
		Degraded:      set.Degraded(),
		Signals:       set,
	}
}

// okSignals returns the Ok signals in source priority order
func (e *Engine) okSignals(set model.SignalSet) []model.Signal {
	var ok []model.Signal
	for _, source := range model.SourcePriority {
		if sig, found := set[source]; found && sig.Status == model.StatusOk {
			ok = append(ok, sig)
		}
	}
	return ok
}

// weightedRisk computes the weighted average risk over the Ok signals,
// renormalizing the configured weights so they sum to 1.0 over the
// available subset.
func (e *Engine) weightedRisk(ok []model.Signal) float64 {
	total := 0.0
	for _, sig := range ok {
		total += e.weights.For(sig.Source)
	}

	if total <= 0 {
		// All Ok sources are configured with zero weight; fall back to a
		// plain average so the score remains defined.
		sum := 0.0
		for _, sig := range ok {
			sum += sig.Risk
		}
		return sum / float64(len(ok))
	}

	risk := 0.0
	for _, sig := range ok {
		risk += (e.weights.For(sig.Source) / total) * sig.Risk
	}
	return risk
}

// bucket maps a score to its verdict. Boundaries are inclusive on the
// lower end.
func (e *Engine) bucket(score int) model.Verdict {
	switch {
	case score >= e.thresholds.Verified:
		return model.VerdictVerified
	case score >= e.thresholds.Caution:
		return model.VerdictCaution
	case score >= e.thresholds.Danger:
		return model.VerdictUnreliable
	default:
		return model.VerdictDanger
	}
}

// collectFlags unions the Ok signals' tags, deduplicated, in source
// priority order. ok must already be priority-ordered.
func collectFlags(ok []model.Signal) []string {
	seen := make(map[string]bool)
	flags := []string{}
	for _, sig := range ok {
		for _, tag := range sig.Tags {
			if !seen[tag] {
				seen[tag] = true
				flags = append(flags, tag)
			}
		}
	}
	return flags
}

// buildSummary joins the Ok signals' detail strings in priority order.
// Unavailable sources are omitted silently.
func buildSummary(ok []model.Signal) string {
	var parts []string
	for _, sig := range ok {
		if detail := strings.TrimSpace(sig.Detail); detail != "" {
			parts = append(parts, detail)
		}
	}
	if len(parts) == 0 {
		return "The available sources reported no further detail about this content."
	}
	return strings.Join(parts, " ")
}
