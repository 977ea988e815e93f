package score

import (
	"reflect"
	"testing"

	"github.com/veracitylab/veracity/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(model.DefaultConfig().Scoring)
}

func fullSet(threat, factcheck, assessment model.Signal) model.SignalSet {
	return model.SignalSet{
		model.SourceThreatLookup:      threat,
		model.SourceFactCheck:         factcheck,
		model.SourceContentAssessment: assessment,
	}
}

func TestEngine_AllClean(t *testing.T) {
	engine := newTestEngine()

	report := engine.Score(fullSet(
		model.OkSignal(model.SourceThreatLookup, 0.0, nil, "No known threats for this URL."),
		model.OkSignal(model.SourceFactCheck, 0.0, nil, ""),
		model.OkSignal(model.SourceContentAssessment, 0.0, nil, ""),
	))

	if report.VeracityScore != 100 {
		t.Errorf("expected score 100, got %d", report.VeracityScore)
	}
	if report.Verdict != model.VerdictVerified {
		t.Errorf("expected Verified, got %s", report.Verdict)
	}
	if len(report.Flags) != 0 {
		t.Errorf("expected no flags, got %v", report.Flags)
	}
	if report.Degraded {
		t.Error("expected degraded=false when all sources are Ok")
	}
}

func TestEngine_KnownMaliciousOverridesBucketing(t *testing.T) {
	engine := newTestEngine()

	// Other sources are clean, so the weighted score is well above the
	// Danger threshold. The override must still apply.
	report := engine.Score(fullSet(
		model.OkSignal(model.SourceThreatLookup, 1.0, []string{model.TagKnownMalicious, "malware"}, "Flagged as MALWARE."),
		model.OkSignal(model.SourceFactCheck, 0.0, nil, ""),
		model.OkSignal(model.SourceContentAssessment, 0.0, nil, ""),
	))

	if report.Verdict != model.VerdictDanger {
		t.Errorf("expected Danger regardless of score, got %s (score %d)", report.Verdict, report.VeracityScore)
	}
	if report.Flags[0] != model.TagKnownMalicious {
		t.Errorf("expected known_malicious first in flags, got %v", report.Flags)
	}
}

func TestEngine_WeightRedistribution(t *testing.T) {
	engine := newTestEngine()

	// ThreatLookup unavailable: FactCheck (0.3) and ContentAssessment (0.2)
	// renormalize to 0.6/0.4. Both risks 0.5 -> risk 0.5 -> score 50.
	report := engine.Score(fullSet(
		model.UnavailableSignal(model.SourceThreatLookup, "timed out"),
		model.OkSignal(model.SourceFactCheck, 0.5, []string{model.TagDisputedClaim}, "A reviewed claim was rated misleading."),
		model.OkSignal(model.SourceContentAssessment, 0.5, nil, ""),
	))

	if report.VeracityScore != 50 {
		t.Errorf("expected score 50 after redistribution, got %d", report.VeracityScore)
	}
	if report.Verdict != model.VerdictUnreliable {
		t.Errorf("expected Unreliable, got %s", report.Verdict)
	}
	if !reflect.DeepEqual(report.Flags, []string{model.TagDisputedClaim}) {
		t.Errorf("expected [disputed_claim], got %v", report.Flags)
	}
	if !report.Degraded {
		t.Error("expected degraded=true when a source is unavailable")
	}
}

func TestEngine_SingleOkSourceGetsFullWeight(t *testing.T) {
	engine := newTestEngine()

	for _, risk := range []float64{0.0, 0.1, 0.25, 0.5, 0.9, 1.0} {
		report := engine.Score(fullSet(
			model.OkSignal(model.SourceThreatLookup, risk, nil, ""),
			model.UnavailableSignal(model.SourceFactCheck, "no text"),
			model.ErrorSignal(model.SourceContentAssessment, "bad response"),
		))

		want := int(100*(1-risk) + 0.5)
		if report.VeracityScore != want {
			t.Errorf("risk %.2f: expected score %d, got %d", risk, want, report.VeracityScore)
		}
	}
}

func TestEngine_TotalFailureIsFixedDegradedReport(t *testing.T) {
	engine := newTestEngine()

	report := engine.Score(fullSet(
		model.ErrorSignal(model.SourceThreatLookup, "boom"),
		model.ErrorSignal(model.SourceFactCheck, "boom"),
		model.ErrorSignal(model.SourceContentAssessment, "boom"),
	))

	if report.VeracityScore != 0 {
		t.Errorf("expected score 0, got %d", report.VeracityScore)
	}
	if report.Verdict != model.VerdictUnreliable {
		t.Errorf("expected Unreliable, got %s", report.Verdict)
	}
	if !report.Degraded {
		t.Error("expected degraded=true")
	}
	if report.Summary != model.DegradedSummary {
		t.Errorf("expected fixed degraded summary, got %q", report.Summary)
	}
	if len(report.Flags) != 0 {
		t.Errorf("expected no flags, got %v", report.Flags)
	}
}

func TestEngine_ScoreAlwaysInRange(t *testing.T) {
	engine := newTestEngine()

	risks := []float64{0, 0.1, 0.33, 0.5, 0.77, 1.0}
	for _, a := range risks {
		for _, b := range risks {
			for _, c := range risks {
				report := engine.Score(fullSet(
					model.OkSignal(model.SourceThreatLookup, a, nil, ""),
					model.OkSignal(model.SourceFactCheck, b, nil, ""),
					model.OkSignal(model.SourceContentAssessment, c, nil, ""),
				))
				if report.VeracityScore < 0 || report.VeracityScore > 100 {
					t.Fatalf("score out of range for risks %.2f/%.2f/%.2f: %d", a, b, c, report.VeracityScore)
				}
			}
		}
	}
}

func TestEngine_MonotoneInRisk(t *testing.T) {
	engine := newTestEngine()

	prev := 101
	for _, risk := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		report := engine.Score(fullSet(
			model.OkSignal(model.SourceThreatLookup, risk, nil, ""),
			model.OkSignal(model.SourceFactCheck, 0.3, nil, ""),
			model.OkSignal(model.SourceContentAssessment, 0.3, nil, ""),
		))
		if report.VeracityScore > prev {
			t.Errorf("score increased (%d -> %d) when risk rose to %.1f", prev, report.VeracityScore, risk)
		}
		prev = report.VeracityScore
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := newTestEngine()

	set := fullSet(
		model.OkSignal(model.SourceThreatLookup, 0.2, []string{"suspicious_redirect"}, "One redirect chain flagged."),
		model.UnavailableSignal(model.SourceFactCheck, ""),
		model.OkSignal(model.SourceContentAssessment, 0.7, []string{"emotionally_charged"}, "Inflammatory language throughout."),
	)

	first := engine.Score(set)
	second := engine.Score(set)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEngine_FlagsDeduplicatedInPriorityOrder(t *testing.T) {
	engine := newTestEngine()

	report := engine.Score(fullSet(
		model.OkSignal(model.SourceThreatLookup, 0.5, []string{"phishing"}, ""),
		model.OkSignal(model.SourceFactCheck, 0.5, []string{model.TagDisputedClaim, "phishing"}, ""),
		model.OkSignal(model.SourceContentAssessment, 0.5, []string{"vague_claims", model.TagDisputedClaim}, ""),
	))

	want := []string{"phishing", model.TagDisputedClaim, "vague_claims"}
	if !reflect.DeepEqual(report.Flags, want) {
		t.Errorf("expected flags %v, got %v", want, report.Flags)
	}
}

func TestEngine_SummaryOmitsUnavailableSources(t *testing.T) {
	engine := newTestEngine()

	report := engine.Score(fullSet(
		model.UnavailableSignal(model.SourceThreatLookup, "timed out"),
		model.OkSignal(model.SourceFactCheck, 0.4, nil, "Two reviewed claims were rated misleading."),
		model.OkSignal(model.SourceContentAssessment, 0.3, nil, "The article presents opinion as fact."),
	))

	want := "Two reviewed claims were rated misleading. The article presents opinion as fact."
	if report.Summary != want {
		t.Errorf("expected summary %q, got %q", want, report.Summary)
	}
}
