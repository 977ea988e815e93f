package model

// Source identifies one configured external signal source
type Source string

const (
	SourceThreatLookup      Source = "threat_lookup"      // URL reputation (Safe Browsing)
	SourceFactCheck         Source = "fact_check"         // Fact Check Tools claim search
	SourceContentAssessment Source = "content_assessment" // Generative content assessment
)

// SourcePriority is the fixed ordering used when assembling flags and
// summaries. Threat intelligence outranks fact checking, which outranks
// the generative assessment.
var SourcePriority = []Source{
	SourceThreatLookup,
	SourceFactCheck,
	SourceContentAssessment,
}

// SignalStatus indicates whether a source produced usable data
type SignalStatus string

const (
	StatusOk          SignalStatus = "ok"          // Source answered with usable data
	StatusUnavailable SignalStatus = "unavailable" // Timed out, rate-limited, or had no data
	StatusError       SignalStatus = "error"       // Malformed or unexpected response
)

// Well-known tags emitted by the adapters
const (
	TagKnownMalicious   = "known_malicious"
	TagDisputedClaim    = "disputed_claim"
	TagFabricatedClaim  = "fabricated_claim"
	TagExtractionFailed = "extraction_failed"
)

// Signal is one source's normalized opinion about a URL or its content.
// Risk is only meaningful when Status is StatusOk and is always in [0,1].
type Signal struct {
	Source Source       `json:"source"`
	Status SignalStatus `json:"status"`
	Risk   float64      `json:"risk_contribution"`
	Tags   []string     `json:"tags,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// OkSignal builds a successful signal, clamping risk into [0,1]
func OkSignal(source Source, risk float64, tags []string, detail string) Signal {
	if risk < 0 {
		risk = 0
	}
	if risk > 1 {
		risk = 1
	}
	return Signal{
		Source: source,
		Status: StatusOk,
		Risk:   risk,
		Tags:   tags,
		Detail: detail,
	}
}

// UnavailableSignal builds a signal for a source that had nothing to say
func UnavailableSignal(source Source, detail string) Signal {
	return Signal{
		Source: source,
		Status: StatusUnavailable,
		Detail: detail,
	}
}

// ErrorSignal builds a signal for a source that failed unexpectedly
func ErrorSignal(source Source, detail string) Signal {
	return Signal{
		Source: source,
		Status: StatusError,
		Detail: detail,
	}
}

// HasTag reports whether the signal carries the given tag
func (s Signal) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SignalSet is the complete collection gathered for one analysis run:
// exactly one entry per configured source. Entries are never dropped,
// only marked Unavailable or Error on failure.
type SignalSet map[Source]Signal

// OkCount returns the number of sources that produced usable data
func (s SignalSet) OkCount() int {
	n := 0
	for _, sig := range s {
		if sig.Status == StatusOk {
			n++
		}
	}
	return n
}

// Degraded reports whether at least one configured source did not reach Ok
func (s SignalSet) Degraded() bool {
	for _, sig := range s {
		if sig.Status != StatusOk {
			return true
		}
	}
	return false
}
