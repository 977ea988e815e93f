// Package source contains the adapters that query external signal
// sources about a URL and normalize whatever comes back into a Signal.
// Adapters never fail the analysis: every outcome, including timeouts
// and garbage responses, is expressed through the signal's status.
package source

import (
	"context"

	"github.com/veracitylab/veracity/internal/model"
)

// Input is the material an adapter may inspect. Adapters that only care
// about the URL ignore the content fields; HasContent is false when page
// extraction failed or produced no text.
type Input struct {
	URL        string
	Title      string
	Text       string
	HasContent bool
}

// Adapter queries one external source and reports its opinion
type Adapter interface {
	// Source identifies which slot in the SignalSet this adapter fills
	Source() model.Source

	// Check runs the lookup. It must honor ctx and always return a
	// signal, using the Unavailable and Error statuses instead of
	// propagating failures.
	Check(ctx context.Context, input Input) model.Signal
}
