// Package fanout runs the configured signal source adapters concurrently
// and assembles their answers into one complete SignalSet.
package fanout

import (
	"context"
	"time"

	"github.com/veracitylab/veracity/internal/model"
	"github.com/veracitylab/veracity/internal/source"
)

// Coordinator fans one analysis request out to every adapter at once.
// Each adapter gets its own timeout; the whole gathering phase gets a
// hard deadline. Adapters still pending when the deadline elapses are
// abandoned and their slots filled with Unavailable, so the returned
// set always has exactly one signal per adapter.
type Coordinator struct {
	adapters      []source.Adapter
	sourceTimeout time.Duration
	deadline      time.Duration
}

// NewCoordinator creates a coordinator over the given adapters
func NewCoordinator(adapters []source.Adapter, config model.FanoutConfig) *Coordinator {
	sourceTimeout := config.SourceTimeout
	if sourceTimeout <= 0 {
		sourceTimeout = 8 * time.Second
	}
	deadline := config.Deadline
	if deadline < sourceTimeout {
		deadline = sourceTimeout
	}

	return &Coordinator{
		adapters:      adapters,
		sourceTimeout: sourceTimeout,
		deadline:      deadline,
	}
}

type gathered struct {
	src model.Source
	sig model.Signal
}

// Gather queries all adapters concurrently and returns the full set
func (c *Coordinator) Gather(ctx context.Context, input source.Input) model.SignalSet {
	// Buffered so abandoned adapters can finish and exit without a reader
	results := make(chan gathered, len(c.adapters))

	for _, adapter := range c.adapters {
		go func(adapter source.Adapter) {
			checkCtx, cancel := context.WithTimeout(ctx, c.sourceTimeout)
			defer cancel()

			results <- gathered{src: adapter.Source(), sig: adapter.Check(checkCtx, input)}
		}(adapter)
	}

	set := make(model.SignalSet, len(c.adapters))

	timer := time.NewTimer(c.deadline)
	defer timer.Stop()

	for len(set) < len(c.adapters) {
		select {
		case r := <-results:
			set[r.src] = r.sig
		case <-timer.C:
			c.fillPending(set, "signal gathering deadline elapsed")
			return set
		case <-ctx.Done():
			c.fillPending(set, "analysis cancelled before the source answered")
			return set
		}
	}

	return set
}

func (c *Coordinator) fillPending(set model.SignalSet, detail string) {
	for _, adapter := range c.adapters {
		if _, ok := set[adapter.Source()]; !ok {
			set[adapter.Source()] = model.UnavailableSignal(adapter.Source(), detail)
		}
	}
}
