package ai

import (
	"context"
	"time"

	"github.com/devorch/devorch/internal/metrics"
)

var timeNow = time.Now

// InstrumentedGateway decorates a Gateway with request metrics.
type InstrumentedGateway struct {
	inner    Gateway
	model    string
	recorder *metrics.Recorder
}

// Instrument wraps g so every Query is recorded against the given
// model label.
func Instrument(g Gateway, model string, recorder *metrics.Recorder) *InstrumentedGateway {
	return &InstrumentedGateway{inner: g, model: model, recorder: recorder}
}

// Query delegates to the wrapped gateway and records duration and
// outcome.
func (i *InstrumentedGateway) Query(ctx context.Context, prompt string) (string, error) {
	start := timeNow()
	text, err := i.inner.Query(ctx, prompt)
	i.recorder.ObserveAIRequest(i.model, err == nil, timeNow().Sub(start))
	return text, err
}
