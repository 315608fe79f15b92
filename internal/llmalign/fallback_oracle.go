package llmalign

import (
	"context"

	"github.com/sentalign/sentalign/internal/resilience"
)

// FallbackOracle chains a primary Oracle with zero or more secondary oracles,
// trying each in registration order until one produces a span. It exists for
// deployments that point the Hybrid Coordinator at more than one
// OpenAI-compatible endpoint (e.g. a primary provider and a cheaper or
// differently-rate-limited secondary) so a provider outage degrades to the
// next oracle instead of straight to the Local Aligner.
type FallbackOracle struct {
	group *resilience.FallbackGroup[Oracle]
}

// NewFallbackOracle constructs a FallbackOracle with primary as its first
// entry. cfg tunes the per-entry circuit breaker each oracle gets.
func NewFallbackOracle(primary Oracle, primaryName string, cfg resilience.FallbackConfig) *FallbackOracle {
	return &FallbackOracle{group: resilience.NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback appends a secondary oracle, tried after every entry registered
// before it has failed or has an open circuit breaker.
func (f *FallbackOracle) AddFallback(name string, oracle Oracle) {
	f.group.AddFallback(name, oracle)
}

// AlignSentence implements Oracle by trying each registered oracle in order.
func (f *FallbackOracle) AlignSentence(ctx context.Context, sentenceText, transcriptionView string) (Result, error) {
	return resilience.ExecuteWithResult(f.group, func(o Oracle) (Result, error) {
		return o.AlignSentence(ctx, sentenceText, transcriptionView)
	})
}
