// Package llmalign implements the optional LLM-assisted alignment path and
// the Hybrid Coordinator that merges it with the Local Aligner (spec §4.5).
package llmalign

import (
	"context"
	"errors"
)

// ErrOracleFailure is the failure signal an Oracle returns when it cannot
// produce a span for a sentence (spec §9: "(span, confidence) | failure").
var ErrOracleFailure = errors.New("llmalign: oracle failed to align sentence")

// Result is the span an Oracle returns for one sentence.
type Result struct {
	StartMS    int64
	EndMS      int64
	Confidence float64
}

// Oracle is the capability interface the Coordinator is parametric over
// (spec §9 design note): "align_sentence(text, transcription_view) ->
// (span, confidence) | failure". transcriptionView is a caller-prepared
// textual rendering of the relevant portion of the word stream (typically
// the whole transcription text, since the oracle does its own timestamp
// reasoning).
type Oracle interface {
	AlignSentence(ctx context.Context, sentenceText, transcriptionView string) (Result, error)
}
