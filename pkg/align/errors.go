package align

import "errors"

// Sentinel errors distinguishing the error kinds the alignment core surfaces,
// mirroring §7 of the alignment design: some abort a build, most describe a
// single sentence's non-fatal outcome and are carried in a Detail instead.
var (
	// ErrEmptySentence marks a sentence with no tokens after normalization.
	ErrEmptySentence = errors.New("align: sentence has no tokens after normalization")

	// ErrNoViableSpan marks a sentence for which both the strict and the
	// relaxed fallback pass failed to find an acceptable span.
	ErrNoViableSpan = errors.New("align: no viable span found")

	// ErrLLMTransportFailure marks an LLM oracle call that failed after
	// exhausting its retry budget.
	ErrLLMTransportFailure = errors.New("align: llm transport failure")

	// ErrInvalidManualAdjustment marks a manual override whose indices or
	// times are malformed.
	ErrInvalidManualAdjustment = errors.New("align: invalid manual adjustment")

	// ErrInvalidInput aborts a build: malformed transcription, no sentences,
	// or similar structural defects that a single sentence cannot recover
	// from.
	ErrInvalidInput = errors.New("align: invalid input")
)
