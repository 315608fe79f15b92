// Package align defines the data model shared across the alignment core:
// the input word stream and sentence list, the spans produced while
// searching the word stream, and the report emitted once a build completes.
package align

import (
	"encoding/json"
	"fmt"
)

// Status tags a ResolvedSpan with how (or whether) it was produced.
type Status string

const (
	StatusOK         Status = "ok"
	StatusWarning    Status = "warning"
	StatusFallback   Status = "fallback"
	StatusNotAligned Status = "not_aligned"
	StatusManual     Status = "manual"
)

// Method tags a ResolvedSpan with which component produced it.
type Method string

const (
	MethodLocal  Method = "local"
	MethodLLM    Method = "llm"
	MethodManual Method = "manual"
)

// Word is a single ASR-produced token with millisecond timing.
type Word struct {
	Text       string
	StartMS    int64
	EndMS      int64
	Confidence float64 // zero means "not provided"
}

// Transcription is the full, time-ordered word stream for one audio build.
type Transcription struct {
	ID           string
	LanguageCode string
	Words        []Word
}

// Token is a single normalized word, carrying a back-reference to the
// element it was derived from.
type Token struct {
	Normalized string
	Origin     int // index into the owning Word or Sentence token slice
}

// Sentence is one canonical-text sentence together with its tokenization
// and pre-computed anchors.
type Sentence struct {
	Idx     int // 1-based, dense
	Text    string
	Tokens  []string // normalized tokens, parallel to Anchors' Pos field
	Anchors []Anchor
}

// Anchor is a highly distinctive token within a Sentence, used to narrow
// the Local Aligner's search window.
type Anchor struct {
	Pos        int // index into Sentence.Tokens
	Normalized string
}

// CandidateSpan is a scored, transient candidate region of the word stream
// considered while searching for a Sentence's realization.
type CandidateSpan struct {
	StartIdx int
	EndIdx   int

	TokenSimilarity float64 // τ
	Coverage        float64 // c
	GapPenalty      float64 // g
	AnchorBonus     float64 // α
	BigramBonus     float64 // β
	Composite       float64
}

// Quality carries the score and an optional human-readable note for a
// ResolvedSpan.
type Quality struct {
	Score float64
	Note  string
}

// ResolvedSpan is the final, per-sentence alignment outcome. A nil pointer
// represents StatusNotAligned.
type ResolvedSpan struct {
	StartMS int64
	EndMS   int64
	Quality Quality
	Status  Status
	Method  Method

	// StartIdx/EndIdx are the backing word-stream indices, present for
	// local/llm-by-local-fallback spans; zero value for llm/manual spans
	// that never resolved to index-level coordinates.
	StartIdx int
	EndIdx   int
	HasIdx   bool
}

// Detail is a single non-ok report entry.
type Detail struct {
	Idx       int
	Text      string // truncated to 120 runes
	Status    Status
	Score     float64
	Reason    string
	Method    Method
	HasSpan   bool
	StartIdx  int
	EndIdx    int
}

// MethodBreakdown counts ResolvedSpans by the method that produced them.
type MethodBreakdown struct {
	Local int
	LLM   int
}

// AlignmentReport is produced once per build.
type AlignmentReport struct {
	NumSentences int
	Aligned      int
	Unaligned    int
	Warnings     int
	Methods      MethodBreakdown
	Details      []Detail
}

// ManualOverride replaces a computed span with a caller-supplied one.
type ManualOverride struct {
	SentenceIdx int
	StartMS     int64
	EndMS       int64
}

// truncateText returns s truncated to at most n runes, matching the report's
// 120-character text field.
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// NewDetail builds a report Detail for sentence s with the given outcome.
func NewDetail(s Sentence, status Status, score float64, reason string, method Method, span *CandidateSpan) Detail {
	d := Detail{
		Idx:    s.Idx,
		Text:   truncateText(s.Text, 120),
		Status: status,
		Score:  score,
		Reason: reason,
		Method: method,
	}
	if span != nil {
		d.HasSpan = true
		d.StartIdx = span.StartIdx
		d.EndIdx = span.EndIdx
	}
	return d
}

// String renders a CandidateSpan for debug logging.
func (c CandidateSpan) String() string {
	return fmt.Sprintf("[%d,%d] score=%.3f (tau=%.3f cov=%.3f gap=%.3f anchor=%.3f bigram=%.3f)",
		c.StartIdx, c.EndIdx, c.Composite, c.TokenSimilarity, c.Coverage, c.GapPenalty, c.AnchorBonus, c.BigramBonus)
}

// wireSpanIndices is the snake_case span_indices object of a wire Detail.
type wireSpanIndices struct {
	StartIdx int `json:"start_idx"`
	EndIdx   int `json:"end_idx"`
}

// wireDetail mirrors the output interface's details[] entry shape (spec §6).
type wireDetail struct {
	Idx         int              `json:"idx"`
	Text        string           `json:"text"`
	Status      Status           `json:"status"`
	Score       float64          `json:"score"`
	Reason      string           `json:"reason"`
	Method      Method           `json:"method"`
	SpanIndices *wireSpanIndices `json:"span_indices,omitempty"`
}

// MarshalJSON renders a Detail in the wire shape mandated by spec §6: the
// span_indices object is present only when the detail carries a backing span.
func (d Detail) MarshalJSON() ([]byte, error) {
	wd := wireDetail{
		Idx:    d.Idx,
		Text:   d.Text,
		Status: d.Status,
		Score:  d.Score,
		Reason: d.Reason,
		Method: d.Method,
	}
	if d.HasSpan {
		wd.SpanIndices = &wireSpanIndices{StartIdx: d.StartIdx, EndIdx: d.EndIdx}
	}
	return json.Marshal(wd)
}

// wireMethodBreakdown mirrors the output interface's global.methods object.
type wireMethodBreakdown struct {
	Local int `json:"local"`
	LLM   int `json:"llm"`
}

// wireGlobal mirrors the output interface's global object.
type wireGlobal struct {
	NumSentences int                 `json:"num_sentences"`
	Aligned      int                 `json:"aligned"`
	Unaligned    int                 `json:"unaligned"`
	Warnings     int                 `json:"warnings"`
	Methods      wireMethodBreakdown `json:"methods"`
}

// wireAlignmentReport mirrors the output interface's top-level shape (spec
// §6 / SPEC_FULL §13): a "global" object plus a "details" array.
type wireAlignmentReport struct {
	Global  wireGlobal `json:"global"`
	Details []Detail   `json:"details"`
}

// MarshalJSON renders an AlignmentReport in the global/details wire shape
// the downstream audio builder/manifest writer expects (spec §6).
func (r AlignmentReport) MarshalJSON() ([]byte, error) {
	details := r.Details
	if details == nil {
		details = []Detail{}
	}
	wr := wireAlignmentReport{
		Global: wireGlobal{
			NumSentences: r.NumSentences,
			Aligned:      r.Aligned,
			Unaligned:    r.Unaligned,
			Warnings:     r.Warnings,
			Methods: wireMethodBreakdown{
				Local: r.Methods.Local,
				LLM:   r.Methods.LLM,
			},
		},
		Details: details,
	}
	return json.Marshal(wr)
}
