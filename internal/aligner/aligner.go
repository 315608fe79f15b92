// Package aligner implements the Local Aligner (spec §4.4): the monotonic,
// cursor-driven search over the word stream that resolves each sentence to
// a candidate span via the Span Scorer, with a strict pass followed by a
// relaxed fallback pass.
package aligner

import (
	"github.com/sentalign/sentalign/internal/anchor"
	"github.com/sentalign/sentalign/internal/normalize"
	"github.com/sentalign/sentalign/internal/score"
	"github.com/sentalign/sentalign/pkg/align"
)

// Config holds the Local Aligner's tunables (spec §6).
type Config struct {
	WindowTokens          int
	ElasticGap            int
	MinAccept             float64
	WarnAccept            float64
	TokenRatioCutoff      float64
	FallbackExpandWindow  int
	FallbackElasticGap    int
	FallbackTokenRatio    float64
	PadMS                 int64
	MaxAnchors            int
	Weights               score.Weights

	// CoverageMin/SmallSentenceCoverageMin are carried from the original
	// implementation's configuration surface but are informational only —
	// see SPEC_FULL.md §12 ("Coverage floors"). They are not enforced as
	// independent accept/reject gates.
	CoverageMin              float64
	SmallSentenceCoverageMin float64

	// anchorPrefixWindow is the number of words inspected, from the start
	// of the strict-pass window, when deciding whether to narrow around an
	// anchor (spec §4.2/§9 design note; preserved as-is despite being
	// undocumented in the source). New substitutes DefaultConfig's 500
	// when it is zero, as in a Config built outside this package.
	anchorPrefixWindow int
}

// DefaultConfig returns the spec's default tuning (spec §6 table).
func DefaultConfig() Config {
	return Config{
		WindowTokens:             4000,
		ElasticGap:               10,
		MinAccept:                0.85,
		WarnAccept:               0.78,
		TokenRatioCutoff:         92,
		FallbackExpandWindow:     1000,
		FallbackElasticGap:       18,
		FallbackTokenRatio:       88,
		PadMS:                    100,
		MaxAnchors:               anchor.DefaultMaxAnchors,
		Weights:                  score.DefaultWeights(),
		CoverageMin:              0.80,
		SmallSentenceCoverageMin: 0.67,
		anchorPrefixWindow:       500,
	}
}

// Outcome is the per-sentence result of a Local Aligner pass: either a
// ResolvedSpan plus the winning CandidateSpan, or a failure reason with no
// span.
type Outcome struct {
	Sentence align.Sentence
	Span     *align.ResolvedSpan
	Best     *align.CandidateSpan
	Status   align.Status
	Reason   string
}

// Aligner drives the monotonic, cursor-based search described in spec §4.4.
// It is single-threaded and deterministic (spec §5): a given Aligner value
// must only be driven from one goroutine at a time.
type Aligner struct {
	cfg       Config
	words     []align.Word
	normWords []string
	cursor    int
}

// New constructs an Aligner over a read-only word stream. The caller retains
// ownership of words for the duration of the build (spec §3 ownership).
func New(words []align.Word, cfg Config) *Aligner {
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normalize.Token(w.Text)
	}
	if cfg.anchorPrefixWindow <= 0 {
		cfg.anchorPrefixWindow = DefaultConfig().anchorPrefixWindow
	}
	return &Aligner{cfg: cfg, words: words, normWords: norm}
}

// PrepareSentences tokenizes each sentence's text and computes its anchors
// against the given IDF table, returning updated Sentence values. This must
// be called once per build before Align.
func PrepareSentences(sentences []align.Sentence, table *anchor.IDFTable, maxAnchors int) []align.Sentence {
	out := make([]align.Sentence, len(sentences))
	for i, s := range sentences {
		s.Tokens = normalize.Tokenize(s.Text)
		s.Anchors = anchor.Select(s.Tokens, table, maxAnchors)
		out[i] = s
	}
	return out
}

// Cursor returns the aligner's current monotonic cursor position (the next
// word index a search may begin from).
func (a *Aligner) Cursor() int { return a.cursor }

// Align runs the full two-pass policy over every sentence in order,
// advancing (or not advancing, on failure) the cursor per spec §4.4.
func (a *Aligner) Align(sentences []align.Sentence) []Outcome {
	outcomes := make([]Outcome, 0, len(sentences))
	for _, s := range sentences {
		outcomes = append(outcomes, a.alignOne(s))
	}
	return outcomes
}

// alignOne resolves a single sentence using the strict pass, falling back to
// the relaxed pass on strict failure (spec §4.4).
func (a *Aligner) alignOne(s align.Sentence) Outcome {
	if len(s.Tokens) == 0 {
		return Outcome{Sentence: s, Status: align.StatusNotAligned, Reason: "empty"}
	}

	strictCfg := passConfig{
		windowTokens: a.cfg.WindowTokens,
		elasticGap:   a.cfg.ElasticGap,
		tokenRatio:   a.cfg.TokenRatioCutoff,
	}
	best, windowStart, windowEnd := a.search(s, strictCfg)

	if best != nil {
		switch {
		case best.Composite >= a.cfg.MinAccept:
			return a.accept(s, best, align.StatusOK, "")
		case best.Composite >= a.cfg.WarnAccept:
			return a.accept(s, best, align.StatusWarning, "below min_accept")
		}
	}
	_ = windowStart
	_ = windowEnd

	// Fallback pass: relaxed window/gap/ratio, only on strict failure.
	fallbackCfg := passConfig{
		windowTokens: a.cfg.WindowTokens + a.cfg.FallbackExpandWindow,
		elasticGap:   a.cfg.FallbackElasticGap,
		tokenRatio:   a.cfg.FallbackTokenRatio,
	}
	fallbackBest, _, _ := a.search(s, fallbackCfg)
	if fallbackBest != nil && fallbackBest.Composite >= a.cfg.WarnAccept {
		return a.accept(s, fallbackBest, align.StatusFallback, "accepted on relaxed pass")
	}

	// Neither pass produced an acceptable span: do not advance the cursor.
	reason := "no-viable-span"
	return Outcome{Sentence: s, Status: align.StatusNotAligned, Reason: reason, Best: best}
}

// accept finalizes a winning CandidateSpan into a ResolvedSpan, applies
// padding, and advances the cursor.
func (a *Aligner) accept(s align.Sentence, best *align.CandidateSpan, status align.Status, reason string) Outcome {
	startMS := a.words[best.StartIdx].StartMS - a.cfg.PadMS
	if startMS < 0 {
		startMS = 0
	}
	endMS := a.words[best.EndIdx].EndMS + a.cfg.PadMS

	span := &align.ResolvedSpan{
		StartMS:  startMS,
		EndMS:    endMS,
		Quality:  align.Quality{Score: best.Composite},
		Status:   status,
		Method:   align.MethodLocal,
		StartIdx: best.StartIdx,
		EndIdx:   best.EndIdx,
		HasIdx:   true,
	}
	a.cursor = best.EndIdx + 1
	return Outcome{Sentence: s, Span: span, Best: best, Status: status, Reason: reason}
}

// passConfig holds the per-pass tunables threaded through search.
type passConfig struct {
	windowTokens int
	elasticGap   int
	tokenRatio   float64
}

// search enumerates candidates in the pass's window and returns the
// best-scoring CandidateSpan (or nil if the window is empty / no candidate
// start positions exist), plus the window bounds actually searched.
func (a *Aligner) search(s align.Sentence, pc passConfig) (*align.CandidateSpan, int, int) {
	n := len(a.words)
	windowStart := a.cursor
	windowEnd := min(n, a.cursor+pc.windowTokens)
	if windowStart >= windowEnd {
		return nil, windowStart, windowEnd
	}

	windowStart, windowEnd = a.narrowAroundAnchors(s, windowStart, windowEnd)

	m := len(s.Tokens)
	var best *align.CandidateSpan

	for start := windowStart; start < windowEnd; start++ {
		if !a.isCandidateStart(s, start, pc.tokenRatio) {
			continue
		}

		lo := start + m - 1 - pc.elasticGap
		hi := start + m - 1 + pc.elasticGap
		if lo < start {
			lo = start
		}
		if hi >= windowEnd {
			hi = windowEnd - 1
		}

		for end := lo; end <= hi; end++ {
			if end < start {
				continue
			}
			windowTokens := a.normWords[start : end+1]
			c := score.Span(s.Tokens, windowTokens, s.Anchors, pc.tokenRatio, a.cfg.Weights, start, end)
			if betterCandidate(&c, best) {
				cc := c
				best = &cc
			}
		}
	}

	return best, windowStart, windowEnd
}

// isCandidateStart reports whether word index idx is eligible as a
// candidate span's start_idx: either the sentence's first token matches it,
// or any anchor matches it (spec §4.4 candidate generation).
func (a *Aligner) isCandidateStart(s align.Sentence, idx int, threshold float64) bool {
	w := a.normWords[idx]
	if w == "" {
		return false
	}
	if normalize.TokensMatch(s.Tokens[0], w, threshold) {
		return true
	}
	for _, anc := range s.Anchors {
		if normalize.TokensMatch(anc.Normalized, w, threshold) {
			return true
		}
	}
	return false
}

// narrowAroundAnchors inspects the first anchorPrefixWindow words of the
// strict-pass window for an anchor occurrence and, if found, narrows the
// search window to [min(anchor_pos)-50, max(anchor_pos)+150] (spec §4.2).
// Anchor-free sentences, or sentences whose anchors are absent from the
// prefix, proceed unnarrowed.
func (a *Aligner) narrowAroundAnchors(s align.Sentence, windowStart, windowEnd int) (int, int) {
	if len(s.Anchors) == 0 {
		return windowStart, windowEnd
	}

	prefixEnd := min(windowEnd, windowStart+a.cfg.anchorPrefixWindow)
	var positions []int
	for idx := windowStart; idx < prefixEnd; idx++ {
		w := a.normWords[idx]
		if w == "" {
			continue
		}
		for _, anc := range s.Anchors {
			if normalize.TokensMatch(anc.Normalized, w, a.cfg.TokenRatioCutoff) {
				positions = append(positions, idx)
				break
			}
		}
	}
	if len(positions) == 0 {
		return windowStart, windowEnd
	}

	minPos, maxPos := positions[0], positions[0]
	for _, p := range positions {
		if p < minPos {
			minPos = p
		}
		if p > maxPos {
			maxPos = p
		}
	}

	narrowStart := max(windowStart, minPos-50)
	narrowEnd := min(windowEnd, maxPos+150)
	if narrowStart >= narrowEnd {
		return windowStart, windowEnd
	}
	return narrowStart, narrowEnd
}

// betterCandidate reports whether c beats the current best, applying the
// tie-break rule: earlier start_idx, then shorter span (spec §4.4).
func betterCandidate(c, best *align.CandidateSpan) bool {
	if best == nil {
		return true
	}
	if c.Composite != best.Composite {
		return c.Composite > best.Composite
	}
	if c.StartIdx != best.StartIdx {
		return c.StartIdx < best.StartIdx
	}
	return (c.EndIdx - c.StartIdx) < (best.EndIdx - best.StartIdx)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
