// Package anchor selects the highly-distinctive tokens per sentence that the
// Local Aligner uses to narrow its search window (spec §4.2).
package anchor

import (
	"sort"

	"github.com/sentalign/sentalign/internal/normalize"
	"github.com/sentalign/sentalign/pkg/align"
)

// DefaultMaxAnchors is the default per-sentence anchor cap (spec §6).
const DefaultMaxAnchors = 3

// numericBonus is the priority bonus added to a numeric token's idf score
// (spec §4.2).
const numericBonus = 1.0

// minAnchorLength is the minimum normalized-token length for non-numeric
// anchor eligibility (spec §4.2).
const minAnchorLength = 5

// IDFTable holds the inverse-document-frequency score for every distinct
// token observed in a transcription's word stream (spec §4.2).
type IDFTable struct {
	counts map[string]int
	total  int
}

// BuildIDFTable computes per-token counts over the full transcription token
// stream and is read-only once constructed (spec §5).
func BuildIDFTable(words []align.Word) *IDFTable {
	t := &IDFTable{counts: make(map[string]int, len(words))}
	for _, w := range words {
		n := normalize.Token(w.Text)
		if n == "" {
			continue
		}
		t.counts[n]++
		t.total++
	}
	return t
}

// Score returns idf(t) = 1 / (1 + count(t)/N) for a normalized token.
// Tokens never observed in the transcription score 1.0 (maximally rare).
func (t *IDFTable) Score(token string) float64 {
	if t.total == 0 {
		return 1.0
	}
	c := t.counts[token]
	return 1.0 / (1.0 + float64(c)/float64(t.total))
}

// candidate is a scored anchor-eligible token awaiting top-K selection.
type candidate struct {
	pos   int
	token string
	score float64
}

// Select computes up to maxAnchors anchors for a sentence's normalized
// tokens, using idf over the given table plus the numeric priority bonus,
// excluding stopwords and tokens shorter than minAnchorLength unless
// numeric. Anchors are returned in original in-sentence order (spec §4.2).
func Select(tokens []string, table *IDFTable, maxAnchors int) []align.Anchor {
	if maxAnchors <= 0 {
		maxAnchors = DefaultMaxAnchors
	}

	candidates := make([]candidate, 0, len(tokens))
	for pos, tok := range tokens {
		if tok == "" || normalize.IsStopword(tok) {
			continue
		}
		numeric := normalize.IsNumeric(tok)
		if !numeric && len(tok) < minAnchorLength {
			continue
		}
		score := table.Score(tok)
		if numeric {
			score += numericBonus
		}
		candidates = append(candidates, candidate{pos: pos, token: tok, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxAnchors {
		candidates = candidates[:maxAnchors]
	}

	// Re-sort by original position, per spec §4.2 ("returned in their
	// original in-sentence order").
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].pos < candidates[j].pos
	})

	anchors := make([]align.Anchor, 0, len(candidates))
	for _, c := range candidates {
		anchors = append(anchors, align.Anchor{Pos: c.pos, Normalized: c.token})
	}
	return anchors
}
