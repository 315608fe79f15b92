// Package score implements the Span Scorer (spec §4.3): evaluating a
// candidate word-index range against a sentence's tokens and anchors,
// producing a composite score from five weighted sub-signals.
package score

import (
	"strings"

	"github.com/sentalign/sentalign/internal/normalize"
	"github.com/sentalign/sentalign/pkg/align"
)

// Weights holds the composite score's sub-signal coefficients (spec §4.3).
// Defaults match score = 0.50·τ + 0.25·c − 0.20·g + 0.08·α + 0.05·β.
type Weights struct {
	TokenSimilarity float64
	Coverage        float64
	GapPenalty      float64
	AnchorBonus     float64
	BigramBonus     float64
}

// DefaultWeights returns the spec's default weighting.
func DefaultWeights() Weights {
	return Weights{
		TokenSimilarity: 0.50,
		Coverage:        0.25,
		GapPenalty:      0.20,
		AnchorBonus:     0.08,
		BigramBonus:     0.05,
	}
}

const (
	stopwordWeight = 0.5
	numericWeight  = 1.25
	defaultWeight  = 1.0

	// compoundMinLength is the length threshold beyond which a sentence
	// token is eligible for 2-/3-word concatenation matching (spec §4.3).
	// Sentence tokens are already hyphen-collapsed by normalize.Token, so
	// the hyphen-presence half of the spec's "hyphen or length > 8"
	// eligibility rule never fires post-normalization; the length rule
	// alone still covers the documented compound cases (e.g.
	// "ice-breaker" -> "icebreaker", length 10).
	compoundMinLength = 8

	compoundMatchScore = 0.95

	gapPerExtraWord   = 0.02
	gapPerUnmatched   = 0.03
	bigramIncrement   = 0.01
	bigramBonusCap    = 0.05
	maxBigramsChecked = 5
)

// Span computes the composite CandidateSpan score for sentence tokens S
// against window tokens W (already normalize.Token-normalized, in order),
// given the sentence's anchors and a tokens_match threshold (0-100 scale).
// startIdx/endIdx are carried through to the returned CandidateSpan
// unmodified; callers own word-stream index bookkeeping.
func Span(sentenceTokens, windowTokens []string, anchors []align.Anchor, threshold float64, weights Weights, startIdx, endIdx int) align.CandidateSpan {
	tau, matched := tokenSimilarity(sentenceTokens, windowTokens, threshold)
	coverage := 0.0
	if len(sentenceTokens) > 0 {
		coverage = float64(matched) / float64(len(sentenceTokens))
	}
	gap := gapPerExtraWord*maxFloat(0, float64(len(windowTokens)-len(sentenceTokens))) +
		gapPerUnmatched*float64(len(sentenceTokens)-matched)
	anchorBonus := anchorBonus(anchors, windowTokens, threshold)
	bigram := bigramBonus(sentenceTokens, windowTokens)

	composite := weights.TokenSimilarity*tau +
		weights.Coverage*coverage -
		weights.GapPenalty*gap +
		weights.AnchorBonus*anchorBonus +
		weights.BigramBonus*bigram

	return align.CandidateSpan{
		StartIdx:        startIdx,
		EndIdx:          endIdx,
		TokenSimilarity: tau,
		Coverage:        coverage,
		GapPenalty:      gap,
		AnchorBonus:     anchorBonus,
		BigramBonus:     bigram,
		Composite:       composite,
	}
}

// tokenSimilarity computes τ (weighted mean best-match similarity) and the
// count of sentence tokens with any match, per spec §4.3.
func tokenSimilarity(sentenceTokens, windowTokens []string, threshold float64) (tau float64, matched int) {
	var weightedSum, weightTotal float64

	for _, s := range sentenceTokens {
		w := tokenWeight(s)
		weightTotal += w

		best := bestMatchSimilarity(s, windowTokens, threshold)
		if best == 0 && len(s) > compoundMinLength {
			if compoundMatch(s, windowTokens) {
				best = compoundMatchScore
			}
		}
		if best == 0 {
			// A contraction or a spelled year can cover two window words
			// ("don't" ↔ "do not", "1912" ↔ "nineteen twelve").
			for i := 0; i+1 < len(windowTokens) && best == 0; i++ {
				if normalize.TokensMatch(s, windowTokens[i]+" "+windowTokens[i+1], threshold) {
					best = compoundMatchScore
				}
			}
		}
		if best > 0 {
			matched++
		}
		weightedSum += best * w
	}

	if weightTotal > 0 {
		tau = weightedSum / weightTotal
	}
	return tau, matched
}

// tokenWeight returns the per-token weight used in the token-similarity
// weighted mean (spec §4.3).
func tokenWeight(s string) float64 {
	switch {
	case normalize.IsStopword(s):
		return stopwordWeight
	case normalize.IsNumeric(s):
		return numericWeight
	default:
		return defaultWeight
	}
}

// bestMatchSimilarity finds the best-matching window token for s under
// normalize.TokensMatch and returns its edit-ratio similarity in [0,1], or 0
// if nothing in the window matches.
func bestMatchSimilarity(s string, windowTokens []string, threshold float64) float64 {
	best := 0.0
	for _, w := range windowTokens {
		if !normalize.TokensMatch(s, w, threshold) {
			continue
		}
		sim := normalize.EditRatio(s, w) / 100
		if s == w {
			sim = 1.0
		}
		if sim > best {
			best = sim
		}
	}
	return best
}

// compoundMatch tries 2- and 3-word concatenations of consecutive window
// tokens (hyphens already absent post-normalization) against a compound
// sentence token (spec §4.3 compound-word resilience).
func compoundMatch(s string, windowTokens []string) bool {
	for i := range windowTokens {
		if i+1 < len(windowTokens) && windowTokens[i]+windowTokens[i+1] == s {
			return true
		}
		if i+2 < len(windowTokens) && windowTokens[i]+windowTokens[i+1]+windowTokens[i+2] == s {
			return true
		}
	}
	return false
}

// anchorBonus computes α: the fraction of anchors whose token matches some
// window token (spec §4.3).
func anchorBonus(anchors []align.Anchor, windowTokens []string, threshold float64) float64 {
	if len(anchors) == 0 {
		return 0
	}
	hit := 0
	for _, a := range anchors {
		if bestMatchSimilarity(a.Normalized, windowTokens, threshold) > 0 {
			hit++
		}
	}
	return float64(hit) / float64(len(anchors))
}

// bigramBonus computes β: for up to the first 5 bigrams of the sentence
// tokens, count how many occur as a substring within the space-joined
// window tokens, contributing 0.01 each, capped at 0.05 (spec §4.3).
func bigramBonus(sentenceTokens, windowTokens []string) float64 {
	if len(sentenceTokens) < 2 {
		return 0
	}
	joined := strings.Join(windowTokens, " ")

	count := 0
	n := len(sentenceTokens) - 1
	if n > maxBigramsChecked {
		n = maxBigramsChecked
	}
	for i := 0; i < n; i++ {
		bigram := sentenceTokens[i] + " " + sentenceTokens[i+1]
		if strings.Contains(joined, bigram) {
			count++
		}
	}
	bonus := float64(count) * bigramIncrement
	if bonus > bigramBonusCap {
		bonus = bigramBonusCap
	}
	return bonus
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
