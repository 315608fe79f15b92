package score

import (
	"testing"

	"github.com/sentalign/sentalign/internal/normalize"
	"github.com/sentalign/sentalign/pkg/align"
)

func normTokens(words ...string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = normalize.Token(w)
	}
	return out
}

func TestSpanExactMatchScoresHigh(t *testing.T) {
	t.Parallel()
	sentence := normTokens("the", "sea", "is", "deep")
	window := normTokens("the", "sea", "is", "deep")
	c := Span(sentence, window, nil, 92, DefaultWeights(), 0, 3)
	if c.Composite < 0.85 {
		t.Errorf("expected high composite score for exact match, got %.3f (%s)", c.Composite, c)
	}
	if c.Coverage != 1.0 {
		t.Errorf("expected full coverage, got %.3f", c.Coverage)
	}
}

func TestSpanCompoundMatch(t *testing.T) {
	t.Parallel()
	sentence := []string{normalize.Token("ice-breaker")}
	window := normTokens("ice", "breaker")
	c := Span(sentence, window, nil, 92, DefaultWeights(), 0, 1)
	if c.Composite < 0.85 {
		t.Errorf("expected compound match to score high, got %.3f", c.Composite)
	}
}

func TestSpanAnchorBonus(t *testing.T) {
	t.Parallel()
	sentence := normTokens("the", "expedition", "reached", "base", "camp")
	window := normTokens("the", "expedition", "reached", "base", "camp")
	anchors := []align.Anchor{{Pos: 1, Normalized: "expedition"}}
	c := Span(sentence, window, anchors, 92, DefaultWeights(), 0, 4)
	if c.AnchorBonus != 1.0 {
		t.Errorf("expected anchor bonus 1.0 for present anchor, got %.3f", c.AnchorBonus)
	}
}

func TestSpanGapPenaltyPunishesExtraWords(t *testing.T) {
	t.Parallel()
	sentence := normTokens("the", "sea", "is", "deep")
	tightWindow := normTokens("the", "sea", "is", "deep")
	looseWindow := normTokens("the", "sea", "is", "very", "very", "very", "deep", "indeed", "today")

	tight := Span(sentence, tightWindow, nil, 92, DefaultWeights(), 0, 3)
	loose := Span(sentence, looseWindow, nil, 92, DefaultWeights(), 0, 8)

	if loose.GapPenalty <= tight.GapPenalty {
		t.Errorf("expected looser window to incur a higher gap penalty: loose=%.3f tight=%.3f", loose.GapPenalty, tight.GapPenalty)
	}
	if loose.Composite >= tight.Composite {
		t.Errorf("expected looser window to score lower overall: loose=%.3f tight=%.3f", loose.Composite, tight.Composite)
	}
}

func TestSpanBigramBonusCapped(t *testing.T) {
	t.Parallel()
	sentence := normTokens("a", "b", "c", "d", "e", "f", "g", "h")
	window := normTokens("a", "b", "c", "d", "e", "f", "g", "h")
	c := Span(sentence, window, nil, 92, DefaultWeights(), 0, 7)
	if c.BigramBonus > bigramBonusCap+1e-9 {
		t.Errorf("bigram bonus %.3f exceeds cap %.3f", c.BigramBonus, bigramBonusCap)
	}
}
