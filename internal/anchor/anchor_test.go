package anchor

import (
	"testing"

	"github.com/sentalign/sentalign/pkg/align"
)

func words(texts ...string) []align.Word {
	out := make([]align.Word, len(texts))
	for i, t := range texts {
		out[i] = align.Word{Text: t, StartMS: int64(i * 100), EndMS: int64(i*100 + 100)}
	}
	return out
}

func TestSelectPrefersRareAndNumericTokens(t *testing.T) {
	t.Parallel()
	table := BuildIDFTable(words("the", "the", "the", "expedition", "1912", "the"))

	tokens := []string{"the", "expedition", "reached", "base", "camp", "in", "1912"}
	anchors := Select(tokens, table, 3)

	if len(anchors) == 0 {
		t.Fatal("expected at least one anchor")
	}
	for _, a := range anchors {
		if a.Normalized == "the" {
			t.Errorf("stopword %q should never be selected as an anchor", a.Normalized)
		}
	}

	// Anchors must come back in ascending position order.
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Pos <= anchors[i-1].Pos {
			t.Errorf("anchors not in ascending position order: %v", anchors)
		}
	}
}

func TestSelectRespectsMaxAnchors(t *testing.T) {
	t.Parallel()
	table := BuildIDFTable(words("alpha", "bravo", "charlie", "delta", "echo"))
	tokens := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	anchors := Select(tokens, table, 2)
	if len(anchors) != 2 {
		t.Fatalf("expected 2 anchors, got %d", len(anchors))
	}
}

func TestSelectEmptyForAllStopwords(t *testing.T) {
	t.Parallel()
	table := BuildIDFTable(words("the", "a", "of"))
	tokens := []string{"the", "a", "of"}
	anchors := Select(tokens, table, 3)
	if len(anchors) != 0 {
		t.Fatalf("expected no anchors for all-stopword sentence, got %v", anchors)
	}
}

func TestUnseenTokenScoresMaximallyRare(t *testing.T) {
	t.Parallel()
	table := BuildIDFTable(words("common", "common", "common"))
	if got := table.Score("neverseen"); got != 1.0 {
		t.Errorf("Score(unseen) = %v, want 1.0", got)
	}
}
