package aligner

import (
	"testing"

	"github.com/sentalign/sentalign/internal/anchor"
	"github.com/sentalign/sentalign/pkg/align"
)

func word(text string, start, end int64) align.Word {
	return align.Word{Text: text, StartMS: start, EndMS: end}
}

func buildAligner(t *testing.T, words []align.Word) *Aligner {
	t.Helper()
	return New(words, DefaultConfig())
}

func prepare(sentences []align.Sentence, words []align.Word) []align.Sentence {
	table := anchor.BuildIDFTable(words)
	return PrepareSentences(sentences, table, anchor.DefaultMaxAnchors)
}

func TestExactMatchShort(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("the", 0, 100),
		word("sea", 100, 500),
		word("is", 500, 600),
		word("deep", 600, 900),
	}
	sentences := prepare([]align.Sentence{{Idx: 1, Text: "The sea is deep."}}, words)

	a := buildAligner(t, words)
	outcomes := a.Align(sentences)
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.Span == nil {
		t.Fatalf("expected a resolved span, got not_aligned (reason=%s)", o.Reason)
	}
	if o.Status != align.StatusOK {
		t.Errorf("status = %s, want ok (score=%.3f)", o.Status, o.Span.Quality.Score)
	}
	if o.Span.StartMS != 0 || o.Span.EndMS != 1000 {
		t.Errorf("span = (%d,%d), want (0,1000)", o.Span.StartMS, o.Span.EndMS)
	}
	if o.Span.Quality.Score < 0.85 {
		t.Errorf("score = %.3f, want >= 0.85", o.Span.Quality.Score)
	}
}

func TestContractionAlignsTwoWords(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("he", 0, 100),
		word("do", 100, 200),
		word("not", 200, 300),
		word("know", 300, 400),
	}
	sentences := prepare([]align.Sentence{{Idx: 1, Text: "He don't know."}}, words)

	a := buildAligner(t, words)
	outcomes := a.Align(sentences)
	o := outcomes[0]
	if o.Span == nil {
		t.Fatalf("expected resolved span, got not_aligned (reason=%s)", o.Reason)
	}
	if o.Span.StartIdx != 0 || o.Span.EndIdx != 3 {
		t.Errorf("span indices = [%d,%d], want [0,3]", o.Span.StartIdx, o.Span.EndIdx)
	}
}

func TestCompoundHyphenMatch(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("the", 0, 100),
		word("ice", 100, 200),
		word("breaker", 200, 400),
		word("sailed", 400, 500),
	}
	sentences := prepare([]align.Sentence{{Idx: 1, Text: "The ice-breaker sailed."}}, words)

	a := buildAligner(t, words)
	outcomes := a.Align(sentences)
	o := outcomes[0]
	if o.Span == nil {
		t.Fatalf("expected resolved span, got not_aligned (reason=%s)", o.Reason)
	}
	if o.Span.Quality.Score < 0.85 {
		t.Errorf("score = %.3f, want >= 0.85", o.Span.Quality.Score)
	}
}

func TestUnalignableSentenceDoesNotAdvanceCursor(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("completely", 0, 100),
		word("unrelated", 100, 200),
		word("content", 200, 300),
		word("the", 300, 400),
		word("sea", 400, 500),
		word("is", 500, 600),
		word("deep", 600, 900),
	}
	sentences := prepare([]align.Sentence{
		{Idx: 1, Text: "Xyzzyxqqz plughzzork wibbleflax."},
		{Idx: 2, Text: "The sea is deep."},
	}, words)

	a := buildAligner(t, words)
	cursorBefore := a.Cursor()
	outcomes := a.Align(sentences[:1])

	if outcomes[0].Status != align.StatusNotAligned {
		t.Errorf("expected sentence 1 not_aligned, got %s", outcomes[0].Status)
	}
	if a.Cursor() != cursorBefore {
		t.Errorf("cursor moved from %d to %d after sentence 1 failed", cursorBefore, a.Cursor())
	}
	outcomes = append(outcomes, a.Align(sentences[1:])...)
	if outcomes[1].Span == nil {
		t.Fatalf("expected sentence 2 to still align correctly, got reason=%s", outcomes[1].Reason)
	}
	if outcomes[1].Span.StartIdx != 3 {
		t.Errorf("sentence 2 should start at word index 3, got %d", outcomes[1].Span.StartIdx)
	}
}

func TestEmptySentenceNotAligned(t *testing.T) {
	t.Parallel()
	words := []align.Word{word("hello", 0, 100)}
	a := buildAligner(t, words)
	outcomes := a.Align([]align.Sentence{{Idx: 1, Text: "...", Tokens: nil}})
	if outcomes[0].Status != align.StatusNotAligned || outcomes[0].Reason != "empty" {
		t.Errorf("expected empty/not_aligned, got status=%s reason=%s", outcomes[0].Status, outcomes[0].Reason)
	}
}

func TestAnchorFreeSentenceAlignsWithoutNarrowing(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("it", 0, 100),
		word("was", 100, 200),
		word("not", 200, 300),
		word("so", 300, 400),
	}
	sentences := prepare([]align.Sentence{{Idx: 1, Text: "It was not so."}}, words)
	if len(sentences[0].Anchors) != 0 {
		t.Fatalf("expected an anchor-free sentence (all stopwords), got %v", sentences[0].Anchors)
	}

	a := buildAligner(t, words)
	outcomes := a.Align(sentences)
	if outcomes[0].Span == nil {
		t.Fatalf("expected resolved span, got not_aligned (reason=%s)", outcomes[0].Reason)
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	words := []align.Word{
		word("the", 0, 100),
		word("sea", 100, 500),
		word("is", 500, 600),
		word("deep", 600, 900),
	}
	sentences := prepare([]align.Sentence{{Idx: 1, Text: "The sea is deep."}}, words)

	run := func() align.ResolvedSpan {
		a := buildAligner(t, words)
		o := a.Align(sentences)[0]
		return *o.Span
	}

	first := run()
	second := run()
	if first != second {
		t.Errorf("alignment not deterministic: %+v vs %+v", first, second)
	}
}
