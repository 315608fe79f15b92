package report

import (
	"strings"
	"testing"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/pkg/align"
)

func outcome(idx int, status align.Status, method align.Method, score float64) aligner.Outcome {
	o := aligner.Outcome{
		Sentence: align.Sentence{Idx: idx, Text: "sentence text"},
		Status:   status,
	}
	if status != align.StatusNotAligned {
		o.Span = &align.ResolvedSpan{Status: status, Method: method, Quality: align.Quality{Score: score}}
	}
	return o
}

func TestBuildCountsOkAsAlignedOnly(t *testing.T) {
	t.Parallel()
	rep := Build([]aligner.Outcome{outcome(1, align.StatusOK, align.MethodLocal, 0.9)}, align.MethodBreakdown{Local: 1})
	if rep.Aligned != 1 || rep.Warnings != 0 || rep.Unaligned != 0 {
		t.Fatalf("expected 1 aligned, 0 warnings, 0 unaligned, got %+v", rep)
	}
	if len(rep.Details) != 0 {
		t.Errorf("ok sentences should not appear in details, got %d", len(rep.Details))
	}
}

func TestBuildFallbackIncrementsBothAlignedAndWarnings(t *testing.T) {
	t.Parallel()
	// Per spec §9 Open Question: fallback-accepted spans count toward both
	// aligned and warnings.
	rep := Build([]aligner.Outcome{outcome(1, align.StatusFallback, align.MethodLocal, 0.80)}, align.MethodBreakdown{Local: 1})
	if rep.Aligned != 1 {
		t.Errorf("expected fallback to count as aligned, got %d", rep.Aligned)
	}
	if rep.Warnings != 1 {
		t.Errorf("expected fallback to count as a warning, got %d", rep.Warnings)
	}
	if len(rep.Details) != 1 {
		t.Fatalf("expected one detail entry, got %d", len(rep.Details))
	}
}

func TestBuildNotAlignedCountsUnaligned(t *testing.T) {
	t.Parallel()
	rep := Build([]aligner.Outcome{outcome(1, align.StatusNotAligned, "", 0)}, align.MethodBreakdown{})
	if rep.Unaligned != 1 || rep.Aligned != 0 {
		t.Fatalf("expected 1 unaligned, 0 aligned, got %+v", rep)
	}
	if len(rep.Details) != 1 {
		t.Fatalf("expected one detail entry for not_aligned, got %d", len(rep.Details))
	}
}

func TestBuildEntryCountMatchesSentenceCount(t *testing.T) {
	t.Parallel()
	outcomes := []aligner.Outcome{
		outcome(1, align.StatusOK, align.MethodLocal, 0.9),
		outcome(2, align.StatusWarning, align.MethodLocal, 0.79),
		outcome(3, align.StatusNotAligned, "", 0),
	}
	rep := Build(outcomes, align.MethodBreakdown{Local: 2})
	if rep.NumSentences != 3 {
		t.Errorf("expected NumSentences 3, got %d", rep.NumSentences)
	}
}

func TestApplyOverridesReplacesSpanAndMarksManual(t *testing.T) {
	t.Parallel()
	outcomes := []aligner.Outcome{outcome(1, align.StatusOK, align.MethodLocal, 0.9)}
	overrides := []align.ManualOverride{{SentenceIdx: 1, StartMS: 500, EndMS: 1500}}

	out, err := ApplyOverrides(outcomes, overrides)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	span := out[0].Span
	if span.Status != align.StatusManual || span.Method != align.MethodManual {
		t.Fatalf("expected manual status/method, got %+v", span)
	}
	if span.StartMS != 500 || span.EndMS != 1500 {
		t.Errorf("expected override times to be applied, got %+v", span)
	}
	if span.Quality.Score != 1.0 {
		t.Errorf("expected manual override quality score fixed at 1.0, got %.2f", span.Quality.Score)
	}
}

func TestApplyOverridesRejectsInvertedRange(t *testing.T) {
	t.Parallel()
	outcomes := []aligner.Outcome{outcome(1, align.StatusOK, align.MethodLocal, 0.9)}
	overrides := []align.ManualOverride{{SentenceIdx: 1, StartMS: 1500, EndMS: 500}}

	out, err := ApplyOverrides(outcomes, overrides)
	if err == nil {
		t.Fatal("expected an error for start >= end")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("expected rejection message, got %q", err.Error())
	}
	// Rejected override leaves the computed span in place (spec §7).
	if out[0].Span.Status != align.StatusOK {
		t.Errorf("expected computed span to remain in place after rejection, got %+v", out[0].Span)
	}
}

func TestApplyOverridesUnknownSentenceIdxIsReportedNotFatal(t *testing.T) {
	t.Parallel()
	outcomes := []aligner.Outcome{outcome(1, align.StatusOK, align.MethodLocal, 0.9)}
	overrides := []align.ManualOverride{{SentenceIdx: 99, StartMS: 0, EndMS: 100}}

	out, err := ApplyOverrides(outcomes, overrides)
	if err == nil {
		t.Fatal("expected an error for an unknown sentence index")
	}
	if len(out) != 1 || out[0].Span.Status != align.StatusOK {
		t.Errorf("expected existing outcome to be untouched, got %+v", out)
	}
}
