// Package report assembles the final AlignmentReport from a build's
// per-sentence outcomes, applying any manual overrides supplied by the
// caller (spec §7).
package report

import (
	"fmt"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/pkg/align"
)

// Build turns a set of per-sentence Outcomes plus a method breakdown into an
// AlignmentReport. Outcomes must already reflect whichever method
// (local/llm/hybrid) the caller ran (spec §4.5/§7).
func Build(outcomes []aligner.Outcome, methods align.MethodBreakdown) align.AlignmentReport {
	rep := align.AlignmentReport{
		NumSentences: len(outcomes),
		Methods:      methods,
	}

	for _, o := range outcomes {
		switch o.Status {
		case align.StatusOK:
			rep.Aligned++
		case align.StatusWarning:
			// Warnings are aligned sentences that also count as warnings
			// (spec §7: "both aligned and warnings increment together").
			rep.Aligned++
			rep.Warnings++
			rep.Details = append(rep.Details, detailFor(o))
		case align.StatusFallback:
			rep.Aligned++
			rep.Warnings++
			rep.Details = append(rep.Details, detailFor(o))
		case align.StatusNotAligned:
			rep.Unaligned++
			rep.Details = append(rep.Details, detailFor(o))
		case align.StatusManual:
			rep.Aligned++
			rep.Details = append(rep.Details, detailFor(o))
		}
	}

	return rep
}

func detailFor(o aligner.Outcome) align.Detail {
	method := align.MethodLocal
	score := 0.0
	if o.Span != nil {
		method = o.Span.Method
		score = o.Span.Quality.Score
	}
	return align.NewDetail(o.Sentence, o.Status, score, o.Reason, method, o.Best)
}

// ApplyOverrides replaces the ResolvedSpan for each overridden sentence with
// a manual span built from the caller-supplied millisecond range, validating
// each override before applying it (spec §7). Outcomes are matched by
// Sentence.Idx; an override naming an index absent from outcomes is
// reported as an error but does not abort the remaining overrides.
func ApplyOverrides(outcomes []aligner.Outcome, overrides []align.ManualOverride) ([]aligner.Outcome, error) {
	byIdx := make(map[int]int, len(outcomes))
	for i, o := range outcomes {
		byIdx[o.Sentence.Idx] = i
	}

	var errs []error
	out := make([]aligner.Outcome, len(outcomes))
	copy(out, outcomes)

	for _, ov := range overrides {
		if err := validateOverride(ov); err != nil {
			errs = append(errs, fmt.Errorf("sentence %d: %w", ov.SentenceIdx, err))
			continue
		}
		i, ok := byIdx[ov.SentenceIdx]
		if !ok {
			errs = append(errs, fmt.Errorf("sentence %d: %w: no such sentence in this build", ov.SentenceIdx, align.ErrInvalidManualAdjustment))
			continue
		}
		out[i].Span = &align.ResolvedSpan{
			StartMS: ov.StartMS,
			EndMS:   ov.EndMS,
			Quality: align.Quality{Score: 1.0, Note: "manual override"},
			Status:  align.StatusManual,
			Method:  align.MethodManual,
		}
		out[i].Status = align.StatusManual
		out[i].Reason = "manual override"
	}

	if len(errs) > 0 {
		return out, joinErrors(errs)
	}
	return out, nil
}

func validateOverride(ov align.ManualOverride) error {
	if ov.EndMS <= ov.StartMS {
		return fmt.Errorf("%w: end_ms (%d) must be after start_ms (%d)", align.ErrInvalidManualAdjustment, ov.EndMS, ov.StartMS)
	}
	if ov.StartMS < 0 {
		return fmt.Errorf("%w: start_ms must not be negative", align.ErrInvalidManualAdjustment)
	}
	return nil
}

func joinErrors(errs []error) error {
	wrapped := make([]error, len(errs))
	copy(wrapped, errs)
	return fmt.Errorf("report: %d manual override(s) rejected: %w", len(wrapped), joinAll(wrapped))
}

func joinAll(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msg := errs[0]
	for _, e := range errs[1:] {
		msg = fmt.Errorf("%w; %w", msg, e)
	}
	return msg
}
