package llmalign

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/internal/observe"
	"github.com/sentalign/sentalign/internal/resilience"
	"github.com/sentalign/sentalign/pkg/align"
)

// Method selects which component(s) the Coordinator drives (spec §4.5).
type Method string

const (
	MethodLocal  Method = "local"
	MethodLLM    Method = "llm"
	MethodHybrid Method = "hybrid"
)

// llmLowConfidence is the threshold below which an otherwise-successful LLM
// result is accepted but recorded as a warning (spec §4.5).
const llmLowConfidence = 0.9

// Config holds the Hybrid Coordinator's tunables (spec §6 LLM section, §5).
type Config struct {
	Method     Method
	MaxWorkers int
	MaxRetries int
	Timeout    time.Duration
	RetryDelay time.Duration

	// CircuitBreaker tunes the breaker wrapped around every oracle call. A
	// down or rate-limited LLM provider trips it, so the rest of a build's
	// sentences fail fast to the local fallback (in hybrid mode) instead of
	// each paying MaxRetries against a provider that is already down.
	CircuitBreaker resilience.CircuitBreakerConfig
}

// DefaultConfig returns the spec's default LLM fan-out control values.
func DefaultConfig() Config {
	return Config{
		Method:     MethodHybrid,
		MaxWorkers: 5,
		MaxRetries: 3,
		Timeout:    30 * time.Second,
		RetryDelay: 500 * time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Name:         "llm-oracle",
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
			HalfOpenMax:  3,
		},
	}
}

// Coordinator orchestrates method selection, LLM fan-out, and the
// local/LLM merge discipline (spec §4.5). It is the only concurrent
// component in the alignment core (spec §5).
type Coordinator struct {
	cfg        Config
	oracle     Oracle // nil degrades hybrid to local (spec §9)
	words      []align.Word
	alignerCfg aligner.Config
	breaker    *resilience.CircuitBreaker
	metrics    *observe.Metrics
}

// New constructs a Coordinator. oracle may be nil; in that case MethodLLM
// and MethodHybrid degrade to MethodLocal with a logged notice.
func New(words []align.Word, alignerCfg aligner.Config, oracle Oracle, cfg Config) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		oracle:     oracle,
		words:      words,
		alignerCfg: alignerCfg,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		metrics:    observe.DefaultMetrics(),
	}
}

// SetMetrics overrides the Coordinator's metrics instance, letting callers
// (tests, in particular) supply one built from an isolated
// [metric.MeterProvider] instead of the package-level default.
func (c *Coordinator) SetMetrics(m *observe.Metrics) { c.metrics = m }

// Run executes the configured method over sentences and returns the merged,
// per-sentence outcomes plus the method breakdown for the report.
func (c *Coordinator) Run(ctx context.Context, sentences []align.Sentence, transcriptionView string) ([]aligner.Outcome, align.MethodBreakdown) {
	method := c.cfg.Method
	if method != MethodLocal && c.oracle == nil {
		slog.Warn("llm oracle not configured; degrading to local method", "requested_method", method)
		method = MethodLocal
	}

	var outcomes []aligner.Outcome
	var breakdown align.MethodBreakdown

	switch method {
	case MethodLocal:
		a := aligner.New(c.words, c.alignerCfg)
		outcomes = a.Align(sentences)
		breakdown = align.MethodBreakdown{Local: countResolved(outcomes)}

	case MethodLLM:
		outcomes, breakdown = c.runLLM(ctx, sentences, transcriptionView)

	case MethodHybrid:
		outcomes, breakdown = c.runHybrid(ctx, sentences, transcriptionView)

	default:
		a := aligner.New(c.words, c.alignerCfg)
		outcomes = a.Align(sentences)
		breakdown = align.MethodBreakdown{Local: countResolved(outcomes)}
	}

	c.recordOutcomes(ctx, outcomes)
	return outcomes, breakdown
}

// recordOutcomes emits the per-sentence status/method counters for a
// completed pass (spec §4.5's method breakdown, observed live rather than
// only at report-build time).
func (c *Coordinator) recordOutcomes(ctx context.Context, outcomes []aligner.Outcome) {
	if c.metrics == nil {
		return
	}
	for _, o := range outcomes {
		method := align.MethodLocal
		if o.Span != nil {
			method = o.Span.Method
		}
		c.metrics.RecordSentence(ctx, string(o.Status), string(method))
	}
}

// runLLM fans requests out across a bounded worker pool, retrying each
// sentence up to MaxRetries times with a fixed delay and enforcing a
// per-request timeout (spec §4.5, §5).
func (c *Coordinator) runLLM(ctx context.Context, sentences []align.Sentence, transcriptionView string) ([]aligner.Outcome, align.MethodBreakdown) {
	results := make([]aligner.Outcome, len(sentences))

	sem := semaphore.NewWeighted(int64(c.cfg.MaxWorkers))
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range sentences {
		i, s := i, s
		if err := sem.Acquire(gctx, 1); err != nil {
			results[i] = aligner.Outcome{Sentence: s, Status: align.StatusNotAligned, Reason: "cancelled"}
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			results[i] = c.alignOneLLM(gctx, s, transcriptionView)
			return nil
		})
	}
	_ = g.Wait()

	breakdown := align.MethodBreakdown{}
	for _, o := range results {
		if o.Span != nil && o.Span.Method == align.MethodLLM {
			breakdown.LLM++
		}
	}
	return results, breakdown
}

// alignOneLLM calls the oracle for one sentence with bounded retries and a
// per-request timeout. The coordinator does not validate the oracle's times
// for monotonicity — it trusts the oracle (spec §4.5).
func (c *Coordinator) alignOneLLM(ctx context.Context, s align.Sentence, transcriptionView string) aligner.Outcome {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return aligner.Outcome{Sentence: s, Status: align.StatusNotAligned, Reason: "cancelled"}
			}
		}

		var result Result
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		err := c.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = c.oracle.AlignSentence(reqCtx, s.Text, transcriptionView)
			return innerErr
		})
		cancel()

		if err == nil {
			status := align.StatusOK
			reason := ""
			if result.Confidence < llmLowConfidence {
				status = align.StatusWarning
				reason = "llm-low-confidence"
			}
			span := &align.ResolvedSpan{
				StartMS: result.StartMS,
				EndMS:   result.EndMS,
				Quality: align.Quality{Score: result.Confidence},
				Status:  status,
				Method:  align.MethodLLM,
			}
			return aligner.Outcome{Sentence: s, Span: span, Status: status, Reason: reason}
		}
		lastErr = err
		if errors.Is(err, resilience.ErrCircuitOpen) {
			// Provider is already known to be down; don't burn the retry
			// budget probing it again for this sentence.
			break
		}
		if errors.Is(err, ErrOracleFailure) {
			// A deterministic "could not align" signal is not worth
			// retrying against.
			break
		}
	}

	reason := "llm-transport-failure"
	if errors.Is(lastErr, resilience.ErrCircuitOpen) {
		reason = "llm-circuit-open"
	}
	slog.Debug("llm oracle failed for sentence", "sentence_idx", s.Idx, "error", lastErr)
	if c.metrics != nil {
		c.metrics.RecordLLMFailure(ctx, reason)
	}
	return aligner.Outcome{Sentence: s, Status: align.StatusNotAligned, Reason: reason}
}

// runHybrid runs the LLM over all sentences, then the Local Aligner over
// only the sentences where the LLM failed, merging index-by-index with the
// LLM winning on success (spec §4.5 hybrid merge).
func (c *Coordinator) runHybrid(ctx context.Context, sentences []align.Sentence, transcriptionView string) ([]aligner.Outcome, align.MethodBreakdown) {
	llmOutcomes, breakdown := c.runLLM(ctx, sentences, transcriptionView)

	var failed []align.Sentence
	for i, o := range llmOutcomes {
		if o.Span == nil {
			failed = append(failed, sentences[i])
		}
	}

	if len(failed) == 0 {
		return llmOutcomes, breakdown
	}

	localAligner := aligner.New(c.words, c.alignerCfg)
	localOutcomes := localAligner.Align(failed)
	breakdown.Local += countResolved(localOutcomes)

	localByIdx := make(map[int]aligner.Outcome, len(localOutcomes))
	for _, o := range localOutcomes {
		localByIdx[o.Sentence.Idx] = o
	}

	merged := make([]aligner.Outcome, len(llmOutcomes))
	for i, o := range llmOutcomes {
		if o.Span != nil {
			merged[i] = o
			continue
		}
		if lo, ok := localByIdx[sentences[i].Idx]; ok {
			merged[i] = lo
		} else {
			merged[i] = o
		}
	}
	return merged, breakdown
}

func countResolved(outcomes []aligner.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Span != nil {
			n++
		}
	}
	return n
}

// SpanComparison captures how the local and LLM methods agree on one
// sentence, for offline evaluation (SPEC_FULL.md §12, grounded on
// compare_alignment_methods.py).
type SpanComparison struct {
	SentenceIdx  int
	LocalSpan    *align.ResolvedSpan
	LLMSpan      *align.ResolvedSpan
	OverlapRatio float64
	MethodsAgree bool
}

// Compare runs both the local and LLM methods independently over the same
// sentences and reports per-sentence time-overlap agreement. It never
// mutates the Coordinator's configured Method.
func (c *Coordinator) Compare(ctx context.Context, sentences []align.Sentence, transcriptionView string) []SpanComparison {
	localOutcomes := aligner.New(c.words, c.alignerCfg).Align(sentences)
	llmOutcomes, _ := c.runLLM(ctx, sentences, transcriptionView)

	out := make([]SpanComparison, len(sentences))
	for i, s := range sentences {
		cmp := SpanComparison{SentenceIdx: s.Idx}
		if localOutcomes[i].Span != nil {
			cmp.LocalSpan = localOutcomes[i].Span
		}
		if llmOutcomes[i].Span != nil {
			cmp.LLMSpan = llmOutcomes[i].Span
		}
		cmp.OverlapRatio = overlapRatio(cmp.LocalSpan, cmp.LLMSpan)
		cmp.MethodsAgree = cmp.OverlapRatio > 0.8
		out[i] = cmp
	}
	return out
}

// overlapRatio returns the fraction of the union of [a,b]'s time ranges that
// their intersection occupies, or 0 if either span is nil or they don't
// overlap.
func overlapRatio(a, b *align.ResolvedSpan) float64 {
	if a == nil || b == nil {
		return 0
	}
	interStart := maxInt64(a.StartMS, b.StartMS)
	interEnd := minInt64(a.EndMS, b.EndMS)
	if interEnd <= interStart {
		return 0
	}
	unionStart := minInt64(a.StartMS, b.StartMS)
	unionEnd := maxInt64(a.EndMS, b.EndMS)
	if unionEnd <= unionStart {
		return 0
	}
	return float64(interEnd-interStart) / float64(unionEnd-unionStart)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// transcriptionViewFromWords renders the full word stream as a plain text
// view for the LLM oracle's transcription_view argument (spec §9).
func transcriptionViewFromWords(words []align.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// TranscriptionView is the exported form of transcriptionViewFromWords for
// callers assembling a Coordinator.Run invocation.
func TranscriptionView(words []align.Word) string { return transcriptionViewFromWords(words) }
