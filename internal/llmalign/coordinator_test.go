package llmalign

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/internal/resilience"
	"github.com/sentalign/sentalign/pkg/align"
)

// mockOracle is a scriptable Oracle for coordinator tests, in the style of
// the teacher's provider mocks (construct-with-a-function-table, no
// assertion library).
type mockOracle struct {
	calls  int64
	handle func(text string) (Result, error)
}

func (m *mockOracle) AlignSentence(ctx context.Context, sentenceText, transcriptionView string) (Result, error) {
	atomic.AddInt64(&m.calls, 1)
	return m.handle(sentenceText)
}

func sentence(idx int, text string) align.Sentence {
	return align.Sentence{Idx: idx, Text: text, Tokens: []string{"x"}}
}

func wordStream() []align.Word {
	return []align.Word{
		{Text: "the", StartMS: 0, EndMS: 100},
		{Text: "sea", StartMS: 100, EndMS: 500},
		{Text: "is", StartMS: 500, EndMS: 600},
		{Text: "deep", StartMS: 600, EndMS: 900},
	}
}

func TestRunLLMAllSucceed(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{StartMS: 0, EndMS: 900, Confidence: 0.95}, nil
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodLLM
	c := New(wordStream(), aligner.DefaultConfig(), oracle, cfg)

	sentences := []align.Sentence{sentence(1, "The sea is deep."), sentence(2, "The sea is deep.")}
	outcomes, breakdown := c.Run(context.Background(), sentences, "the sea is deep")

	if breakdown.LLM != 2 {
		t.Fatalf("breakdown.LLM = %d, want 2", breakdown.LLM)
	}
	for _, o := range outcomes {
		if o.Span == nil || o.Status != align.StatusOK {
			t.Errorf("expected ok span, got %+v", o)
		}
	}
}

func TestRunLLMLowConfidenceIsWarning(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{StartMS: 0, EndMS: 900, Confidence: 0.5}, nil
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodLLM
	c := New(wordStream(), aligner.DefaultConfig(), oracle, cfg)

	outcomes, _ := c.Run(context.Background(), []align.Sentence{sentence(1, "The sea is deep.")}, "the sea is deep")
	if outcomes[0].Status != align.StatusWarning {
		t.Errorf("status = %s, want warning", outcomes[0].Status)
	}
}

func TestHybridFallsBackToLocalOnLLMFailure(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{}, ErrOracleFailure
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodHybrid
	cfg.MaxRetries = 0
	cfg.RetryDelay = time.Millisecond

	words := wordStream()
	c := New(words, aligner.DefaultConfig(), oracle, cfg)

	sentences := []align.Sentence{{Idx: 1, Text: "The sea is deep.", Tokens: []string{"the", "sea", "is", "deep"}}}
	outcomes, breakdown := c.Run(context.Background(), sentences, TranscriptionView(words))

	if breakdown.Local != 1 {
		t.Fatalf("breakdown.Local = %d, want 1 (fallback should have resolved it)", breakdown.Local)
	}
	if outcomes[0].Span == nil || outcomes[0].Span.Method != align.MethodLocal {
		t.Fatalf("expected local fallback span, got %+v", outcomes[0])
	}
}

func TestHybridPrefersLLMOnSuccess(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{StartMS: 10, EndMS: 20, Confidence: 0.99}, nil
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodHybrid
	words := wordStream()
	c := New(words, aligner.DefaultConfig(), oracle, cfg)

	sentences := []align.Sentence{{Idx: 1, Text: "The sea is deep.", Tokens: []string{"the", "sea", "is", "deep"}}}
	outcomes, breakdown := c.Run(context.Background(), sentences, TranscriptionView(words))

	if breakdown.LLM != 1 || breakdown.Local != 0 {
		t.Fatalf("breakdown = %+v, want LLM=1 Local=0", breakdown)
	}
	if outcomes[0].Span.Method != align.MethodLLM {
		t.Errorf("expected method llm, got %s", outcomes[0].Span.Method)
	}
}

func TestNilOracleDegradesToLocal(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Method = MethodHybrid
	words := wordStream()
	c := New(words, aligner.DefaultConfig(), nil, cfg)

	sentences := []align.Sentence{{Idx: 1, Text: "The sea is deep.", Tokens: []string{"the", "sea", "is", "deep"}}}
	outcomes, breakdown := c.Run(context.Background(), sentences, TranscriptionView(words))

	if breakdown.LLM != 0 {
		t.Errorf("breakdown.LLM = %d, want 0 when oracle is nil", breakdown.LLM)
	}
	if outcomes[0].Span == nil || outcomes[0].Span.Method != align.MethodLocal {
		t.Fatalf("expected local span with nil oracle, got %+v", outcomes[0])
	}
}

func TestRetriesOnTransportErrorThenSucceeds(t *testing.T) {
	t.Parallel()
	var attempt int64
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		n := atomic.AddInt64(&attempt, 1)
		if n < 2 {
			return Result{}, context.DeadlineExceeded
		}
		return Result{StartMS: 0, EndMS: 900, Confidence: 0.9}, nil
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodLLM
	cfg.RetryDelay = time.Millisecond
	c := New(wordStream(), aligner.DefaultConfig(), oracle, cfg)

	outcomes, _ := c.Run(context.Background(), []align.Sentence{sentence(1, "The sea is deep.")}, "x")
	if outcomes[0].Span == nil {
		t.Fatalf("expected success after retry, got %+v", outcomes[0])
	}
	if atomic.LoadInt64(&attempt) != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempt)
	}
}

func TestCircuitBreakerOpensAfterRepeatedFailuresAcrossSentences(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{}, ErrOracleFailure
	}}
	cfg := DefaultConfig()
	cfg.Method = MethodLLM
	cfg.MaxRetries = 0
	cfg.MaxWorkers = 1 // serialize so the breaker's consecutive count is deterministic
	cfg.CircuitBreaker.MaxFailures = 2
	c := New(wordStream(), aligner.DefaultConfig(), oracle, cfg)

	sentences := []align.Sentence{
		sentence(1, "one"), sentence(2, "two"), sentence(3, "three"), sentence(4, "four"),
	}
	outcomes, _ := c.Run(context.Background(), sentences, "x")

	for i, o := range outcomes {
		if o.Status != align.StatusNotAligned {
			t.Errorf("outcome[%d] status = %s, want not_aligned", i, o.Status)
		}
	}
	// Sentences after the breaker trips should fail fast with the
	// circuit-open reason rather than the transport-failure reason.
	if outcomes[len(outcomes)-1].Reason != "llm-circuit-open" {
		t.Errorf("last outcome reason = %q, want llm-circuit-open", outcomes[len(outcomes)-1].Reason)
	}
	if c.breaker.State() != resilience.StateOpen {
		t.Errorf("breaker state = %s, want open", c.breaker.State())
	}
}

func TestCompareReportsOverlap(t *testing.T) {
	t.Parallel()
	oracle := &mockOracle{handle: func(text string) (Result, error) {
		return Result{StartMS: 0, EndMS: 900, Confidence: 0.95}, nil
	}}
	cfg := DefaultConfig()
	words := wordStream()
	c := New(words, aligner.DefaultConfig(), oracle, cfg)

	sentences := []align.Sentence{{Idx: 1, Text: "The sea is deep.", Tokens: []string{"the", "sea", "is", "deep"}}}
	cmps := c.Compare(context.Background(), sentences, TranscriptionView(words))
	if len(cmps) != 1 {
		t.Fatalf("expected 1 comparison, got %d", len(cmps))
	}
	if cmps[0].LocalSpan == nil || cmps[0].LLMSpan == nil {
		t.Fatalf("expected both spans populated, got %+v", cmps[0])
	}
	if !cmps[0].MethodsAgree {
		t.Errorf("expected methods to agree on near-identical spans, overlap=%.3f", cmps[0].OverlapRatio)
	}
}
