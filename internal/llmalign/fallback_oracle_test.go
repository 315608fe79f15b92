package llmalign

import (
	"context"
	"errors"
	"testing"

	"github.com/sentalign/sentalign/internal/resilience"
)

func TestFallbackOracle_FallsBackOnPrimaryFailure(t *testing.T) {
	t.Parallel()
	primary := &mockOracle{handle: func(text string) (Result, error) {
		return Result{}, ErrOracleFailure
	}}
	secondary := &mockOracle{handle: func(text string) (Result, error) {
		return Result{StartMS: 0, EndMS: 500, Confidence: 0.9}, nil
	}}

	fo := NewFallbackOracle(primary, "primary", resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 5, HalfOpenMax: 1},
	})
	fo.AddFallback("secondary", secondary)

	result, err := fo.AlignSentence(context.Background(), "hello", "hello world")
	if err != nil {
		t.Fatalf("AlignSentence: %v", err)
	}
	if result.EndMS != 500 {
		t.Errorf("expected result from secondary oracle, got %+v", result)
	}
}

func TestFallbackOracle_AllFailedReturnsWrappedError(t *testing.T) {
	t.Parallel()
	failing := &mockOracle{handle: func(text string) (Result, error) {
		return Result{}, ErrOracleFailure
	}}

	fo := NewFallbackOracle(failing, "primary", resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 5, HalfOpenMax: 1},
	})
	fo.AddFallback("secondary", failing)

	_, err := fo.AlignSentence(context.Background(), "hello", "hello world")
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Errorf("expected ErrAllFailed, got %v", err)
	}
}
