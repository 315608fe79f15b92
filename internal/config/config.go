// Package config provides the configuration schema and loader for the
// alignment core: the §6 tunables for the Local Aligner and Span Scorer, the
// Hybrid Coordinator's LLM settings, and the optional Postgres report store.
package config

import (
	"time"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/internal/llmalign"
	"github.com/sentalign/sentalign/internal/resilience"
	"github.com/sentalign/sentalign/internal/score"
)

// LogLevel controls slog verbosity for the sentalign CLI.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is one of the four recognized levels or empty
// (unset).
func (l LogLevel) IsValid() bool {
	switch l {
	case "", LogDebug, LogInfo, LogWarn, LogError:
		return true
	default:
		return false
	}
}

// Method selects which alignment method the build runs (spec §4.5).
type Method string

const (
	MethodLocal  Method = "local"
	MethodLLM    Method = "llm"
	MethodHybrid Method = "hybrid"
)

// IsValid reports whether m is one of the three recognized methods.
func (m Method) IsValid() bool {
	switch m {
	case MethodLocal, MethodLLM, MethodHybrid:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for the alignment core.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Align  AlignConfig  `yaml:"align"`
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
}

// ServerConfig holds process-wide settings unrelated to alignment tuning.
type ServerConfig struct {
	// LogLevel controls slog verbosity. Valid values: "debug", "info",
	// "warn", "error".
	LogLevel LogLevel `yaml:"log_level"`
}

// AlignConfig mirrors every tunable in spec.md §6's configuration table.
type AlignConfig struct {
	// Method selects local, llm, or hybrid (spec §4.5). Default "hybrid".
	Method Method `yaml:"method"`

	WindowTokens             int     `yaml:"window_tokens"`
	ElasticGap               int     `yaml:"elastic_gap"`
	MinAccept                float64 `yaml:"min_accept"`
	WarnAccept               float64 `yaml:"warn_accept"`
	TokenRatioCutoff         float64 `yaml:"token_ratio_cutoff"`
	FallbackExpandWindow     int     `yaml:"fallback_expand_window"`
	FallbackElasticGap       int     `yaml:"fallback_elastic_gap"`
	FallbackTokenRatio       float64 `yaml:"fallback_token_ratio"`
	PadMS                    int64   `yaml:"pad_ms"`
	MaxAnchors               int     `yaml:"max_anchors"`
	CoverageMin              float64 `yaml:"coverage_min"`
	SmallSentenceCoverageMin float64 `yaml:"small_sentence_coverage_min"`

	// Weights overrides the Span Scorer's default sub-signal coefficients
	// (spec §4.3). Zero value leaves the default weighting in place.
	Weights WeightsConfig `yaml:"weights"`
}

// WeightsConfig overrides score.Weights field-by-field; a zero field falls
// back to score.DefaultWeights()'s value for that sub-signal.
type WeightsConfig struct {
	TokenSimilarity float64 `yaml:"token_similarity"`
	Coverage        float64 `yaml:"coverage"`
	GapPenalty      float64 `yaml:"gap_penalty"`
	AnchorBonus     float64 `yaml:"anchor_bonus"`
	BigramBonus     float64 `yaml:"bigram_bonus"`
}

// LLMConfig configures the optional Hybrid Coordinator LLM oracle (spec §6
// LLM section, §9 "optional LLM dependency").
type LLMConfig struct {
	// Provider selects the oracle implementation. Currently only "openai"
	// (also covers any OpenAI-compatible endpoint reachable via BaseURL,
	// such as xAI's Grok) is supported.
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`

	// Fallback optionally configures a second OpenAI-compatible endpoint
	// that is tried, within each of the Hybrid Coordinator's attempts,
	// whenever a call to the primary provider fails or the primary's
	// breaker is open. Leave Fallback.APIKey empty to disable.
	Fallback FallbackLLMConfig `yaml:"fallback"`

	MaxWorkers     int `yaml:"max_workers"`
	MaxRetries     int `yaml:"max_retries"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	RetryDelayMS   int `yaml:"retry_delay_ms"`

	// CircuitBreaker tunes the breaker the Hybrid Coordinator wraps around
	// oracle calls so a down LLM provider fails fast for the rest of a
	// build instead of paying MaxRetries per sentence.
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// FallbackLLMConfig configures a secondary OpenAI-compatible provider for
// the llmalign.FallbackOracle chain.
type FallbackLLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// CircuitBreakerConfig mirrors resilience.CircuitBreakerConfig's tunables.
type CircuitBreakerConfig struct {
	MaxFailures        int `yaml:"max_failures"`
	ResetTimeoutSecond int `yaml:"reset_timeout_seconds"`
	HalfOpenMax        int `yaml:"half_open_max"`
}

// StoreConfig configures the optional Postgres persistence of
// AlignmentReport / ResolvedSpan rows (SPEC_FULL.md §11/§13).
type StoreConfig struct {
	// PostgresDSN is the PostgreSQL connection string. Empty disables
	// persistence entirely.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default returns the spec's default tuning (spec.md §6 table), with no LLM
// or store configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{LogLevel: LogInfo},
		Align: AlignConfig{
			Method:                   MethodHybrid,
			WindowTokens:             4000,
			ElasticGap:               10,
			MinAccept:                0.85,
			WarnAccept:               0.78,
			TokenRatioCutoff:         92,
			FallbackExpandWindow:     1000,
			FallbackElasticGap:       18,
			FallbackTokenRatio:       88,
			PadMS:                    100,
			MaxAnchors:               3,
			CoverageMin:              0.80,
			SmallSentenceCoverageMin: 0.67,
		},
		LLM: LLMConfig{
			MaxWorkers:     5,
			MaxRetries:     3,
			TimeoutSeconds: 30,
			RetryDelayMS:   500,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:        5,
				ResetTimeoutSecond: 30,
				HalfOpenMax:        3,
			},
		},
	}
}

// ToAlignerConfig translates AlignConfig into the Local Aligner's tunables,
// applying any Weights override over score.DefaultWeights().
func (c Config) ToAlignerConfig() aligner.Config {
	w := score.DefaultWeights()
	if v := c.Align.Weights.TokenSimilarity; v != 0 {
		w.TokenSimilarity = v
	}
	if v := c.Align.Weights.Coverage; v != 0 {
		w.Coverage = v
	}
	if v := c.Align.Weights.GapPenalty; v != 0 {
		w.GapPenalty = v
	}
	if v := c.Align.Weights.AnchorBonus; v != 0 {
		w.AnchorBonus = v
	}
	if v := c.Align.Weights.BigramBonus; v != 0 {
		w.BigramBonus = v
	}

	return aligner.Config{
		WindowTokens:             c.Align.WindowTokens,
		ElasticGap:               c.Align.ElasticGap,
		MinAccept:                c.Align.MinAccept,
		WarnAccept:               c.Align.WarnAccept,
		TokenRatioCutoff:         c.Align.TokenRatioCutoff,
		FallbackExpandWindow:     c.Align.FallbackExpandWindow,
		FallbackElasticGap:       c.Align.FallbackElasticGap,
		FallbackTokenRatio:       c.Align.FallbackTokenRatio,
		PadMS:                    c.Align.PadMS,
		MaxAnchors:               c.Align.MaxAnchors,
		Weights:                  w,
		CoverageMin:              c.Align.CoverageMin,
		SmallSentenceCoverageMin: c.Align.SmallSentenceCoverageMin,
	}
}

// ToCoordinatorConfig translates LLMConfig and AlignConfig.Method into the
// Hybrid Coordinator's tunables.
func (c Config) ToCoordinatorConfig() llmalign.Config {
	return llmalign.Config{
		Method:     llmalign.Method(c.Align.Method),
		MaxWorkers: c.LLM.MaxWorkers,
		MaxRetries: c.LLM.MaxRetries,
		Timeout:    time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		RetryDelay: time.Duration(c.LLM.RetryDelayMS) * time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Name:         "llm-oracle",
			MaxFailures:  c.LLM.CircuitBreaker.MaxFailures,
			ResetTimeout: time.Duration(c.LLM.CircuitBreaker.ResetTimeoutSecond) * time.Second,
			HalfOpenMax:  c.LLM.CircuitBreaker.HalfOpenMax,
		},
	}
}
