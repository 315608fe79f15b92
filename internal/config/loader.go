package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over top of [Default] (so
// fields absent from the document keep the spec's default value) and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that cfg contains a coherent set of values, returning a
// joined error listing every validation failure found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if !cfg.Align.Method.IsValid() {
		errs = append(errs, fmt.Errorf("align.method %q is invalid; valid values: local, llm, hybrid", cfg.Align.Method))
	}
	if cfg.Align.WindowTokens <= 0 {
		errs = append(errs, fmt.Errorf("align.window_tokens must be positive, got %d", cfg.Align.WindowTokens))
	}
	if cfg.Align.ElasticGap < 0 || cfg.Align.FallbackElasticGap < 0 {
		errs = append(errs, errors.New("align.elastic_gap and align.fallback_elastic_gap must not be negative"))
	}
	if !inUnitRange(cfg.Align.MinAccept) {
		errs = append(errs, fmt.Errorf("align.min_accept must be in [0,1], got %v", cfg.Align.MinAccept))
	}
	if !inUnitRange(cfg.Align.WarnAccept) {
		errs = append(errs, fmt.Errorf("align.warn_accept must be in [0,1], got %v", cfg.Align.WarnAccept))
	}
	if cfg.Align.WarnAccept > cfg.Align.MinAccept {
		errs = append(errs, fmt.Errorf("align.warn_accept (%v) must not exceed align.min_accept (%v)", cfg.Align.WarnAccept, cfg.Align.MinAccept))
	}
	if cfg.Align.TokenRatioCutoff < 0 || cfg.Align.TokenRatioCutoff > 100 {
		errs = append(errs, fmt.Errorf("align.token_ratio_cutoff must be in [0,100], got %v", cfg.Align.TokenRatioCutoff))
	}
	if cfg.Align.FallbackTokenRatio < 0 || cfg.Align.FallbackTokenRatio > 100 {
		errs = append(errs, fmt.Errorf("align.fallback_token_ratio must be in [0,100], got %v", cfg.Align.FallbackTokenRatio))
	}
	if cfg.Align.PadMS < 0 {
		errs = append(errs, errors.New("align.pad_ms must not be negative"))
	}
	if cfg.Align.MaxAnchors <= 0 {
		errs = append(errs, fmt.Errorf("align.max_anchors must be positive, got %d", cfg.Align.MaxAnchors))
	}

	if cfg.Align.Method != MethodLocal {
		if cfg.LLM.Provider == "" {
			slog.Warn("align.method requires an LLM oracle but llm.provider is not configured; hybrid/llm will degrade to local", "method", cfg.Align.Method)
		} else if cfg.LLM.Provider != "openai" {
			errs = append(errs, fmt.Errorf("llm.provider %q is not supported; valid values: openai", cfg.LLM.Provider))
		}
		if cfg.LLM.MaxWorkers <= 0 {
			errs = append(errs, fmt.Errorf("llm.max_workers must be positive, got %d", cfg.LLM.MaxWorkers))
		}
		if cfg.LLM.MaxRetries < 0 {
			errs = append(errs, errors.New("llm.max_retries must not be negative"))
		}
		if cfg.LLM.TimeoutSeconds <= 0 {
			errs = append(errs, fmt.Errorf("llm.timeout_seconds must be positive, got %d", cfg.LLM.TimeoutSeconds))
		}
	}

	return errors.Join(errs...)
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
