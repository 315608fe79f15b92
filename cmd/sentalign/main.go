// Command sentalign runs one alignment build from the command line: given a
// canonical text, a pre-segmented sentence list, a word-level transcription,
// and optional manual overrides, it resolves every sentence to a time span
// and writes the resulting report as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sentalign/sentalign/internal/aligner"
	"github.com/sentalign/sentalign/internal/anchor"
	"github.com/sentalign/sentalign/internal/config"
	"github.com/sentalign/sentalign/internal/llmalign"
	"github.com/sentalign/sentalign/internal/llmalign/openai"
	"github.com/sentalign/sentalign/internal/report"
	"github.com/sentalign/sentalign/internal/resilience"
	"github.com/sentalign/sentalign/internal/store/postgres"
	"github.com/sentalign/sentalign/pkg/align"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] != "align" {
		fmt.Fprintln(os.Stderr, "usage: sentalign align --config config.yaml --sentences sentences.json --words transcription.json [--manual-overrides overrides.json] --out report.json")
		return 1
	}

	fs := flag.NewFlagSet("align", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	canonicalTextPath := fs.String("canonical-text", "", "path to the canonical source text (informational; not required to run a build)")
	sentencesPath := fs.String("sentences", "", "path to the sentence-list JSON file")
	wordsPath := fs.String("words", "", "path to the word-level transcription JSON file")
	overridesPath := fs.String("manual-overrides", "", "path to the manual overrides JSON file (optional)")
	outPath := fs.String("out", "report.json", "path to write the resulting AlignmentReport JSON")
	_ = fs.Parse(args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "sentalign: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "sentalign: %v\n", err)
		}
		return 1
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	if *sentencesPath == "" || *wordsPath == "" {
		fmt.Fprintln(os.Stderr, "sentalign: --sentences and --words are required")
		return 1
	}
	_ = *canonicalTextPath // accepted for parity with the input contract; the aligner only needs tokenized sentences

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transcription, sentences, overrides, err := loadInputs(*wordsPath, *sentencesPath, *overridesPath)
	if err != nil {
		slog.Error("failed to load inputs", "error", err)
		return 1
	}

	buildReport, outcomes, err := runBuild(ctx, *cfg, transcription, sentences, overrides)
	if err != nil {
		slog.Error("alignment build failed", "error", err)
		return 1
	}

	if err := writeReport(*outPath, buildReport); err != nil {
		slog.Error("failed to write report", "error", err)
		return 1
	}

	if cfg.Store.PostgresDSN != "" {
		if err := persistBuild(ctx, cfg.Store.PostgresDSN, buildReport, outcomes); err != nil {
			slog.Error("failed to persist build to postgres", "error", err)
			return 1
		}
	}

	printSummary(buildReport)
	return 0
}

// loadInputs reads and decodes the transcription, sentence list, and
// optional manual overrides from disk.
func loadInputs(wordsPath, sentencesPath, overridesPath string) (align.Transcription, []align.Sentence, []align.ManualOverride, error) {
	wordsData, err := os.ReadFile(wordsPath)
	if err != nil {
		return align.Transcription{}, nil, nil, fmt.Errorf("read words file: %w", err)
	}
	transcription, err := align.DecodeTranscription(wordsData)
	if err != nil {
		return align.Transcription{}, nil, nil, fmt.Errorf("decode transcription: %w", err)
	}

	sentencesData, err := os.ReadFile(sentencesPath)
	if err != nil {
		return align.Transcription{}, nil, nil, fmt.Errorf("read sentences file: %w", err)
	}
	sentences, err := align.DecodeSentences(sentencesData)
	if err != nil {
		return align.Transcription{}, nil, nil, fmt.Errorf("decode sentences: %w", err)
	}

	var overrides []align.ManualOverride
	if overridesPath != "" {
		overridesData, err := os.ReadFile(overridesPath)
		if err != nil {
			return align.Transcription{}, nil, nil, fmt.Errorf("read manual overrides file: %w", err)
		}
		overrides, err = align.ManualOverridesFromJSON(overridesData)
		if err != nil {
			return align.Transcription{}, nil, nil, fmt.Errorf("decode manual overrides: %w", err)
		}
	}

	return transcription, sentences, overrides, nil
}

// runBuild wires the Local Aligner and (if configured) the LLM oracle
// through the Hybrid Coordinator, applies manual overrides, and builds the
// final report.
func runBuild(ctx context.Context, cfg config.Config, transcription align.Transcription, sentences []align.Sentence, overrides []align.ManualOverride) (align.AlignmentReport, []aligner.Outcome, error) {
	idf := anchor.BuildIDFTable(transcription.Words)
	prepared := aligner.PrepareSentences(sentences, idf, cfg.Align.MaxAnchors)

	var oracle llmalign.Oracle
	if cfg.Align.Method != config.MethodLocal && cfg.LLM.Provider == "openai" {
		o, err := openai.New(cfg.LLM.APIKey, cfg.LLM.Model,
			openai.WithBaseURL(cfg.LLM.BaseURL),
			openai.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		)
		if err != nil {
			return align.AlignmentReport{}, nil, fmt.Errorf("create openai oracle: %w", err)
		}
		oracle = o

		if cfg.LLM.Fallback.APIKey != "" {
			fallback, err := openai.New(cfg.LLM.Fallback.APIKey, cfg.LLM.Fallback.Model,
				openai.WithBaseURL(cfg.LLM.Fallback.BaseURL),
				openai.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
			)
			if err != nil {
				return align.AlignmentReport{}, nil, fmt.Errorf("create fallback openai oracle: %w", err)
			}
			chain := llmalign.NewFallbackOracle(o, "primary", resilience.FallbackConfig{
				CircuitBreaker: cfg.ToCoordinatorConfig().CircuitBreaker,
			})
			chain.AddFallback("fallback", fallback)
			oracle = chain
		}
	}

	coord := llmalign.New(transcription.Words, cfg.ToAlignerConfig(), oracle, cfg.ToCoordinatorConfig())
	outcomes, methods := coord.Run(ctx, prepared, llmalign.TranscriptionView(transcription.Words))

	outcomes, err := report.ApplyOverrides(outcomes, overrides)
	if err != nil {
		slog.Warn("some manual overrides were rejected", "error", err)
	}

	return report.Build(outcomes, methods), outcomes, nil
}

func writeReport(path string, r align.AlignmentReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

// persistBuild saves the completed build to the configured Postgres store
// under a freshly generated build ID.
func persistBuild(ctx context.Context, dsn string, r align.AlignmentReport, outcomes []aligner.Outcome) error {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer store.Close()

	buildID := uuid.NewString()
	if err := store.SaveBuild(ctx, buildID, r, outcomes); err != nil {
		return fmt.Errorf("save build: %w", err)
	}
	slog.Info("build persisted", "build_id", buildID)
	return nil
}

func printSummary(r align.AlignmentReport) {
	fmt.Println("sentalign — build summary")
	fmt.Printf("  sentences : %d\n", r.NumSentences)
	fmt.Printf("  aligned   : %d\n", r.Aligned)
	fmt.Printf("  warnings  : %d\n", r.Warnings)
	fmt.Printf("  unaligned : %d\n", r.Unaligned)
	fmt.Printf("  methods   : local=%d llm=%d\n", r.Methods.Local, r.Methods.LLM)
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
