// Package openai implements llmalign.Oracle using the OpenAI chat-completion
// API (or any OpenAI-compatible endpoint reachable via a custom base URL,
// such as xAI's Grok).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/sentalign/sentalign/internal/llmalign"
)

// Oracle implements llmalign.Oracle against an OpenAI-compatible chat
// completions endpoint.
type Oracle struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL      string
	organization string
	timeout      time.Duration
}

// Option is a functional option for configuring an Oracle.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL — set this to point
// at an OpenAI-compatible provider (e.g. xAI's Grok endpoint).
func WithBaseURL(url string) Option { return func(c *config) { c.baseURL = url } }

// WithOrganization sets the OpenAI organization ID on all requests.
func WithOrganization(org string) Option { return func(c *config) { c.organization = org } }

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// New constructs an Oracle. apiKey and model must be non-empty.
func New(apiKey, model string, opts ...Option) (*Oracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llmalign/openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("llmalign/openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(cfg.organization))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Oracle{client: oai.NewClient(reqOpts...), model: model}, nil
}

const systemPrompt = `You are a forced-alignment assistant. Given a canonical sentence and a
transcript with word-level timestamps, locate the millisecond span in the
transcript that realizes the sentence. Respond with a single JSON object and
nothing else:

{"start_ms": <int>, "end_ms": <int>, "confidence": <float 0-1>}

If the sentence cannot be located in the transcript, respond with exactly:

{"failed": true}`

// llmResponse mirrors the oracle's expected JSON reply shape.
type llmResponse struct {
	StartMS    *int64   `json:"start_ms"`
	EndMS      *int64   `json:"end_ms"`
	Confidence *float64 `json:"confidence"`
	Failed     bool     `json:"failed"`
}

// AlignSentence implements llmalign.Oracle.
func (o *Oracle) AlignSentence(ctx context.Context, sentenceText, transcriptionView string) (llmalign.Result, error) {
	userMsg := fmt.Sprintf("Sentence:\n%s\n\nTranscript:\n%s", sentenceText, transcriptionView)

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(userMsg),
		},
		Temperature: param.NewOpt(0.0),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llmalign.Result{}, fmt.Errorf("llmalign/openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llmalign.Result{}, fmt.Errorf("llmalign/openai: empty choices in response")
	}

	parsed, err := parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return llmalign.Result{}, fmt.Errorf("llmalign/openai: %w: %v", llmalign.ErrOracleFailure, err)
	}
	if parsed.Failed || parsed.StartMS == nil || parsed.EndMS == nil {
		return llmalign.Result{}, llmalign.ErrOracleFailure
	}

	confidence := 1.0
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	return llmalign.Result{StartMS: *parsed.StartMS, EndMS: *parsed.EndMS, Confidence: confidence}, nil
}

// parseResponse strips any markdown code-fence the model may have wrapped
// the JSON in and unmarshals it, mirroring the same defensive parsing the
// transcript-correction LLM adapter uses for its own JSON contract.
func parseResponse(content string) (llmResponse, error) {
	content = stripMarkdown(content)

	var out llmResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return llmResponse{}, fmt.Errorf("parse json: %w", err)
	}
	return out, nil
}

func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
