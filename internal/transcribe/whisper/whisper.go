// Package whisper is an optional convenience adapter that runs local
// whisper.cpp inference over a complete audio buffer and emits the
// word-level [align.Transcription] the alignment core expects, sparing
// callers who don't already have a transcription pipeline from standing
// one up. It is a batch, single-shot analogue of a streaming STT
// session: load a model once, hand it a full utterance's PCM, get back
// every word with its start/end timestamp.
//
// The whisper.cpp static library (libwhisper.a) and headers (whisper.h)
// must be available at link time via LIBRARY_PATH and C_INCLUDE_PATH.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sentalign/sentalign/pkg/align"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

const (
	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

// Model wraps a loaded whisper.cpp model shared across all Transcribe
// calls. The model is loaded once at startup; each Transcribe runs its
// own inference context so callers may transcribe concurrently.
type Model struct {
	model    whisperlib.Model
	language string
}

// Option configures a Model.
type Option func(*Model)

// WithLanguage sets the BCP-47 language code passed to whisper.cpp.
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(m *Model) { m.language = lang }
}

// Load loads the whisper.cpp model at modelPath. The caller must call
// Close when the model is no longer needed.
func Load(modelPath string, opts ...Option) (*Model, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	wm, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	m := &Model{model: wm, language: defaultLanguage}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Close releases the whisper model.
func (m *Model) Close() error {
	if m.model != nil {
		return m.model.Close()
	}
	return nil
}

// TranscribeRequest carries one audio buffer to transcribe.
type TranscribeRequest struct {
	// ID becomes the returned Transcription's ID.
	ID string
	// PCM is raw 16-bit signed little-endian mono PCM audio.
	PCM []byte
	// SampleRate is the PCM's sample rate in Hz. Defaults to 16000.
	SampleRate int
	// Language overrides the Model's configured language for this call.
	Language string
}

// Transcribe runs whisper.cpp inference over req.PCM in a single pass
// and returns the complete word-level transcription, with each word's
// timestamps in milliseconds from the start of the buffer.
//
// Unlike a streaming session, Transcribe makes no attempt at silence
// detection or chunking: it is meant for audio that has already been
// segmented into a single utterance (e.g. one recorded take of a
// sentence or paragraph) by the caller.
func (m *Model) Transcribe(ctx context.Context, req TranscribeRequest) (align.Transcription, error) {
	if err := ctx.Err(); err != nil {
		return align.Transcription{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(req.PCM) == 0 {
		return align.Transcription{}, errors.New("whisper: PCM must not be empty")
	}

	lang := req.Language
	if lang == "" {
		lang = m.language
	}
	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if sampleRate != defaultSampleRate {
		return align.Transcription{}, fmt.Errorf("whisper: sample rate %d unsupported; whisper.cpp requires %d Hz PCM", sampleRate, defaultSampleRate)
	}

	wctx, err := m.model.NewContext()
	if err != nil {
		return align.Transcription{}, fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return align.Transcription{}, fmt.Errorf("whisper: set language %q: %w", lang, err)
	}
	wctx.SetTokenTimestamps(true)

	samples := pcmToFloat32Mono(req.PCM)
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return align.Transcription{}, fmt.Errorf("whisper: process audio: %w", err)
	}

	words, err := collectWords(wctx)
	if err != nil {
		return align.Transcription{}, err
	}

	return align.Transcription{
		ID:           req.ID,
		LanguageCode: lang,
		Words:        words,
	}, nil
}

// collectWords walks every segment whisper.cpp produced and flattens its
// per-token timestamps into word-level [align.Word] entries, dropping
// whisper's special/control tokens (e.g. "[_BEG_]").
func collectWords(wctx whisperlib.Context) ([]align.Word, error) {
	var words []align.Word
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}

		for _, tok := range segment.Tokens {
			text := strings.TrimSpace(tok.Text)
			if text == "" || isSpecialToken(text) {
				continue
			}
			words = append(words, align.Word{
				Text:       text,
				StartMS:    tok.Start.Milliseconds(),
				EndMS:      tok.End.Milliseconds(),
				Confidence: float64(tok.P),
			})
		}
	}
	return words, nil
}

// isSpecialToken reports whether text is one of whisper.cpp's bracketed
// control tokens rather than actual transcribed speech.
func isSpecialToken(text string) bool {
	return strings.HasPrefix(text, "[_") || strings.HasPrefix(text, "<|")
}
