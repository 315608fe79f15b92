package align

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// wireWord mirrors the JSON shape of a single transcription word, accepting
// both documented dialects (§6): the plain dialect and the dialect that also
// carries a top-level language_code (AssemblyAI-shaped input).
type wireWord struct {
	Text       string   `json:"text"`
	Start      *int64   `json:"start"`
	End        *int64   `json:"end"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type wireTranscription struct {
	Words        []wireWord `json:"words"`
	LanguageCode string     `json:"language_code,omitempty"`
	ID           string     `json:"id,omitempty"`
}

// DecodeTranscription parses a transcription-input JSON document. Both
// documented dialects (with or without language_code) are accepted; anything
// missing the required words[].text/start/end fields is rejected with
// ErrInvalidInput.
func DecodeTranscription(data []byte) (Transcription, error) {
	var wire wireTranscription
	if err := json.Unmarshal(data, &wire); err != nil {
		return Transcription{}, fmt.Errorf("%w: decode transcription json: %v", ErrInvalidInput, err)
	}
	if len(wire.Words) == 0 {
		return Transcription{}, fmt.Errorf("%w: transcription has no words", ErrInvalidInput)
	}

	words := make([]Word, 0, len(wire.Words))
	var prevEnd int64
	for i, w := range wire.Words {
		if w.Text == "" {
			return Transcription{}, fmt.Errorf("%w: word[%d] missing text", ErrInvalidInput, i)
		}
		if w.Start == nil || w.End == nil {
			return Transcription{}, fmt.Errorf("%w: word[%d] missing start or end", ErrInvalidInput, i)
		}
		start, end := *w.Start, *w.End
		if end < start {
			return Transcription{}, fmt.Errorf("%w: word[%d] end (%d) before start (%d)", ErrInvalidInput, i, end, start)
		}
		if start < prevEnd {
			// Tolerate ASR jitter of a few ms but reject gross
			// non-monotonicity, since the aligner's cursor logic depends on
			// it (§3 invariant).
			if prevEnd-start > 50 {
				return Transcription{}, fmt.Errorf("%w: word[%d] start (%d) regresses past prior end (%d)", ErrInvalidInput, i, start, prevEnd)
			}
		}
		prevEnd = end

		conf := 0.0
		if w.Confidence != nil {
			conf = *w.Confidence
		}
		words = append(words, Word{Text: w.Text, StartMS: start, EndMS: end, Confidence: conf})
	}

	id := wire.ID
	if id == "" {
		id = uuid.NewString()
	}

	return Transcription{ID: id, LanguageCode: wire.LanguageCode, Words: words}, nil
}

// DecodeSentences parses a sentence-list-input JSON document: an ordered
// array of strings. Each entry is trimmed and given a trailing terminator
// (".", "!", or "?") if missing, matching the upstream segmenter's contract
// (§6). Sentence.Idx is assigned 1-based and dense.
func DecodeSentences(data []byte) ([]Sentence, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode sentence list json: %v", ErrInvalidInput, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: sentence list is empty", ErrInvalidInput)
	}

	sentences := make([]Sentence, 0, len(raw))
	for i, s := range raw {
		text := strings.TrimSpace(s)
		if text == "" {
			return nil, fmt.Errorf("%w: sentence[%d] is empty", ErrInvalidInput, i)
		}
		switch text[len(text)-1] {
		case '.', '!', '?':
		default:
			text += "."
		}
		sentences = append(sentences, Sentence{Idx: i + 1, Text: text})
	}
	return sentences, nil
}

// ManualOverridesFromJSON decodes a JSON array of {sentence_idx, start_ms,
// end_ms} objects. Malformed entries are validated by the caller (per-entry
// rejection, §7); this function only handles the JSON shape.
func ManualOverridesFromJSON(data []byte) ([]ManualOverride, error) {
	var raw []struct {
		SentenceIdx int   `json:"sentence_idx"`
		StartMS     int64 `json:"start_ms"`
		EndMS       int64 `json:"end_ms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode manual overrides json: %v", ErrInvalidInput, err)
	}
	out := make([]ManualOverride, 0, len(raw))
	for _, r := range raw {
		out = append(out, ManualOverride{SentenceIdx: r.SentenceIdx, StartMS: r.StartMS, EndMS: r.EndMS})
	}
	return out, nil
}
