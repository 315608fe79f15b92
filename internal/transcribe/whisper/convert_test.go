package whisper

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestPcmToFloat32Mono_Empty(t *testing.T) {
	out := pcmToFloat32Mono(nil)
	if len(out) != 0 {
		t.Fatalf("expected 0 samples, got %d", len(out))
	}
}

func TestPcmToFloat32Mono_SingleSample(t *testing.T) {
	pcm := make([]byte, 2)
	binary.LittleEndian.PutUint16(pcm, uint16(int16(16384))) // 0.5
	out := pcmToFloat32Mono(pcm)
	if len(out) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(out))
	}
	want := float32(16384) / 32768.0
	if math.Abs(float64(out[0]-want)) > 1e-6 {
		t.Errorf("sample = %f; want %f", out[0], want)
	}
}

func TestPcmToFloat32Mono_FullScale(t *testing.T) {
	tests := []struct {
		name  string
		value int16
		want  float32
	}{
		{"max positive", 32767, 32767.0 / 32768.0},
		{"max negative", -32768, -1.0},
		{"zero", 0, 0.0},
		{"mid positive", 16384, 16384.0 / 32768.0},
		{"mid negative", -16384, -16384.0 / 32768.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm := make([]byte, 2)
			binary.LittleEndian.PutUint16(pcm, uint16(tt.value))
			out := pcmToFloat32Mono(pcm)
			if math.Abs(float64(out[0]-tt.want)) > 1e-6 {
				t.Errorf("sample = %f; want %f", out[0], tt.want)
			}
		})
	}
}

func TestPcmToFloat32Mono_OddTrailingByteIgnored(t *testing.T) {
	pcm := make([]byte, 5)
	out := pcmToFloat32Mono(pcm)
	if len(out) != 2 {
		t.Fatalf("expected 2 samples (trailing byte ignored), got %d", len(out))
	}
}

func TestIsSpecialToken(t *testing.T) {
	cases := map[string]bool{
		"[_BEG_]": true,
		"<|en|>":  true,
		"hello":   false,
		"":        false,
	}
	for text, want := range cases {
		if got := isSpecialToken(text); got != want {
			t.Errorf("isSpecialToken(%q) = %v, want %v", text, got, want)
		}
	}
}
