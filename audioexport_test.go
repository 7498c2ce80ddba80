package stemdeck_test

import (
	"encoding/binary"
	"testing"

	"github.com/worshipkit/stemdeck"
)

func TestWavPCM16(t *testing.T) {
	buf := stemdeck.AudioBuffer{{0.5, -0.5}, {2, -2}}
	wav, err := buf.Wav(48000, true)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", wav[:12])
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != 48000 {
		t.Errorf("sample rate in header = %d, want 48000", got)
	}
	if len(wav) != 44+8 {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+8)
	}
	samples := make([]int16, 4)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(wav[44+2*i:]))
	}
	want := []int16{16383, -16383, 32767, -32768}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
}

func TestRawFloat(t *testing.T) {
	raw, err := stemdeck.AudioBuffer{{0.25, -1}}.Raw(false)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("raw length = %d, want 8", len(raw))
	}
}
