package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/worshipkit/stemdeck"
	"github.com/worshipkit/stemdeck/oto"
)

func TestAudioBufferToFloat32LE(t *testing.T) {
	nan := float32(math.NaN())
	buf := stemdeck.AudioBuffer{{0.25, -0.5}, {2, -3}, {nan, 1}}
	got := oto.AudioBufferToFloat32LE(buf, nil)
	if len(got) != 24 {
		t.Fatalf("got %d bytes, want 24", len(got))
	}
	want := []float32{0.25, -0.5, 1, -1, 0, 1}
	for i, w := range want {
		v := math.Float32frombits(binary.LittleEndian.Uint32(got[4*i:]))
		if v != w {
			t.Errorf("value %d = %v, want %v", i, v, w)
		}
	}
}

func TestAudioBufferToFloat32LEReusesDst(t *testing.T) {
	dst := make([]byte, 0, 64)
	got := oto.AudioBufferToFloat32LE(stemdeck.AudioBuffer{{0, 0}}, dst)
	if &got[0] != &dst[:1][0] {
		t.Errorf("dst with enough capacity was not reused")
	}
}
