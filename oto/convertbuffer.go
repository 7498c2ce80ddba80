package oto

import (
	"encoding/binary"
	"math"

	"github.com/worshipkit/stemdeck"
)

// AudioBufferToFloat32LE appends the interleaved samples of buf to dst as
// little-endian float32s. Samples are clamped to [-1, 1]; NaNs become
// silence.
func AudioBufferToFloat32LE(buf stemdeck.AudioBuffer, dst []byte) []byte {
	for _, frame := range buf {
		for _, v := range frame {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(clampSample(v)))
		}
	}
	return dst
}

func clampSample(v float32) float32 {
	switch {
	case v != v:
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
