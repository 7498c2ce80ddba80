package deck

import (
	"time"

	"github.com/worshipkit/stemdeck"
)

// Waveform is the view of the engine producing a coarse frequency picture of
// every track for display. It only does work while active.
type Waveform Engine

// WaveformPoints is the approximate number of points per track.
const WaveformPoints = 100

func (e *Engine) Waveform() *Waveform { return (*Waveform)(e) }

func (w *Waveform) Active() Bool { return Bool{(*WaveformActive)(w)} }

// Buffers returns a copy of the latest waveform of every track that has an
// analyser. It is empty while the waveform is inactive.
func (w *Waveform) Buffers() map[TrackID][]float64 {
	ret := make(map[TrackID][]float64, len(w.waveforms))
	for id, b := range w.waveforms {
		ret[id] = append([]float64(nil), b...)
	}
	return ret
}

// Downsample picks every n-th bin so that about points values remain, each
// normalized to 0..1. The result is written into dst, which is grown if
// needed.
func Downsample(bins []byte, points int, dst []float64) []float64 {
	dst = dst[:0]
	if points <= 0 || len(bins) == 0 {
		return dst
	}
	stride := max(len(bins)/points, 1)
	for i := 0; i < len(bins) && len(dst) < points; i += stride {
		dst = append(dst, float64(bins[i])/255)
	}
	return dst
}

func (e *Engine) waveformTick(now time.Time) {
	for i, m := range e.reg.media {
		a, ok := m.(stemdeck.Analyser)
		if !ok {
			continue
		}
		id := e.reg.tracks[i].ID
		e.waveforms[id] = Downsample(e.frequencyData(i, a, now), WaveformPoints, e.waveforms[id])
	}
}
