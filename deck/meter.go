package deck

import (
	"math"
	"time"

	"github.com/viterin/vek/vek32"
	"github.com/worshipkit/stemdeck"
)

type (
	// Meter is the VU meter view of the engine.
	Meter Engine

	// MeterReading is a level for a two-bar display. Right is Left scaled by
	// 0.9; it is not a measurement of the right channel.
	MeterReading struct {
		Left, Right float64 // 0..100
	}

	// SignalLevels are the features of one analyser frame the VU level is
	// computed from. All are normalized to 0..1.
	SignalLevels struct {
		RMS, Peak      float64
		Low, Mid, High float64
	}

	meterScratch struct {
		time     []byte
		x, sq, f []float32
	}

	// spectrum is the latest frequency data read from the analyser of a track.
	spectrum struct {
		bins  []byte
		at    time.Time
		valid bool
	}
)

const (
	meterAttack  = 0.9 // smoothing factor when the level rises
	meterRelease = 0.3 // and when it falls
	meterDecay   = 0.7 // per tick, for paused, muted and silent tracks
	meterFloor   = 0.5 // levels below this snap to zero while decaying

	lowBandFraction = 0.05
	midBandFraction = 0.25

	// The right channel of the meter is a cosmetic copy of the left one, the
	// analyser gives no per-channel data.
	rightChannelScale = 0.9
)

func (e *Engine) Meter() *Meter { return (*Meter)(e) }

func (m *Meter) Reading(id TrackID) (MeterReading, bool) {
	t, ok := (*Engine)(m).Track(id)
	if !ok {
		return MeterReading{}, false
	}
	return MeterReading{Left: t.VULevel, Right: t.VULevel * rightChannelScale}, true
}

// AnalyseSignal extracts the signal levels from one frame of byte time-domain
// data (128 is silence) and byte frequency data (0..255 per bin).
func AnalyseSignal(timeDomain, freq []byte) SignalLevels {
	var s meterScratch
	return s.analyse(timeDomain, freq)
}

func (s *meterScratch) analyse(timeDomain, freq []byte) SignalLevels {
	var ret SignalLevels
	if n := len(timeDomain); n > 0 {
		x := resize(&s.x, n)
		for i, b := range timeDomain {
			x[i] = float32(b)
		}
		vek32.DivNumber_Inplace(x, 128)
		for i := range x {
			x[i] -= 1
		}
		sq := vek32.Mul_Into(resize(&s.sq, n), x, x)
		ret.RMS = math.Sqrt(float64(vek32.Mean(sq)))
		vek32.Abs_Inplace(x)
		ret.Peak = float64(vek32.Max(x))
	}
	if n := len(freq); n > 0 {
		f := resize(&s.f, n)
		for i, b := range freq {
			f[i] = float32(b)
		}
		vek32.DivNumber_Inplace(f, 255)
		lowEnd := int(float64(n) * lowBandFraction)
		midEnd := lowEnd + int(float64(n)*midBandFraction)
		ret.Low = mean(f[:lowEnd])
		ret.Mid = mean(f[lowEnd:midEnd])
		ret.High = mean(f[midEnd:])
	}
	return ret
}

// RawLevel weighs the signal levels into a 0..100 level before gain and
// sensitivity are applied. The high band does not contribute.
func RawLevel(s SignalLevels) float64 {
	return (0.4*s.RMS + 0.3*s.Peak + 0.2*s.Low + 0.1*s.Mid) * 100
}

// SmoothLevel moves prev towards raw, quickly when rising and slowly when
// falling.
func SmoothLevel(prev, raw float64) float64 {
	k := meterRelease
	if raw > prev {
		k = meterAttack
	}
	return prev + (raw-prev)*k
}

// meterTick updates the VU level of every track. It runs while playing and,
// after playback stops, until all levels have decayed to zero.
func (e *Engine) meterTick(now time.Time) {
	playing := e.session.State == Playing
	if !playing && !e.anyLevel() {
		return
	}
	s := &e.meterScratch
	for i := range e.reg.tracks {
		t := &e.reg.tracks[i]
		m := e.reg.media[i]
		a, ok := m.(stemdeck.Analyser)
		if !playing || !ok || t.Muted || m.Paused() {
			t.VULevel = decay(t.VULevel)
			continue
		}
		td := resizeBytes(&s.time, a.FFTSize())
		td = td[:a.ByteTimeDomainData(td)]
		raw := RawLevel(s.analyse(td, e.frequencyData(i, a, now))) * t.EffectiveGain * e.prefs.VUSensitivity
		raw = clampFloat(raw, 0, 100)
		if e.prefs.SmoothTransitions {
			t.VULevel = clampFloat(SmoothLevel(t.VULevel, raw), 0, 100)
		} else {
			t.VULevel = raw
		}
	}
}

// frequencyData returns the frequency bins of track i. Reading them advances
// the smoothing of the analyser, so they are read again only once the last
// reading is MeterInterval old, however many activities ask for them.
func (e *Engine) frequencyData(i int, a stemdeck.Analyser, now time.Time) []byte {
	if len(e.spectra) != e.reg.Len() {
		e.spectra = make([]spectrum, e.reg.Len())
	}
	sp := &e.spectra[i]
	if sp.valid && now.Sub(sp.at) < MeterInterval {
		return sp.bins
	}
	bins := resizeBytes(&sp.bins, a.FFTSize()/2)
	sp.bins = bins[:a.ByteFrequencyData(bins)]
	sp.at, sp.valid = now, true
	return sp.bins
}

func (e *Engine) anyLevel() bool {
	for _, t := range e.reg.tracks {
		if t.VULevel > 0 {
			return true
		}
	}
	return false
}

func decay(level float64) float64 {
	level *= meterDecay
	if level < meterFloor {
		return 0
	}
	return level
}

func mean(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	return float64(vek32.Mean(x))
}

func resize(s *[]float32, n int) []float32 {
	if cap(*s) < n {
		*s = make([]float32, n)
	}
	*s = (*s)[:n]
	return *s
}

func resizeBytes(s *[]byte, n int) []byte {
	if cap(*s) < n {
		*s = make([]byte, n)
	}
	*s = (*s)[:n]
	return *s
}
