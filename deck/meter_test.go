package deck_test

import (
	"math"
	"testing"

	"github.com/worshipkit/stemdeck"
	"github.com/worshipkit/stemdeck/deck"
)

func TestAnalyseSignalSilence(t *testing.T) {
	td := make([]byte, 2048)
	for i := range td {
		td[i] = 128
	}
	s := deck.AnalyseSignal(td, make([]byte, 1024))
	if s != (deck.SignalLevels{}) {
		t.Fatalf("silence analysed as %+v", s)
	}
	if got := deck.RawLevel(s); got != 0 {
		t.Fatalf("raw level of silence = %v", got)
	}
}

func TestAnalyseSignalBands(t *testing.T) {
	td := make([]byte, 4)
	copy(td, []byte{0, 128, 0, 128}) // half the samples at full negative scale
	freq := make([]byte, 100)
	for i := range freq {
		switch {
		case i < 5:
			freq[i] = 255 // low band: first 5%
		case i < 30:
			freq[i] = 51 // mid band: next 25%
		}
	}
	s := deck.AnalyseSignal(td, freq)
	if math.Abs(s.RMS-math.Sqrt(0.5)) > 1e-6 {
		t.Errorf("rms = %v, want %v", s.RMS, math.Sqrt(0.5))
	}
	if s.Peak != 1 {
		t.Errorf("peak = %v, want 1", s.Peak)
	}
	if s.Low != 1 || math.Abs(s.Mid-0.2) > 1e-6 || s.High != 0 {
		t.Errorf("bands = %v %v %v, want 1 0.2 0", s.Low, s.Mid, s.High)
	}
	want := (0.4*math.Sqrt(0.5) + 0.3 + 0.2 + 0.1*0.2) * 100
	if got := deck.RawLevel(s); math.Abs(got-want) > 1e-4 {
		t.Errorf("raw level = %v, want %v", got, want)
	}
}

func TestSmoothLevel(t *testing.T) {
	if got := deck.SmoothLevel(0, 100); got != 90 {
		t.Errorf("attack: got %v, want 90", got)
	}
	if got := deck.SmoothLevel(100, 0); got != 70 {
		t.Errorf("release: got %v, want 70", got)
	}
	if got := deck.SmoothLevel(40, 40); got != 40 {
		t.Errorf("steady: got %v, want 40", got)
	}
}

func meterHarness(t *testing.T, prefs deck.Preferences) (*harness, []*fakeAnalyserMedia) {
	loud := &fakeAnalyserMedia{fakeMedia: newFakeMedia(180), sample: 0, bin: 255}
	quiet := &fakeAnalyserMedia{fakeMedia: newFakeMedia(180), sample: 128, bin: 0}
	h := newEngine(t, prefs, &fakeLoader{media: map[string]stemdeck.Media{"loud": loud, "quiet": quiet}})
	h.media = []*fakeMedia{loud.fakeMedia, quiet.fakeMedia}
	h.e.Load([]stemdeck.TrackDescriptor{{Locator: "loud"}, {Locator: "quiet"}})
	h.settle("ready", func() bool { return h.e.Status().Ready })
	return h, []*fakeAnalyserMedia{loud, quiet}
}

func TestMeterFollowsSignal(t *testing.T) {
	h, _ := meterHarness(t, deck.DefaultPreferences())
	h.play()
	h.advance(deck.TransportInterval)
	ids := h.ids()
	loud, _ := h.e.Meter().Reading(ids[0])
	quiet, _ := h.e.Meter().Reading(ids[1])
	if loud.Left < 99 {
		t.Errorf("loud track level = %v, want near 100", loud.Left)
	}
	if loud.Right != loud.Left*0.9 {
		t.Errorf("right channel = %v, want 0.9 * %v", loud.Right, loud.Left)
	}
	if quiet.Left != 0 {
		t.Errorf("silent track level = %v, want 0", quiet.Left)
	}

	h.e.Mix().SetMute(ids[0], true)
	h.tick()
	muted, _ := h.e.Meter().Reading(ids[0])
	if math.Abs(muted.Left-loud.Left*0.7) > 1e-9 {
		t.Errorf("muted track level = %v, want decay to %v", muted.Left, loud.Left*0.7)
	}
}

func TestMeterDecaysAfterPause(t *testing.T) {
	h, _ := meterHarness(t, deck.DefaultPreferences())
	h.play()
	h.advance(deck.TransportInterval)
	h.e.Transport().Pause()
	h.advance(2 * deck.TransportInterval)
	if lvl := h.e.Tracks()[0].VULevel; lvl != 0 {
		t.Fatalf("level %v has not decayed to zero after pause", lvl)
	}
}

func TestMeterWithoutSmoothing(t *testing.T) {
	prefs := deck.DefaultPreferences()
	prefs.SmoothTransitions = false
	prefs.VUSensitivity = 1
	prefs.DefaultVolume = 50
	h, _ := meterHarness(t, prefs)
	h.play()
	h.tick()
	// constant full scale signal at half gain: (0.4 + 0.3 + 0.2 + 0.1) * 100 * 0.5
	if lvl := h.e.Tracks()[0].VULevel; math.Abs(lvl-50) > 1e-3 {
		t.Fatalf("unsmoothed level = %v, want 50", lvl)
	}
}

func TestWaveform(t *testing.T) {
	got := deck.Downsample(make([]byte, 1024), deck.WaveformPoints, nil)
	if len(got) != deck.WaveformPoints {
		t.Errorf("downsampled 1024 bins to %d points", len(got))
	}
	if got := deck.Downsample([]byte{255, 0, 51}, 100, nil); len(got) != 3 || got[0] != 1 || got[2] != 0.2 {
		t.Errorf("short input downsampled to %v", got)
	}

	h, _ := meterHarness(t, deck.DefaultPreferences())
	h.tick()
	if len(h.e.Waveform().Buffers()) != 0 {
		t.Fatalf("waveform computed while inactive")
	}
	h.e.Waveform().Active().Set(true)
	h.advance(deck.WaveformInterval)
	bufs := h.e.Waveform().Buffers()
	loud := bufs[h.ids()[0]]
	if len(bufs) != 2 || len(loud) != deck.WaveformPoints || loud[0] != 1 {
		t.Fatalf("waveform buffers = %d, loud track %d points", len(bufs), len(loud))
	}
	h.e.Waveform().Active().Toggle()
	if len(h.e.Waveform().Buffers()) != 0 {
		t.Fatalf("waveform buffers not cleared on deactivation")
	}
}

func TestWaveformSharesTheMeterSpectrum(t *testing.T) {
	h, media := meterHarness(t, deck.DefaultPreferences())
	h.play()
	h.e.Waveform().Active().Set(true)
	for _, m := range media {
		m.freqReads = 0
	}
	const ticks = 20
	h.advance(ticks * deck.MeterInterval)
	for i, m := range media {
		if m.freqReads == 0 || m.freqReads > ticks {
			t.Errorf("track %d: spectrum read %d times in %d meter intervals", i, m.freqReads, ticks)
		}
	}
	if len(h.e.Waveform().Buffers()) != 2 {
		t.Fatalf("waveform not computed from the shared spectrum")
	}
}
