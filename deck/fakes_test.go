package deck_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/worshipkit/stemdeck"
	"github.com/worshipkit/stemdeck/deck"
)

type fakeMedia struct {
	mu       sync.Mutex
	pos, dur float64
	paused   bool
	gain     float64
	plays    int
	playErr  error
	block    chan struct{} // if set, Play waits for it or ctx
}

func newFakeMedia(dur float64) *fakeMedia {
	return &fakeMedia{dur: dur, paused: true}
}

func (m *fakeMedia) Play(ctx context.Context) error {
	m.mu.Lock()
	block := m.block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	if m.playErr != nil {
		return m.playErr
	}
	m.paused = false
	return nil
}

func (m *fakeMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *fakeMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *fakeMedia) Position() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *fakeMedia) SetPosition(s float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = s
}

func (m *fakeMedia) Duration() float64 { return m.dur }

func (m *fakeMedia) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dur > 0 && m.pos >= m.dur
}

func (m *fakeMedia) SetGain(g float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain = g
}

func (m *fakeMedia) Gain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain
}

func (m *fakeMedia) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// fakeAnalyserMedia has signal access: a constant time domain value and a
// constant spectrum.
type fakeAnalyserMedia struct {
	*fakeMedia
	sample, bin byte
	freqReads   int
}

func (m *fakeAnalyserMedia) FFTSize() int { return 2048 }

func (m *fakeAnalyserMedia) ByteTimeDomainData(dst []byte) int {
	for i := range dst {
		dst[i] = m.sample
	}
	return len(dst)
}

func (m *fakeAnalyserMedia) ByteFrequencyData(dst []byte) int {
	m.freqReads++
	for i := range dst {
		dst[i] = m.bin
	}
	return len(dst)
}

type fakeLoader struct {
	media map[string]stemdeck.Media
	gates map[string]chan struct{}
}

func (l *fakeLoader) Load(ctx context.Context, d stemdeck.TrackDescriptor, progress func(float64)) (stemdeck.Media, error) {
	progress(50)
	if g, ok := l.gates[d.Locator]; ok {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m, ok := l.media[d.Locator]
	if !ok {
		return nil, &stemdeck.LoadError{Locator: d.Locator, Err: errors.New("not found")}
	}
	return m, nil
}

type harness struct {
	t      *testing.T
	e      *deck.Engine
	now    time.Time
	loader *fakeLoader
	media  []*fakeMedia
}

func newEngine(t *testing.T, prefs deck.Preferences, loader *fakeLoader, opts ...deck.Option) *harness {
	t.Helper()
	h := &harness{t: t, now: time.Unix(1700000000, 0), loader: loader}
	opts = append([]deck.Option{deck.WithClock(func() time.Time { return h.now })}, opts...)
	h.e = deck.New(deck.NewBroker(), loader, prefs, opts...)
	t.Cleanup(h.e.Close)
	return h
}

// newHarness creates an engine with n loaded tracks of dur seconds each.
func newHarness(t *testing.T, n int, dur float64, opts ...deck.Option) *harness {
	t.Helper()
	prefs := deck.DefaultPreferences()
	h := newEngine(t, prefs, &fakeLoader{media: map[string]stemdeck.Media{}}, opts...)
	descs := make([]stemdeck.TrackDescriptor, n)
	for i := range descs {
		m := newFakeMedia(dur)
		loc := fmt.Sprintf("stems/track%d.mp3", i)
		h.loader.media[loc] = m
		h.media = append(h.media, m)
		descs[i] = stemdeck.TrackDescriptor{Locator: loc}
	}
	if err := h.e.Load(descs); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h.settle("tracks loaded", func() bool { return h.e.Status().Ready })
	return h
}

// settle ticks the engine without advancing the clock until cond holds.
func (h *harness) settle(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
		h.e.Tick(h.now)
	}
}

// advance moves the clock forward by d in meter sized steps, ticking at each.
func (h *harness) advance(d time.Duration) {
	for end := h.now.Add(d); h.now.Before(end); {
		h.now = h.now.Add(deck.MeterInterval)
		h.e.Tick(h.now)
	}
}

func (h *harness) tick() { h.advance(deck.MeterInterval) }

func (h *harness) play() {
	h.t.Helper()
	if err := h.e.Transport().Play(); err != nil {
		h.t.Fatalf("Play failed: %v", err)
	}
	h.tick()
	h.settle("all tracks playing", func() bool {
		for _, m := range h.media {
			if m.Paused() {
				return false
			}
		}
		return true
	})
}

func (h *harness) setAllPositions(pos float64) {
	for _, m := range h.media {
		m.SetPosition(pos)
	}
}

func (h *harness) ids() []deck.TrackID {
	var ret []deck.TrackID
	for _, t := range h.e.Tracks() {
		ret = append(ret, t.ID)
	}
	return ret
}
