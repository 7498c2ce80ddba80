// Package stem implements the playback primitive the deck engine drives: a
// Bus mixing decoded stems into one output, Stems that play, pause, seek and
// expose their signal for metering, and a Loader fetching and decoding stems
// from files, http servers and object storage.
package stem

import (
	"context"
	"fmt"
	"sync"

	"github.com/worshipkit/stemdeck"
)

type (
	// Bus mixes its stems into a single stereo output. Render is called by the
	// audio output; every other method may be called from any goroutine.
	Bus struct {
		mu         sync.Mutex
		sampleRate int
		fftSize    int
		stems      []*Stem
		suspended  bool
	}

	// Stem is one decoded track on a bus. It implements stemdeck.Media and
	// stemdeck.Analyser.
	Stem struct {
		bus    *Bus
		name   string
		data   stemdeck.AudioBuffer
		pos    int // frames
		paused bool
		gain   float32

		tap      RingBuffer[float32] // mono pre-gain signal, fftSize frames
		mono     []float32
		window   []float32
		analyser *Analyser
	}
)

func NewBus(sampleRate, fftSize int) (*Bus, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if _, err := NewAnalyser(fftSize); err != nil {
		return nil, err
	}
	return &Bus{sampleRate: sampleRate, fftSize: fftSize}, nil
}

func (b *Bus) SampleRate() int { return b.sampleRate }

// Suspend makes the bus reject starts with stemdeck.ErrPlaybackRejected, as
// an output that is not running would. Stems already playing keep playing.
func (b *Bus) Suspend() {
	b.mu.Lock()
	b.suspended = true
	b.mu.Unlock()
}

func (b *Bus) Resume() {
	b.mu.Lock()
	b.suspended = false
	b.mu.Unlock()
}

// Add puts a decoded buffer on the bus as a paused stem at position zero.
func (b *Bus) Add(name string, data stemdeck.AudioBuffer) *Stem {
	analyser, _ := NewAnalyser(b.fftSize) // size validated in NewBus
	s := &Stem{
		bus:      b,
		name:     name,
		data:     data,
		paused:   true,
		gain:     1,
		tap:      RingBuffer[float32]{Buffer: make([]float32, b.fftSize)},
		window:   make([]float32, b.fftSize),
		analyser: analyser,
	}
	b.mu.Lock()
	b.stems = append(b.stems, s)
	b.mu.Unlock()
	return s
}

// StartAll starts the given stems within the same render block. All of them
// must belong to this bus. A start whose ctx is cancelled before the stems
// are unpaused leaves them paused.
func (b *Bus) StartAll(ctx context.Context, media []stemdeck.Media) error {
	stems := make([]*Stem, 0, len(media))
	for _, m := range media {
		s, ok := m.(*Stem)
		if !ok || s.bus != b {
			return fmt.Errorf("%w: media is not a stem of this bus", stemdeck.ErrPlaybackRejected)
		}
		stems = append(stems, s)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	// checked under the lock: a Pause that follows the cancel must win
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.suspended {
		return stemdeck.ErrPlaybackRejected
	}
	for _, s := range stems {
		s.paused = false
	}
	return nil
}

// Render mixes the next len(buf) frames of every playing stem into buf.
func (b *Bus) Render(buf stemdeck.AudioBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(buf)
	for _, s := range b.stems {
		s.render(buf)
	}
}

// Mixdown renders frames frames into a new buffer.
func (b *Bus) Mixdown(frames int) stemdeck.AudioBuffer {
	ret := make(stemdeck.AudioBuffer, frames)
	const block = 4096
	for i := 0; i < frames; i += block {
		b.Render(ret[i:min(i+block, frames)])
	}
	return ret
}

func (s *Stem) render(out stemdeck.AudioBuffer) {
	if s.paused || s.pos >= len(s.data) {
		return
	}
	n := min(len(out), len(s.data)-s.pos)
	chunk := s.data[s.pos : s.pos+n]
	if cap(s.mono) < n {
		s.mono = make([]float32, n)
	}
	mono := s.mono[:n]
	for i, v := range chunk {
		mono[i] = (v[0] + v[1]) / 2
		out[i][0] += v[0] * s.gain
		out[i][1] += v[1] * s.gain
	}
	s.tap.WriteWrap(mono)
	s.pos += n
}

func (s *Stem) Name() string { return s.name }

// Play starts the stem alone. Use Bus.StartAll to start several stems
// together.
func (s *Stem) Play(ctx context.Context) error {
	return s.bus.StartAll(ctx, []stemdeck.Media{s})
}

func (s *Stem) Pause() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.paused = true
	s.tap.Clear()
}

func (s *Stem) Paused() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.paused
}

func (s *Stem) Position() float64 {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return float64(s.pos) / float64(s.bus.sampleRate)
}

func (s *Stem) SetPosition(seconds float64) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	frame := int(seconds * float64(s.bus.sampleRate))
	s.pos = min(max(frame, 0), len(s.data))
}

func (s *Stem) Duration() float64 {
	return float64(len(s.data)) / float64(s.bus.sampleRate)
}

func (s *Stem) Ended() bool {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.pos >= len(s.data)
}

func (s *Stem) SetGain(gain float64) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.gain = float32(min(max(gain, 0), 1))
}

func (s *Stem) FFTSize() int { return s.bus.fftSize }

func (s *Stem) ByteTimeDomainData(dst []byte) int {
	s.bus.mu.Lock()
	n := s.tap.ReadOrdered(s.window)
	s.bus.mu.Unlock()
	return TimeDomainBytes(s.window[:n], dst)
}

// ByteFrequencyData is meant to be called from a single goroutine, as every
// call advances the smoothing of the analyser.
func (s *Stem) ByteFrequencyData(dst []byte) int {
	s.bus.mu.Lock()
	n := s.tap.ReadOrdered(s.window)
	s.bus.mu.Unlock()
	return s.analyser.FrequencyBytes(s.window[:n], dst)
}
