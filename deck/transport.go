package deck

import (
	"math"

	"github.com/worshipkit/stemdeck"
	"go.uber.org/zap"
)

type (
	PlaybackState int

	PlaybackSession struct {
		State    PlaybackState
		Position float64 // seconds
		Duration float64 // seconds, the longest loaded track
	}

	// Transport is the play/pause/stop/seek view of the engine.
	Transport Engine
)

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

// resyncTolerance is how far (in seconds) a track may drift from the
// transport position before it is repositioned on play.
const resyncTolerance = 0.1

func (s PlaybackState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

func (e *Engine) Transport() *Transport { return (*Transport)(e) }

// Play starts all tracks together. The start itself is issued on the next
// tick. Calling Play while playing, or while a start is already pending, does
// nothing.
func (t *Transport) Play() error {
	e := (*Engine)(t)
	if e.session.State == Playing || e.startPending {
		return nil
	}
	if e.blocked() {
		e.log.Warn("play refused", zap.Stringer("connectivity", e.connectivity))
		return ErrConnectivityInsufficient
	}
	if e.session.State == Stopped && !e.ready {
		return ErrNotReady
	}
	e.resync()
	e.startPending = true
	e.startTick = e.ticks
	return nil
}

func (t *Transport) Pause() {
	e := (*Engine)(t)
	if e.session.State != Playing && !e.startPending {
		return
	}
	e.cancelStarts()
	e.reg.each(func(m stemdeck.Media) { m.Pause() })
	e.session.State = Paused
}

// Stop pauses all tracks and rewinds them to the beginning. It is valid in
// every state.
func (t *Transport) Stop() {
	e := (*Engine)(t)
	e.cancelStarts()
	e.reg.each(func(m stemdeck.Media) {
		m.Pause()
		m.SetPosition(0)
	})
	e.session.Position = 0
	e.session.State = Stopped
}

func (t *Transport) Toggle() error {
	if t.Playing() {
		t.Pause()
		return nil
	}
	return t.Play()
}

// Playing reports whether the transport is playing or about to.
func (t *Transport) Playing() bool {
	return t.session.State == Playing || t.startPending
}

// Seek moves all tracks to pos, clamped to the duration. The transport state
// does not change.
func (t *Transport) Seek(pos float64) {
	e := (*Engine)(t)
	if math.IsNaN(pos) {
		return
	}
	pos = clampFloat(pos, 0, e.reg.duration())
	e.seekAll(pos)
}

func (t *Transport) SeekBy(delta float64) {
	t.Seek(t.session.Position + delta)
}

func (e *Engine) seekAll(pos float64) {
	e.reg.each(func(m stemdeck.Media) { m.SetPosition(pos) })
	e.session.Position = pos
}

// resync repositions every track that has drifted from the transport
// position.
func (e *Engine) resync() {
	pos := e.session.Position
	n := 0
	e.reg.each(func(m stemdeck.Media) {
		if math.Abs(m.Position()-pos) > resyncTolerance {
			m.SetPosition(pos)
			n++
		}
	})
	if n > 0 {
		e.log.Debug("resynced tracks", zap.Int("count", n), zap.Float64("position", pos))
	}
}

func (e *Engine) startAll() {
	e.startPending = false
	var media []stemdeck.Media
	e.reg.each(func(m stemdeck.Media) { media = append(media, m) })
	e.issueStart(media)
	e.session.State = Playing
}

// poll follows the reference track: the position is read from it, the loop
// wraps around, and when the reference reaches its end everything stops.
func (e *Engine) poll() {
	ref, ok := e.reg.reference()
	if !ok {
		return
	}
	e.session.Duration = e.reg.duration()
	e.session.Position = ref.Position()
	if e.wrapLoop() {
		return
	}
	if ref.Ended() {
		e.log.Debug("reference track ended")
		e.Transport().Stop()
	}
}
