package deck

import (
	"math"

	"go.uber.org/zap"
)

type (
	LoopRegion struct {
		Enabled bool
		Start   float64 // seconds
		End     float64 // seconds
	}

	Loop Engine
)

// loopAutoLength is how far MarkStart and MarkEnd move the other end of the
// region when the marks would otherwise cross.
const loopAutoLength = 10.0

func (e *Engine) Loop() *Loop { return (*Loop)(e) }

func (l *Loop) Region() LoopRegion { return l.loop }

func (l *Loop) Enabled() Bool { return Bool{(*LoopEnabled)(l)} }

// Valid reports whether the region can loop at all.
func (r LoopRegion) Valid() bool { return r.End > r.Start }

// MarkStart sets the start of the region to the current position. If the end
// is not after it, the end is moved loopAutoLength seconds later, but not
// past the duration.
func (l *Loop) MarkStart() {
	pos := l.session.Position
	l.loop.Start = pos
	if l.loop.End <= pos {
		l.loop.End = math.Min(pos+loopAutoLength, l.reg.duration())
	}
}

// MarkEnd sets the end of the region to the current position. If the start
// is not before it, the start is moved loopAutoLength seconds earlier, but
// not below zero.
func (l *Loop) MarkEnd() {
	pos := l.session.Position
	l.loop.End = pos
	if l.loop.Start >= pos {
		l.loop.Start = math.Max(pos-loopAutoLength, 0)
	}
}

// Set replaces the region bounds. Bounds are clamped to the duration once it
// is known.
func (l *Loop) Set(start, end float64) {
	if d := l.reg.duration(); d > 0 {
		start, end = clampFloat(start, 0, d), clampFloat(end, 0, d)
	}
	l.loop.Start, l.loop.End = math.Max(start, 0), math.Max(end, 0)
}

func (e *Engine) wrapLoop() bool {
	if !e.loop.Enabled || !e.loop.Valid() || e.session.Position < e.loop.End {
		return false
	}
	e.log.Debug("loop wrap", zap.Float64("from", e.session.Position), zap.Float64("to", e.loop.Start))
	e.seekAll(e.loop.Start)
	return true
}
