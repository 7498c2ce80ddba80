package deck

import (
	"context"
	"time"
)

// The engine has three periodic activities, all driven by Tick.
const (
	TransportInterval = 100 * time.Millisecond // position, loop and end detection
	MeterInterval     = 8 * time.Millisecond   // VU levels
	WaveformInterval  = 16 * time.Millisecond  // only while the waveform is active
)

// Tick advances the engine to now. Messages from the broker are handled
// first, then a pending start is issued, and then each periodic activity runs
// if its interval has passed. A start is only issued on a tick after the one
// during which Play was called, so a Play arriving through the broker, or
// from auto play, waits for the next tick too.
func (e *Engine) Tick(now time.Time) {
	e.ticks++
	e.drain()
	e.checkLoadTimeout(now)
	if e.startPending && e.startTick < e.ticks {
		e.startAll()
		e.lastPoll = now
	}
	if e.session.State == Playing && now.Sub(e.lastPoll) >= TransportInterval {
		e.lastPoll = now
		e.poll()
	}
	if now.Sub(e.lastMeter) >= MeterInterval {
		e.lastMeter = now
		e.meterTick(now)
	}
	if e.waveformActive && now.Sub(e.lastWaveform) >= WaveformInterval {
		e.lastWaveform = now
		e.waveformTick(now)
	}
}

// Run ticks the engine until ctx is done or a message arrives in
// broker.CloseEngine. It closes the engine and broker.FinishedEngine before
// returning.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.broker.FinishedEngine)
	defer e.Close()
	ticker := time.NewTicker(MeterInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.broker.CloseEngine:
			return
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}
