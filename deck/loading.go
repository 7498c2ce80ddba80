package deck

import (
	"time"

	"github.com/worshipkit/stemdeck"
	"go.uber.org/zap"
)

// Loading is the view of the engine tracking the progress of the track
// loads.
type Loading Engine

// LoadTimeout is how long after loading began the engine declares itself
// ready regardless of the tracks still loading.
const LoadTimeout = 8 * time.Second

// maxReportedProgress caps progress reports from loaders: a track reaches 100
// only when its media has been handed over.
const maxReportedProgress = 99

func (e *Engine) Loading() *Loading { return (*Loading)(e) }

func (l *Loading) Ready() bool { return l.ready }

func (l *Loading) Progress() float64 { return l.reg.OverallProgress() }

// Start creates the tracks and begins loading all of them concurrently. An
// empty list makes the engine ready at once.
func (l *Loading) Start(descs []stemdeck.TrackDescriptor) error {
	e := (*Engine)(l)
	if e.loadingStarted {
		return ErrAlreadyLoaded
	}
	e.loadingStarted = true
	e.loadStartedAt = e.clock()
	e.reg = newRegistry(descs, e.prefs.DefaultVolume)
	e.log.Info("loading tracks", zap.Int("count", len(descs)))
	if len(descs) == 0 {
		e.setReady("no tracks")
		return nil
	}
	for i, d := range descs {
		go e.loadTrack(i, d)
	}
	return nil
}

// loadTrack runs in its own goroutine and reports back through the broker.
func (e *Engine) loadTrack(index int, d stemdeck.TrackDescriptor) {
	progress := func(p float64) {
		TrySend(e.broker.ToEngine, MsgToEngine{Data: loadProgressMsg{index: index, progress: p}})
	}
	media, err := e.loader.Load(e.ctx, d, progress)
	select {
	case e.broker.ToEngine <- MsgToEngine{Data: loadDoneMsg{index: index, media: media, err: err}}:
	case <-e.ctx.Done():
	}
}

func (e *Engine) handleLoadProgress(m loadProgressMsg) {
	if m.index < 0 || m.index >= e.reg.Len() {
		return
	}
	t := &e.reg.tracks[m.index]
	if t.LoadError || t.LoadProgress >= 100 {
		return
	}
	t.LoadProgress = clampFloat(max(t.LoadProgress, m.progress), 0, maxReportedProgress)
}

func (e *Engine) handleLoadDone(m loadDoneMsg) {
	if m.index < 0 || m.index >= e.reg.Len() {
		return
	}
	t := &e.reg.tracks[m.index]
	t.LoadProgress = 100
	if m.err != nil || m.media == nil {
		t.LoadError = true
		if m.err != nil && !stemdeck.IsCancellation(m.err) {
			e.log.Warn("track failed to load", zap.String("track", t.DisplayName), zap.Error(m.err))
		}
	} else {
		e.attach(m.index, m.media)
	}
	if !e.ready && e.reg.allLoaded() {
		e.setReady("all tracks loaded")
	}
}

// attach hands a loaded media to track i. Media arriving late, after the
// engine already started playing, joins at the current position.
func (e *Engine) attach(i int, media stemdeck.Media) {
	e.reg.media[i] = media
	media.SetGain(e.reg.tracks[i].EffectiveGain)
	media.SetPosition(e.session.Position)
	e.session.Duration = e.reg.duration()
	e.log.Debug("track loaded", zap.String("track", e.reg.tracks[i].DisplayName), zap.Float64("duration", media.Duration()))
	if e.session.State == Playing {
		e.issueStart([]stemdeck.Media{media})
	}
}

func (e *Engine) checkLoadTimeout(now time.Time) {
	if e.ready || !e.loadingStarted {
		return
	}
	if now.Sub(e.loadStartedAt) >= LoadTimeout {
		e.setReady("load timeout")
	}
}

func (e *Engine) setReady(reason string) {
	e.ready = true
	e.log.Info("ready", zap.String("reason", reason), zap.Float64("progress", e.reg.OverallProgress()))
	if e.prefs.AutoPlay && !e.autoPlayed {
		e.autoPlayed = true
		if err := e.Transport().Play(); err != nil {
			e.log.Warn("auto play failed", zap.Error(err))
		}
	}
}
