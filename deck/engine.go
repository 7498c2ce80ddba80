package deck

import (
	"context"
	"errors"
	"time"

	"github.com/worshipkit/stemdeck"
	"go.uber.org/zap"
)

type (
	// Engine keeps a set of stems playing in lockstep, mixes them and meters
	// them.
	//
	// Engine is owned by a single goroutine, the one calling Tick (usually
	// through Run). None of its methods may be called from other goroutines;
	// they talk to the engine through the Broker instead. Loaders and start
	// operations already do so.
	Engine struct {
		broker *Broker
		loader stemdeck.Loader
		log    *zap.Logger
		clock  func() time.Time

		ctx    context.Context
		cancel context.CancelFunc

		prefs Preferences
		reg   Registry

		loadingStarted bool
		loadStartedAt  time.Time
		ready          bool
		autoPlayed     bool

		session      PlaybackSession
		ticks        uint64
		startPending bool
		startTick    uint64 // tick during which the pending start was requested
		startEpoch   int
		startCancels []context.CancelFunc
		lastPoll     time.Time

		loop LoopRegion

		meterScratch meterScratch
		lastMeter    time.Time
		spectra      []spectrum // per track, shared by the meter and the waveform

		waveformActive bool
		waveforms      map[TrackID][]float64
		lastWaveform   time.Time

		connectivity    ConnectionQuality
		minConnectivity ConnectionQuality
	}

	// Status summarizes whether the engine can play.
	Status struct {
		Ready           bool
		OverallProgress float64 // 0..100
		Blocked         bool    // connectivity is below the minimum, playback refused
		Connectivity    ConnectionQuality
	}

	Option func(*Engine)
)

var (
	// ErrConnectivityInsufficient is returned by Play when the connection
	// quality is below the configured minimum.
	ErrConnectivityInsufficient = errors.New("connectivity insufficient for playback")
	// ErrNotReady is returned by Play from the stopped state while the tracks
	// are still loading.
	ErrNotReady = errors.New("tracks are still loading")
	// ErrAlreadyLoaded is returned when a track list is supplied twice.
	ErrAlreadyLoaded = errors.New("track list already loaded")
)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock replaces time.Now as the source of the load start time. Tests
// use it together with explicit Tick calls.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithMinConnectivity sets the connection quality below which the engine
// refuses to play. The default is ConnectionFair.
func WithMinConnectivity(q ConnectionQuality) Option {
	return func(e *Engine) { e.minConnectivity = q }
}

// New creates an engine. loader is used to load the tracks once Load is
// called.
func New(broker *Broker, loader stemdeck.Loader, prefs Preferences, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		broker:          broker,
		loader:          loader,
		log:             zap.NewNop(),
		clock:           time.Now,
		ctx:             ctx,
		cancel:          cancel,
		prefs:           prefs.Normalize(),
		waveforms:       map[TrackID][]float64{},
		connectivity:    ConnectionGood,
		minConnectivity: ConnectionFair,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load supplies the track list and starts loading every track. It can be
// called only once.
func (e *Engine) Load(descs []stemdeck.TrackDescriptor) error {
	return e.Loading().Start(descs)
}

// Close stops playback and cancels all outstanding loads and start
// operations. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.Transport().Stop()
	e.Waveform().Active().Set(false)
	e.cancel()
}

func (e *Engine) Broker() *Broker { return e.broker }

func (e *Engine) Preferences() Preferences { return e.prefs }

// SetPreferences replaces the preferences. Track volumes are not touched:
// the default volume only applies when the tracks are created.
func (e *Engine) SetPreferences(p Preferences) {
	e.prefs = p.Normalize()
	e.log.Debug("preferences updated", zap.Any("preferences", e.prefs))
}

// Session returns the current transport state and position.
func (e *Engine) Session() PlaybackSession { return e.session }

// Tracks returns a copy of the status of all tracks, in the order they were
// supplied.
func (e *Engine) Tracks() []Track {
	ret := make([]Track, len(e.reg.tracks))
	copy(ret, e.reg.tracks)
	return ret
}

// Track returns the status of a single track.
func (e *Engine) Track(id TrackID) (Track, bool) {
	i, ok := e.reg.lookup(id)
	if !ok {
		return Track{}, false
	}
	return e.reg.tracks[i], true
}

func (e *Engine) Status() Status {
	return Status{
		Ready:           e.ready,
		OverallProgress: e.reg.OverallProgress(),
		Blocked:         e.blocked(),
		Connectivity:    e.connectivity,
	}
}

func (e *Engine) drain() {
	for {
		select {
		case msg := <-e.broker.ToEngine:
			e.handleMsg(msg)
		default:
			return
		}
	}
}

func (e *Engine) handleMsg(msg MsgToEngine) {
	switch m := msg.Data.(type) {
	case loadProgressMsg:
		e.handleLoadProgress(m)
	case loadDoneMsg:
		e.handleLoadDone(m)
	case startResultMsg:
		e.handleStartResult(m)
	case Preferences:
		e.SetPreferences(m)
	case ConnectionQuality:
		e.SetConnectivity(m)
	case func():
		m()
	default:
		// ignore unknown messages
	}
}
