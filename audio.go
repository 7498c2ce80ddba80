package stemdeck

import "context"

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length, each
	// sample represented by [2]float32. [0] is left channel, [1] is right.
	AudioBuffer [][2]float32

	// Media is the host playback primitive of a single stem. All methods are
	// cheap and must not block for longer than it takes to update the state of
	// the stem, except Play, which may wait for the output to accept the start
	// and must return early with ctx.Err() when ctx is cancelled. Play on a
	// stem that is already playing is a no-op.
	Media interface {
		Play(ctx context.Context) error
		Pause()
		Paused() bool
		Position() float64 // seconds
		SetPosition(seconds float64)
		Duration() float64 // seconds, 0 if unknown
		Ended() bool
		SetGain(gain float64) // linear, 0..1
	}

	// Analyser gives realtime access to the signal of a stem. A Media that also
	// implements Analyser is said to have signal access.
	//
	// ByteTimeDomainData fills dst with the latest FFTSize() time domain samples,
	// 128 being silence and 0/255 the negative/positive full scale.
	// ByteFrequencyData fills dst with FFTSize()/2 magnitude bins, 0..255.
	// Both return the number of bytes written.
	Analyser interface {
		FFTSize() int
		ByteTimeDomainData(dst []byte) int
		ByteFrequencyData(dst []byte) int
	}

	// Loader creates a Media for a track descriptor. progress is called with
	// values 0..100 as the source is fetched and decoded; it may be called from
	// any goroutine.
	Loader interface {
		Load(ctx context.Context, desc TrackDescriptor, progress func(percent float64)) (Media, error)
	}

	// BatchStarter is implemented by loaders that can start a group of their
	// media at the same instant.
	BatchStarter interface {
		StartAll(ctx context.Context, media []Media) error
	}
)

