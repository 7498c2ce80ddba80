package deck

import (
	"github.com/google/uuid"
	"github.com/worshipkit/stemdeck"
)

type (
	TrackID string

	// Track is the complete state of one stem. Tracks are created once, when
	// the track list is loaded, and live as long as the engine.
	Track struct {
		ID            TrackID
		Locator       string
		DisplayName   string
		InstrumentTag string
		Volume        float64 // 0..100
		Muted         bool
		Soloed        bool
		LoadProgress  float64 // 0..100
		LoadError     bool
		EffectiveGain float64 // 0..1
		VULevel       float64 // 0..100
	}

	// Registry is an indexed arena of tracks and the media playing them. The
	// media of a track is nil until its load has completed, and stays nil if
	// the load failed.
	Registry struct {
		tracks []Track
		media  []stemdeck.Media
		index  map[TrackID]int
	}
)

func newRegistry(descs []stemdeck.TrackDescriptor, volume float64) Registry {
	r := Registry{
		tracks: make([]Track, len(descs)),
		media:  make([]stemdeck.Media, len(descs)),
		index:  make(map[TrackID]int, len(descs)),
	}
	for i, d := range descs {
		id := TrackID(uuid.NewString())
		r.tracks[i] = Track{
			ID:            id,
			Locator:       d.Locator,
			DisplayName:   d.Name(),
			InstrumentTag: d.InstrumentTag,
			Volume:        clampFloat(volume, 0, 100),
		}
		r.index[id] = i
	}
	r.tracks = RecomputeGains(r.tracks)
	return r
}

func (r *Registry) Len() int { return len(r.tracks) }

func (r *Registry) lookup(id TrackID) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// AnySoloed reports whether at least one track is soloed. It is derived from
// the tracks every time; there is no separate solo flag to keep in sync.
func (r *Registry) AnySoloed() bool { return anySoloed(r.tracks) }

func anySoloed(tracks []Track) bool {
	for _, t := range tracks {
		if t.Soloed {
			return true
		}
	}
	return false
}

// RecomputeGains returns a copy of tracks with EffectiveGain resolved from
// volume, mute and solo:
//
//	muted:                    0
//	some track soloed:        volume/100 if this track is soloed, else 0
//	otherwise:                volume/100
func RecomputeGains(tracks []Track) []Track {
	ret := make([]Track, len(tracks))
	copy(ret, tracks)
	solo := anySoloed(tracks)
	for i := range ret {
		ret[i].EffectiveGain = resolveGain(ret[i], solo)
	}
	return ret
}

func resolveGain(t Track, anySolo bool) float64 {
	switch {
	case t.Muted:
		return 0
	case anySolo && !t.Soloed:
		return 0
	default:
		return clampFloat(t.Volume, 0, 100) / 100
	}
}

// recompute resolves the gains of all tracks and pushes them to the media.
func (r *Registry) recompute() {
	r.tracks = RecomputeGains(r.tracks)
	for i, m := range r.media {
		if m != nil {
			m.SetGain(r.tracks[i].EffectiveGain)
		}
	}
}

// recomputeOne is enough when only the volume of track i changed, as volume
// does not affect the gain of other tracks.
func (r *Registry) recomputeOne(i int) {
	r.tracks[i].EffectiveGain = resolveGain(r.tracks[i], r.AnySoloed())
	if m := r.media[i]; m != nil {
		m.SetGain(r.tracks[i].EffectiveGain)
	}
}

// OverallProgress is the mean load progress of all tracks, 100 if there are
// none.
func (r *Registry) OverallProgress() float64 {
	if len(r.tracks) == 0 {
		return 100
	}
	var sum float64
	for _, t := range r.tracks {
		sum += t.LoadProgress
	}
	return sum / float64(len(r.tracks))
}

func (r *Registry) allLoaded() bool {
	for _, t := range r.tracks {
		if t.LoadProgress < 100 {
			return false
		}
	}
	return true
}

// reference returns the media used as the canonical clock: the first track
// that has a media.
func (r *Registry) reference() (stemdeck.Media, bool) {
	for _, m := range r.media {
		if m != nil {
			return m, true
		}
	}
	return nil, false
}

func (r *Registry) duration() float64 {
	var d float64
	for _, m := range r.media {
		if m != nil {
			d = max(d, m.Duration())
		}
	}
	return d
}

func (r *Registry) each(f func(stemdeck.Media)) {
	for _, m := range r.media {
		if m != nil {
			f(m)
		}
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
