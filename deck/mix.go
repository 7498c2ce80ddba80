package deck

import "math"

// Mix is the volume/mute/solo view of the engine. Every setter returns false
// if no track has the given id.
type Mix Engine

func (e *Engine) Mix() *Mix { return (*Mix)(e) }

func (m *Mix) SetVolume(id TrackID, volume float64) bool {
	i, ok := m.reg.lookup(id)
	if !ok || math.IsNaN(volume) {
		return false
	}
	m.reg.tracks[i].Volume = clampFloat(volume, 0, 100)
	m.reg.recomputeOne(i)
	return true
}

// StepVolume changes the volume by steps times the configured volume step.
func (m *Mix) StepVolume(id TrackID, steps int) bool {
	i, ok := m.reg.lookup(id)
	if !ok {
		return false
	}
	return m.SetVolume(id, m.reg.tracks[i].Volume+float64(steps)*m.prefs.VolumeStepPercent)
}

func (m *Mix) SetMute(id TrackID, muted bool) bool {
	i, ok := m.reg.lookup(id)
	if !ok {
		return false
	}
	m.reg.tracks[i].Muted = muted
	m.reg.recompute()
	return true
}

// SetSolo changes the solo flag of a track. Soloing one track silences every
// track that is not soloed.
func (m *Mix) SetSolo(id TrackID, soloed bool) bool {
	i, ok := m.reg.lookup(id)
	if !ok {
		return false
	}
	m.reg.tracks[i].Soloed = soloed
	m.reg.recompute()
	return true
}

func (m *Mix) ToggleMute(id TrackID) bool {
	t, ok := (*Engine)(m).Track(id)
	return ok && m.SetMute(id, !t.Muted)
}

func (m *Mix) ToggleSolo(id TrackID) bool {
	t, ok := (*Engine)(m).Track(id)
	return ok && m.SetSolo(id, !t.Soloed)
}

// ToggleMuteAll mutes every track if any of them is unmuted, otherwise
// unmutes them all.
func (m *Mix) ToggleMuteAll() {
	anyUnmuted := false
	for _, t := range m.reg.tracks {
		if !t.Muted {
			anyUnmuted = true
			break
		}
	}
	for i := range m.reg.tracks {
		m.reg.tracks[i].Muted = anyUnmuted
	}
	m.reg.recompute()
}

// ByIndex returns the id of the i-th track, for controllers that address
// tracks by position.
func (m *Mix) ByIndex(i int) (TrackID, bool) {
	if i < 0 || i >= len(m.reg.tracks) {
		return "", false
	}
	return m.reg.tracks[i].ID, true
}
