package deck

type (
	Bool struct {
		BoolData
	}

	BoolData interface {
		Value() bool
		Enabled() bool
		setValue(bool)
	}

	LoopEnabled      Engine
	WaveformActive   Engine
	ShortcutsEnabled Engine
)

func (v Bool) Toggle() {
	v.Set(!v.Value())
}

func (v Bool) Set(value bool) {
	if v.Enabled() && v.Value() != value {
		v.setValue(value)
	}
}

// LoopEnabled methods

func (m *LoopEnabled) Value() bool       { return m.loop.Enabled }
func (m *LoopEnabled) setValue(val bool) { m.loop.Enabled = val }
func (m *LoopEnabled) Enabled() bool     { return true }

// WaveformActive methods

func (m *WaveformActive) Value() bool { return m.waveformActive }
func (m *WaveformActive) setValue(val bool) {
	m.waveformActive = val
	if !val {
		clear(m.waveforms)
	}
}
func (m *WaveformActive) Enabled() bool { return true }

// ShortcutsEnabled methods

func (m *ShortcutsEnabled) Value() bool       { return m.prefs.KeyboardShortcutsEnabled }
func (m *ShortcutsEnabled) setValue(val bool) { m.prefs.KeyboardShortcutsEnabled = val }
func (m *ShortcutsEnabled) Enabled() bool     { return true }
