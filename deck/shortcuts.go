package deck

import (
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	Action string

	KeyBinding struct {
		Key    string `yaml:"key"`
		Action Action `yaml:"action"`
	}

	// KeyEvent is a key press from the host. Key is a key name such as
	// "Space", "S" or "ArrowLeft"; single letters are matched case
	// insensitively.
	KeyEvent struct {
		Key string
		// TextInputFocused is set when the key went to a text field, in which
		// case shortcuts do not apply.
		TextInputFocused bool
	}

	// Shortcuts is the keyboard view of the engine.
	Shortcuts Engine
)

const (
	ActionPlayPause     Action = "PlayPause"
	ActionStop          Action = "Stop"
	ActionSeekBackward  Action = "SeekBackward"
	ActionSeekForward   Action = "SeekForward"
	ActionToggleMuteAll Action = "ToggleMuteAll"
)

//go:embed keybindings.yml
var defaultKeyBindingsYaml []byte

var keyBindingMap = loadKeyBindings()

func loadKeyBindings() map[string]Action {
	var bindings []KeyBinding
	if err := yaml.Unmarshal(defaultKeyBindingsYaml, &bindings); err != nil {
		panic(fmt.Errorf("failed to unmarshal keybindings: %w", err))
	}
	ret := make(map[string]Action, len(bindings))
	for _, b := range bindings {
		ret[normalizeKey(b.Key)] = b.Action
	}
	return ret
}

func normalizeKey(k string) string {
	switch {
	case k == " ":
		return "Space"
	case len(k) == 1:
		return strings.ToUpper(k)
	}
	return k
}

// KeyAction returns the action bound to a key, if any.
func KeyAction(key string) (Action, bool) {
	a, ok := keyBindingMap[normalizeKey(key)]
	return a, ok
}

func (e *Engine) Shortcuts() *Shortcuts { return (*Shortcuts)(e) }

func (s *Shortcuts) Enabled() Bool { return Bool{(*ShortcutsEnabled)(s)} }

// Handle performs the action bound to the key. It reports whether the key
// was consumed.
func (s *Shortcuts) Handle(ev KeyEvent) bool {
	if ev.TextInputFocused || !s.prefs.KeyboardShortcutsEnabled {
		return false
	}
	a, ok := KeyAction(ev.Key)
	if !ok {
		return false
	}
	return (*Engine)(s).Do(a)
}

// Do performs an action. It is shared by the keyboard shortcuts and the MIDI
// controller mapping.
func (e *Engine) Do(a Action) bool {
	t := e.Transport()
	switch a {
	case ActionPlayPause:
		if err := t.Toggle(); err != nil {
			e.log.Info("play", zap.Error(err))
		}
	case ActionStop:
		t.Stop()
	case ActionSeekBackward:
		t.SeekBy(-e.prefs.SeekStepSeconds)
	case ActionSeekForward:
		t.SeekBy(e.prefs.SeekStepSeconds)
	case ActionToggleMuteAll:
		e.Mix().ToggleMuteAll()
	default:
		return false
	}
	return true
}
