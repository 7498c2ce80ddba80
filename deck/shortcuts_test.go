package deck_test

import (
	"testing"

	"github.com/worshipkit/stemdeck/deck"
)

func TestKeyBindings(t *testing.T) {
	for key, want := range map[string]deck.Action{
		"Space":      deck.ActionPlayPause,
		" ":          deck.ActionPlayPause,
		"s":          deck.ActionStop,
		"S":          deck.ActionStop,
		"ArrowLeft":  deck.ActionSeekBackward,
		"ArrowRight": deck.ActionSeekForward,
		"m":          deck.ActionToggleMuteAll,
	} {
		if got, ok := deck.KeyAction(key); !ok || got != want {
			t.Errorf("KeyAction(%q) = %q, %v, want %q", key, got, ok, want)
		}
	}
	if _, ok := deck.KeyAction("q"); ok {
		t.Errorf("unbound key resolved to an action")
	}
}

func TestShortcutsDriveTransport(t *testing.T) {
	h := newHarness(t, 2, 180)
	sc := h.e.Shortcuts()
	if !sc.Handle(deck.KeyEvent{Key: "Space"}) {
		t.Fatalf("Space not handled")
	}
	if !h.e.Transport().Playing() {
		t.Fatalf("Space did not start playback")
	}
	h.tick()
	sc.Handle(deck.KeyEvent{Key: "ArrowRight"})
	sc.Handle(deck.KeyEvent{Key: "ArrowRight"})
	if got := h.e.Session().Position; got != 10 {
		t.Errorf("position after two forward seeks = %v, want 10", got)
	}
	sc.Handle(deck.KeyEvent{Key: "ArrowLeft"})
	if got := h.e.Session().Position; got != 5 {
		t.Errorf("position after a backward seek = %v, want 5", got)
	}
	sc.Handle(deck.KeyEvent{Key: "m"})
	for _, tr := range h.e.Tracks() {
		if !tr.Muted {
			t.Errorf("M did not mute all tracks")
		}
	}
	sc.Handle(deck.KeyEvent{Key: "s"})
	if s := h.e.Session(); s.State != deck.Stopped || s.Position != 0 {
		t.Errorf("S: session = %+v, want stopped at 0", s)
	}
}

func TestShortcutsSuppressed(t *testing.T) {
	h := newHarness(t, 1, 180)
	sc := h.e.Shortcuts()
	if sc.Handle(deck.KeyEvent{Key: "Space", TextInputFocused: true}) {
		t.Errorf("shortcut handled while a text input has focus")
	}
	sc.Enabled().Set(false)
	if sc.Handle(deck.KeyEvent{Key: "Space"}) {
		t.Errorf("shortcut handled while disabled")
	}
	if h.e.Transport().Playing() {
		t.Errorf("suppressed shortcut started playback")
	}
	sc.Enabled().Toggle()
	if !sc.Handle(deck.KeyEvent{Key: "Space"}) {
		t.Errorf("shortcut not handled after re-enabling")
	}
}
