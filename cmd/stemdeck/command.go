package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/worshipkit/stemdeck/deck"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	errQuit        = errors.New("quit")
	errNoSuchTrack = errors.New("no such track")
)

const commandHelp = `commands:
  <enter>, space      play/pause
  s                   stop
  left, right         seek by the seek step
  m                   mute/unmute all
  mute N, solo N      toggle mute/solo of track N
  vol N V             set volume of track N to V (0-100)
  seek T              seek to T seconds
  loop A B, loop off  set/disable the loop region
  in, out             mark the loop start/end at the current position
  net Q               set the connection quality (offline, poor, fair, good, excellent)
  wave                toggle waveform sampling
  q                   quit`

// parseCommand parses a line typed by the user into a function to be run in
// the engine goroutine.
func parseCommand(line string) (func(e *deck.Engine) error, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return keyCommand("Space"), nil
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return nil, errQuit
	case "space", "s", "m", "left", "right":
		if len(fields) == 1 {
			return keyCommand(cases.Title(language.Und).String(fields[0])), nil
		}
	case "mute", "solo":
		n, err := intArgs(fields, 1)
		if err != nil {
			return nil, err
		}
		toggle := (*deck.Mix).ToggleMute
		if fields[0] == "solo" {
			toggle = (*deck.Mix).ToggleSolo
		}
		return trackCommand(n[0], func(e *deck.Engine, id deck.TrackID) bool { return toggle(e.Mix(), id) }), nil
	case "vol":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: vol N V")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		return trackCommand(n, func(e *deck.Engine, id deck.TrackID) bool { return e.Mix().SetVolume(id, v) }), nil
	case "seek":
		f, err := floatArgs(fields, 1)
		if err != nil {
			return nil, err
		}
		return func(e *deck.Engine) error { e.Transport().Seek(f[0]); return nil }, nil
	case "loop":
		if len(fields) == 2 && fields[1] == "off" {
			return func(e *deck.Engine) error { e.Loop().Enabled().Set(false); return nil }, nil
		}
		f, err := floatArgs(fields, 2)
		if err != nil {
			return nil, err
		}
		return func(e *deck.Engine) error {
			e.Loop().Set(f[0], f[1])
			e.Loop().Enabled().Set(true)
			return nil
		}, nil
	case "in":
		return func(e *deck.Engine) error { e.Loop().MarkStart(); return nil }, nil
	case "out":
		return func(e *deck.Engine) error { e.Loop().MarkEnd(); return nil }, nil
	case "net":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: net Q")
		}
		q, err := deck.ParseConnectionQuality(fields[1])
		if err != nil {
			return nil, err
		}
		return func(e *deck.Engine) error { e.SetConnectivity(q); return nil }, nil
	case "wave":
		return func(e *deck.Engine) error { e.Waveform().Active().Toggle(); return nil }, nil
	}
	return nil, fmt.Errorf("unknown command %q\n%s", line, commandHelp)
}

func keyCommand(key string) func(e *deck.Engine) error {
	return func(e *deck.Engine) error {
		if !e.Shortcuts().Handle(deck.KeyEvent{Key: key}) {
			return fmt.Errorf("key %v did nothing", key)
		}
		return nil
	}
}

// trackCommand addresses tracks by their 1-based number on the track list.
func trackCommand(n int, f func(e *deck.Engine, id deck.TrackID) bool) func(e *deck.Engine) error {
	return func(e *deck.Engine) error {
		id, ok := e.Mix().ByIndex(n - 1)
		if !ok || !f(e, id) {
			return fmt.Errorf("%w: %d", errNoSuchTrack, n)
		}
		return nil
	}
}

func intArgs(fields []string, n int) ([]int, error) {
	if len(fields) != n+1 {
		return nil, fmt.Errorf("%v expects %d arguments", fields[0], n)
	}
	ret := make([]int, n)
	for i := range ret {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("%v: %w", fields[0], err)
		}
		ret[i] = v
	}
	return ret, nil
}

func floatArgs(fields []string, n int) ([]float64, error) {
	if len(fields) != n+1 {
		return nil, fmt.Errorf("%v expects %d arguments", fields[0], n)
	}
	ret := make([]float64, n)
	for i := range ret {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", fields[0], err)
		}
		ret[i] = v
	}
	return ret, nil
}
