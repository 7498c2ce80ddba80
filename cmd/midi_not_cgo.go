//go:build !cgo

package cmd

import (
	"errors"

	"gitlab.com/gomidi/midi/v2"
)

// with no cgo, there is no rtmidi driver
var errNoMIDI = errors.New("MIDI input is not available in builds without cgo")

func OpenMIDI(namePrefix string, handle func(msg midi.Message, timestampms int32)) (func(), error) {
	return nil, errNoMIDI
}

func MIDIInputs() ([]string, error) {
	return nil, errNoMIDI
}
