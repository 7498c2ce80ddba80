//go:build cgo

package cmd

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// OpenMIDI opens the first MIDI input whose name starts with namePrefix and
// calls handle for every message received on it. The returned func closes
// the input and the driver.
func OpenMIDI(namePrefix string, handle func(msg midi.Message, timestampms int32)) (func(), error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("opening MIDI driver failed: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	var in drivers.In
	for _, i := range ins {
		if strings.HasPrefix(i.String(), namePrefix) {
			in = i
			break
		}
	}
	if in == nil {
		driver.Close()
		return nil, fmt.Errorf("could not find a MIDI input starting with %q", namePrefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(in, handle)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	return func() {
		stop()
		in.Close()
		driver.Close()
	}, nil
}

// MIDIInputs lists the names of the available MIDI inputs.
func MIDIInputs() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, err
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}
