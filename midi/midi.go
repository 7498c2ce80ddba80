// Package midi maps MIDI controller messages to deck engine commands. MIDI
// channel n addresses the n-th track.
package midi

import (
	_ "embed"
	"fmt"

	"github.com/worshipkit/stemdeck/deck"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type (
	Mapping struct {
		VolumeController uint8                 `yaml:"volumeController"` // value 0..127 scales to volume 0..100
		MuteController   uint8                 `yaml:"muteController"`   // value >= 64 mutes
		SoloController   uint8                 `yaml:"soloController"`   // value >= 64 solos
		NudgeController  uint8                 `yaml:"nudgeController"`  // relative, value-64 volume steps
		Notes            map[uint8]deck.Action `yaml:"notes"`
	}

	// Listener forwards messages from a MIDI input to an engine. Its
	// HandleMessage method has the signature midi.ListenTo expects.
	Listener struct {
		broker  *deck.Broker
		engine  *deck.Engine
		mapping Mapping
		log     *zap.Logger
	}
)

//go:embed midi.yml
var defaultMappingYaml []byte

func DefaultMapping() Mapping {
	var m Mapping
	if err := yaml.Unmarshal(defaultMappingYaml, &m); err != nil {
		panic(fmt.Errorf("failed to unmarshal default midi mapping: %w", err))
	}
	return m
}

// Apply performs the command msg is mapped to. It must be called from the
// goroutine owning the engine. It reports whether msg was mapped to
// anything.
func (m Mapping) Apply(e *deck.Engine, msg midi.Message) bool {
	var channel, key, velocity, controller, value uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		a, ok := m.Notes[key]
		return ok && e.Do(a)
	case msg.GetControlChange(&channel, &controller, &value):
		id, ok := e.Mix().ByIndex(int(channel))
		if !ok {
			return false
		}
		switch controller {
		case m.VolumeController:
			return e.Mix().SetVolume(id, float64(value)*100/127)
		case m.MuteController:
			return e.Mix().SetMute(id, value >= 64)
		case m.SoloController:
			return e.Mix().SetSolo(id, value >= 64)
		case m.NudgeController:
			return e.Mix().StepVolume(id, int(value)-64)
		}
	}
	return false
}

func NewListener(broker *deck.Broker, engine *deck.Engine, mapping Mapping, log *zap.Logger) *Listener {
	return &Listener{broker: broker, engine: engine, mapping: mapping, log: log}
}

// HandleMessage is called by the MIDI driver goroutine. The message is
// applied in the engine goroutine; if the engine queue is full it is
// dropped.
func (l *Listener) HandleMessage(msg midi.Message, timestampms int32) {
	if !l.broker.Do(func() { l.mapping.Apply(l.engine, msg) }) {
		l.log.Debug("engine busy, midi message dropped", zap.Stringer("msg", msg))
	}
}
