package deck

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences are the user adjustable settings of the player. They are
// supplied at construction and can be replaced at any time with
// SetPreferences.
type Preferences struct {
	AutoPlay                 bool    `yaml:"autoPlay"`
	DefaultVolume            float64 `yaml:"defaultVolume"`     // 0..100, initial volume of every track
	SeekStepSeconds          float64 `yaml:"seekStepSeconds"`   // arrow keys seek by this much
	VolumeStepPercent        float64 `yaml:"volumeStepPercent"` // volume nudge step
	KeyboardShortcutsEnabled bool    `yaml:"keyboardShortcutsEnabled"`
	VUSensitivity            float64 `yaml:"vuSensitivity"` // multiplier applied to the raw meter level
	SmoothTransitions        bool    `yaml:"smoothTransitions"`
}

const configDirName = "stemdeck"

//go:embed preferences.yml
var defaultPreferencesYaml []byte

// DefaultPreferences returns the preferences used when the user has not
// configured anything.
func DefaultPreferences() Preferences {
	var p Preferences
	if err := decodeStrict(defaultPreferencesYaml, &p); err != nil {
		panic(fmt.Errorf("failed to unmarshal default preferences: %w", err))
	}
	return p
}

// ReadCustomConfig reads a yaml file from the stemdeck directory inside the
// user config dir into target, which must be a pointer. Fields missing from
// the file keep their value.
func ReadCustomConfig(filename string, target any) error {
	path, err := CustomConfigPath(filename)
	if err != nil {
		return err
	}
	return readYamlFile(path, target)
}

// CustomConfigPath returns where ReadCustomConfig looks for filename.
func CustomConfigPath(filename string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configDirName, filename), nil
}

// MakePreferences returns the defaults overlaid with the user's
// preferences.yml. A missing file is not an error; a malformed one is, and
// the defaults are returned alongside it.
func MakePreferences() (Preferences, error) {
	p := DefaultPreferences()
	err := ReadCustomConfig("preferences.yml", &p)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return DefaultPreferences(), err
	}
	return p.Normalize(), nil
}

// ReadPreferences returns the defaults overlaid with the file at path.
func ReadPreferences(path string) (Preferences, error) {
	p := DefaultPreferences()
	if err := readYamlFile(path, &p); err != nil {
		return DefaultPreferences(), err
	}
	return p.Normalize(), nil
}

// Normalize clamps the values into their valid ranges, replacing
// meaningless ones with the defaults.
func (p Preferences) Normalize() Preferences {
	d := DefaultPreferences()
	if math.IsNaN(p.DefaultVolume) {
		p.DefaultVolume = d.DefaultVolume
	}
	p.DefaultVolume = clampFloat(p.DefaultVolume, 0, 100)
	if !(p.SeekStepSeconds > 0) {
		p.SeekStepSeconds = d.SeekStepSeconds
	}
	if !(p.VolumeStepPercent > 0) {
		p.VolumeStepPercent = d.VolumeStepPercent
	}
	p.VolumeStepPercent = min(p.VolumeStepPercent, 100)
	if !(p.VUSensitivity > 0) || math.IsInf(p.VUSensitivity, 0) {
		p.VUSensitivity = d.VUSensitivity
	}
	return p
}

func readYamlFile(path string, target any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := decodeStrict(b, target); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func decodeStrict(b []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) { // empty file = no overrides
		return err
	}
	return nil
}
