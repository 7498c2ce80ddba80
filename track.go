package stemdeck

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// TrackDescriptor describes one stem as supplied by the surrounding
	// application: where to fetch it from and how to label it.
	TrackDescriptor struct {
		Locator       string `yaml:"locator"`
		DisplayName   string `yaml:"name,omitempty"`
		InstrumentTag string `yaml:"instrument,omitempty"`
	}

	// Setlist is an ordered list of stems that are played together, as read
	// from a .yml file.
	Setlist struct {
		Title  string            `yaml:"title,omitempty"`
		Tracks []TrackDescriptor `yaml:"tracks"`
	}
)

var errNoLocator = errors.New("track has no locator")

// Name returns the display name of the track, falling back to the base name
// of the locator.
func (d TrackDescriptor) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	l := d.Locator
	if i := strings.IndexAny(l, "?#"); i >= 0 {
		l = l[:i]
	}
	return strings.TrimSuffix(path.Base(l), path.Ext(l))
}

// ReadSetlist decodes a setlist. Unknown fields are rejected so that typos in
// hand written files do not go unnoticed.
func ReadSetlist(r io.Reader) (Setlist, error) {
	var s Setlist
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Setlist{}, fmt.Errorf("could not decode setlist: %w", err)
	}
	for i, t := range s.Tracks {
		if strings.TrimSpace(t.Locator) == "" {
			return Setlist{}, fmt.Errorf("track %d: %w", i+1, errNoLocator)
		}
	}
	return s, nil
}

// WriteSetlist encodes the setlist as yaml.
func WriteSetlist(w io.Writer, s Setlist) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("could not encode setlist: %w", err)
	}
	return enc.Close()
}
