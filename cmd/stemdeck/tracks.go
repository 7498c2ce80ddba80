package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/worshipkit/stemdeck"
	"github.com/worshipkit/stemdeck/stem"
)

// readTracks returns the tracks named on the command line: either a single
// setlist file, or the locators of the stems themselves. baseDir is the
// directory relative locators are resolved against.
func readTracks(args []string) (title string, descs []stemdeck.TrackDescriptor, baseDir string, err error) {
	if len(args) == 1 && isSetlist(args[0]) {
		f, err := os.Open(args[0])
		if err != nil {
			return "", nil, "", fmt.Errorf("could not open setlist: %w", err)
		}
		defer f.Close()
		s, err := stemdeck.ReadSetlist(f)
		if err != nil {
			return "", nil, "", fmt.Errorf("could not read setlist %v: %w", args[0], err)
		}
		title = s.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		return title, s.Tracks, filepath.Dir(args[0]), nil
	}
	for _, a := range args {
		descs = append(descs, stemdeck.TrackDescriptor{Locator: a})
	}
	if len(descs) > 0 {
		title = descs[0].Name()
	}
	return title, descs, "", nil
}

func isSetlist(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

// newLoader creates the bus and the loader putting stems on it, as
// configured.
func newLoader(baseDir string) (*stem.Loader, error) {
	bus, err := stem.NewBus(cfg.SampleRate, cfg.FFTSize)
	if err != nil {
		return nil, err
	}
	if cfg.BaseDir != "" {
		baseDir = cfg.BaseDir
	}
	fetcher := &stem.Fetcher{HTTP: http.DefaultClient, BaseDir: baseDir}
	if cfg.S3.Endpoint != "" {
		if fetcher.S3, err = stem.NewS3Client(cfg.S3); err != nil {
			return nil, err
		}
	}
	return &stem.Loader{Bus: bus, Fetcher: fetcher, Log: log}, nil
}
