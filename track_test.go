package stemdeck_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/worshipkit/stemdeck"
)

const setlist = `title: Amazing Grace
tracks:
  - locator: stems/drums.mp3
    instrument: drums
  - locator: https://example.com/stems/Bass%20DI.wav?token=abc
  - locator: s3://worship/keys.flac
    name: Keys
`

func TestReadSetlist(t *testing.T) {
	s, err := stemdeck.ReadSetlist(strings.NewReader(setlist))
	if err != nil {
		t.Fatalf("ReadSetlist failed: %v", err)
	}
	if s.Title != "Amazing Grace" || len(s.Tracks) != 3 {
		t.Fatalf("unexpected setlist %+v", s)
	}
	names := []string{"drums", "Bass%20DI", "Keys"}
	for i, want := range names {
		if got := s.Tracks[i].Name(); got != want {
			t.Errorf("track %d name = %q, want %q", i, got, want)
		}
	}
	if s.Tracks[0].InstrumentTag != "drums" {
		t.Errorf("instrument tag = %q", s.Tracks[0].InstrumentTag)
	}
}

func TestReadSetlistErrors(t *testing.T) {
	for _, tc := range []string{
		"tracks:\n  - locator: a.wav\n    volume: 50\n",
		"tracks:\n  - name: no locator\n",
		"tracks: [",
	} {
		if _, err := stemdeck.ReadSetlist(strings.NewReader(tc)); err == nil {
			t.Errorf("ReadSetlist(%q) succeeded, want error", tc)
		}
	}
}

func TestWriteSetlist(t *testing.T) {
	s, err := stemdeck.ReadSetlist(strings.NewReader(setlist))
	if err != nil {
		t.Fatalf("ReadSetlist failed: %v", err)
	}
	var b bytes.Buffer
	if err := stemdeck.WriteSetlist(&b, s); err != nil {
		t.Fatalf("WriteSetlist failed: %v", err)
	}
	s2, err := stemdeck.ReadSetlist(&b)
	if err != nil {
		t.Fatalf("written setlist could not be read back: %v", err)
	}
	if fmt.Sprint(s) != fmt.Sprint(s2) {
		t.Errorf("setlist changed when written: %+v != %+v", s, s2)
	}
}

func TestIsCancellation(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want bool
	}{
		{context.Canceled, true},
		{fmt.Errorf("start: %w", stemdeck.ErrAborted), true},
		{stemdeck.ErrPlaybackRejected, false},
		{&stemdeck.LoadError{Locator: "a.wav", Err: context.Canceled}, true},
		{errors.New("device lost"), false},
	} {
		if got := stemdeck.IsCancellation(tc.err); got != tc.want {
			t.Errorf("IsCancellation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
