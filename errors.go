package stemdeck

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPlaybackRejected is returned by Media.Play or BatchStarter.StartAll
	// when the output refuses to start, e.g. because it is not running.
	ErrPlaybackRejected = errors.New("playback rejected")
	// ErrAborted is returned when a start was interrupted by a pause or stop.
	ErrAborted = errors.New("playback aborted")
)

// LoadError is returned by a Loader when a stem could not be fetched or
// decoded.
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load %s: %v", e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsCancellation reports whether err only signals that an operation was
// interrupted on purpose. Such errors are expected during rapid pause/stop and
// are not worth reporting.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrAborted)
}
