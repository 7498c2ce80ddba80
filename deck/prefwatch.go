package deck

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchPreferences calls fn with the reloaded preferences every time the file
// at path is written or created, until ctx is done. The directory
// is watched instead of the file, as many editors save by renaming a new file
// over the old one. fn is called from the watcher goroutine; to apply the
// preferences to an engine, forward them through the broker:
//
//	deck.WatchPreferences(ctx, path, func(p deck.Preferences, err error) {
//		if err == nil {
//			deck.TrySend(broker.ToEngine, deck.MsgToEngine{Data: p})
//		}
//	})
func WatchPreferences(ctx context.Context, path string, fn func(Preferences, error)) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create preferences watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("could not watch %s: %w", filepath.Dir(path), err)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					fn(ReadPreferences(path))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(Preferences{}, err)
			}
		}
	}()
	return nil
}
