package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/worshipkit/stemdeck/cmd"
	"github.com/worshipkit/stemdeck/deck"
	"github.com/worshipkit/stemdeck/midi"
	"github.com/worshipkit/stemdeck/oto"
	"go.uber.org/zap"
)

const statusInterval = 500 * time.Millisecond

var playCmd = &cobra.Command{
	Use:   "play [setlist.yml | locator...]",
	Short: "Play the stems of a setlist together.",
	Long:  "Play the stems of a setlist together. Commands are read from standard input, one per line; type help to list them.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func runPlay(c *cobra.Command, args []string) error {
	title, descs, baseDir, err := readTracks(args)
	if err != nil {
		return err
	}
	loader, err := newLoader(baseDir)
	if err != nil {
		return err
	}
	prefsPath, prefs, err := readPreferences()
	if err != nil {
		log.Warn("using default preferences", zap.Error(err))
	}
	minQ, err := deck.ParseConnectionQuality(cfg.MinConnectivity)
	if err != nil {
		return err
	}
	q, err := deck.ParseConnectionQuality(cfg.Connectivity)
	if err != nil {
		return err
	}
	broker := deck.NewBroker()
	engine := deck.New(broker, loader, prefs, deck.WithLogger(log), deck.WithMinConnectivity(minQ))
	engine.SetConnectivity(q)
	if err := engine.Load(descs); err != nil {
		return err
	}
	output, err := oto.Open(loader.Bus, cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("could not open audio output: %w", err)
	}
	defer output.Close()

	ctx, cancel := signal.NotifyContext(c.Context(), os.Interrupt)
	defer cancel()
	go engine.Run(ctx)
	defer func() {
		deck.TrySend(broker.CloseEngine, struct{}{})
		select {
		case <-broker.FinishedEngine:
		case <-time.After(3 * time.Second):
			log.Warn("engine did not finish in time")
		}
	}()

	if prefsPath != "" {
		err := deck.WatchPreferences(ctx, prefsPath, func(p deck.Preferences, err error) {
			if err != nil {
				log.Warn("preferences not reloaded", zap.Error(err))
				return
			}
			deck.TrySend(broker.ToEngine, deck.MsgToEngine{Data: p})
		})
		if err != nil {
			log.Warn("not watching preferences", zap.Error(err))
		}
	}
	if cfg.MIDIInput != "" {
		listener := midi.NewListener(broker, engine, midi.DefaultMapping(), log)
		closeMIDI, err := cmd.OpenMIDI(cfg.MIDIInput, listener.HandleMessage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "MIDI control disabled: %v\n", err)
		} else {
			defer closeMIDI()
		}
	}

	return interact(ctx, broker, engine, title, readLines(ctx, os.Stdin))
}

// readLines sends the lines of r until it ends or ctx is done. The channel is
// closed when r ends; a line nobody receives once ctx is done is dropped.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()
	return lines
}

// interact runs the command loop until ctx is done, the user quits or lines
// is closed. The engine is only touched through closures sent to the broker.
func interact(ctx context.Context, broker *deck.Broker, engine *deck.Engine, title string, lines <-chan string) error {
	printer, err := newStatusPrinter()
	if err != nil {
		return err
	}
	statuses := make(chan statusView, 1)
	errs := make(chan error, 16)
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-broker.FinishedEngine:
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "help" {
				fmt.Println(commandHelp)
				continue
			}
			f, err := parseCommand(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			broker.Do(func() {
				if err := f(engine); err != nil {
					deck.TrySend(errs, err)
				}
			})
		case err := <-errs:
			fmt.Fprintln(os.Stderr, err)
		case <-ticker.C:
			broker.Do(func() { deck.TrySend(statuses, snapshot(engine, title)) })
		case v := <-statuses:
			if err := printer.Print(os.Stdout, v); err != nil {
				return err
			}
		}
	}
}

// readPreferences returns the path of the preferences file to watch and the
// preferences read from it.
func readPreferences() (string, deck.Preferences, error) {
	if cfg.PreferencesPath != "" {
		p, err := deck.ReadPreferences(cfg.PreferencesPath)
		return cfg.PreferencesPath, p, err
	}
	path, err := deck.CustomConfigPath("preferences.yml")
	if err != nil {
		return "", deck.DefaultPreferences(), err
	}
	p, err := deck.MakePreferences()
	if _, statErr := os.Stat(path); statErr != nil {
		// nothing to watch; the directory may not exist either
		path = ""
	}
	return path, p, err
}
