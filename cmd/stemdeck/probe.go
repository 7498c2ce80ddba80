package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/worshipkit/stemdeck"
	"golang.org/x/sync/errgroup"
)

var probeJobs int

var probeCmd = &cobra.Command{
	Use:   "probe [setlist.yml | locator...]",
	Short: "Load every stem and print its duration.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().IntVarP(&probeJobs, "jobs", "j", 4, "Number of stems loaded at the same time.")
}

func runProbe(c *cobra.Command, args []string) error {
	_, descs, baseDir, err := readTracks(args)
	if err != nil {
		return err
	}
	loader, err := newLoader(baseDir)
	if err != nil {
		return err
	}
	media := make([]stemdeck.Media, len(descs))
	errs := make([]error, len(descs))
	var g errgroup.Group
	g.SetLimit(max(probeJobs, 1))
	for i, d := range descs {
		g.Go(func() error {
			media[i], errs[i] = loader.Load(c.Context(), d, func(float64) {})
			return nil
		})
	}
	g.Wait()
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tINSTRUMENT\tDURATION\tLOCATOR")
	failed := 0
	for i, d := range descs {
		var dur string
		if errs[i] != nil {
			failed++
			dur = "error: " + errs[i].Error()
		} else {
			dur = clock(media[i].Duration())
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, d.Name(), d.InstrumentTag, dur, d.Locator)
	}
	w.Flush()
	if failed > 0 {
		return fmt.Errorf("%d of %d stems failed to load", failed, len(descs))
	}
	return nil
}

// loadAll loads every stem, failing if any of them fails.
func loadAll(ctx context.Context, loader stemdeck.Loader, descs []stemdeck.TrackDescriptor) ([]stemdeck.Media, error) {
	media := make([]stemdeck.Media, len(descs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(probeJobs, 1))
	for i, d := range descs {
		g.Go(func() error {
			m, err := loader.Load(ctx, d, func(float64) {})
			media[i] = m
			return err
		})
	}
	return media, g.Wait()
}
