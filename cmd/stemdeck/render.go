package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/worshipkit/stemdeck/deck"
	"go.uber.org/zap"
)

var (
	renderOutput  string
	renderRaw     bool
	renderPCM     bool
	renderStart   float64
	renderLength  float64
	renderMute    []int
	renderSolo    []int
	renderVolumes []float64
)

var renderCmd = &cobra.Command{
	Use:   "render [setlist.yml | locator...]",
	Short: "Render a mixdown of the stems to a .wav or .raw file.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOutput, "output", "o", "", "Output file. Defaults to the setlist title with .wav or .raw extension.")
	f.BoolVarP(&renderRaw, "raw", "r", false, "Output a headerless .raw file instead of .wav.")
	f.BoolVarP(&renderPCM, "pcm", "c", false, "Convert audio to 16-bit signed PCM. By default, float32 samples are written.")
	f.Float64Var(&renderStart, "start", 0, "Start of the rendered range in seconds.")
	f.Float64Var(&renderLength, "length", 0, "Length of the rendered range in seconds; 0 renders until the longest stem ends.")
	f.IntSliceVar(&renderMute, "mute", nil, "Numbers of the tracks to mute, starting from 1.")
	f.IntSliceVar(&renderSolo, "solo", nil, "Numbers of the tracks to solo, starting from 1.")
	f.Float64SliceVar(&renderVolumes, "volume", nil, "Volumes (0-100) of the tracks in order; missing ones use the default volume.")
}

func runRender(c *cobra.Command, args []string) error {
	title, descs, baseDir, err := readTracks(args)
	if err != nil {
		return err
	}
	loader, err := newLoader(baseDir)
	if err != nil {
		return err
	}
	media, err := loadAll(c.Context(), loader, descs)
	if err != nil {
		return err
	}
	_, prefs, err := readPreferences()
	if err != nil {
		log.Warn("using default preferences", zap.Error(err))
	}
	tracks := make([]deck.Track, len(descs))
	duration := 0.0
	for i := range tracks {
		tracks[i] = deck.Track{
			Volume: prefs.DefaultVolume,
			Muted:  slices.Contains(renderMute, i+1),
			Soloed: slices.Contains(renderSolo, i+1),
		}
		if i < len(renderVolumes) {
			tracks[i].Volume = renderVolumes[i]
		}
		duration = max(duration, media[i].Duration())
	}
	tracks = deck.RecomputeGains(tracks)
	for i, m := range media {
		m.SetGain(tracks[i].EffectiveGain)
		m.SetPosition(renderStart)
	}
	if err := loader.StartAll(c.Context(), media); err != nil {
		return fmt.Errorf("could not start the stems: %w", err)
	}
	length := duration - renderStart
	if renderLength > 0 {
		length = min(length, renderLength)
	}
	if length <= 0 {
		return fmt.Errorf("nothing to render after %v seconds", renderStart)
	}
	buffer := loader.Bus.Mixdown(int(length * float64(loader.Bus.SampleRate())))
	var contents []byte
	ext := ".wav"
	if renderRaw {
		ext = ".raw"
		contents, err = buffer.Raw(renderPCM)
	} else {
		contents, err = buffer.Wav(loader.Bus.SampleRate(), renderPCM)
	}
	if err != nil {
		return fmt.Errorf("could not encode the mixdown: %w", err)
	}
	out := renderOutput
	if out == "" {
		out = title + ext
	}
	if err := os.WriteFile(out, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", out, err)
	}
	log.Info("rendered mixdown", zap.String("file", out), zap.Float64("seconds", length))
	return nil
}
