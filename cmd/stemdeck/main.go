package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/worshipkit/stemdeck/config"
	"github.com/worshipkit/stemdeck/logger"
	"github.com/worshipkit/stemdeck/version"
	"go.uber.org/zap"
)

var (
	envFile string
	cfg     config.Config
	log     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     "stemdeck",
	Short:   "Play multitrack stems together with per-track volume, mute and solo.",
	Version: version.VersionOrHash,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		var err error
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		if cfg, err = config.Load(files...); err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
		if log, err = logger.New(cfg.Log); err != nil {
			return fmt.Errorf("could not create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(c *cobra.Command, args []string) {
		log.Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Env file to read the configuration from (default .env).")
	rootCmd.AddCommand(playCmd, probeCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
