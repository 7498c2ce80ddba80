// Package config reads the process configuration of the stemdeck command
// from the environment, after loading a .env file if one exists.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/worshipkit/stemdeck/logger"
	"github.com/worshipkit/stemdeck/stem"
)

type Config struct {
	Log             logger.Config
	SampleRate      int
	FFTSize         int
	MinConnectivity string // minimum connection quality for playback, see deck.ParseConnectionQuality
	Connectivity    string // assumed connection quality at startup
	PreferencesPath string // empty for the default user config location
	MIDIInput       string // name prefix of the MIDI input to open; empty disables MIDI
	BaseDir         string // directory relative file locators are resolved against
	S3              stem.S3Options
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// Load reads the configuration. Variables already set in the environment win
// over the ones in the env files; a missing env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return Config{
		Log: logger.Config{
			Level:      getEnv("STEMDECK_LOG_LEVEL", "info"),
			OutputPath: getEnv("STEMDECK_LOG_FILE", ""),
			MaxSize:    getEnvInt("STEMDECK_LOG_MAX_SIZE", 10),
			MaxBackups: getEnvInt("STEMDECK_LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("STEMDECK_LOG_MAX_AGE", 28),
			Compress:   getEnvBool("STEMDECK_LOG_COMPRESS", false),
			Console:    getEnvBool("STEMDECK_LOG_CONSOLE", false),
		},
		SampleRate:      getEnvInt("STEMDECK_SAMPLE_RATE", 44100),
		FFTSize:         getEnvInt("STEMDECK_FFT_SIZE", stem.DefaultFFTSize),
		MinConnectivity: getEnv("STEMDECK_MIN_CONNECTIVITY", "fair"),
		Connectivity:    getEnv("STEMDECK_CONNECTIVITY", "good"),
		PreferencesPath: getEnv("STEMDECK_PREFERENCES", ""),
		MIDIInput:       getEnv("STEMDECK_MIDI_INPUT", ""),
		BaseDir:         getEnv("STEMDECK_BASE_DIR", ""),
		S3: stem.S3Options{
			Endpoint:  getEnv("STEMDECK_S3_ENDPOINT", ""),
			AccessKey: getEnv("STEMDECK_S3_ACCESS_KEY", ""),
			SecretKey: os.Getenv("STEMDECK_S3_SECRET_KEY"),
			Region:    getEnv("STEMDECK_S3_REGION", ""),
			UseSSL:    getEnvBool("STEMDECK_S3_USE_SSL", true),
		},
	}, nil
}
