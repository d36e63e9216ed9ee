// Package config loads tempo-wav defaults from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds command defaults, loaded from environment variables.
type Config struct {
	// Live playback
	SampleRate int     // live context rate in Hz
	Volume     float64 // live playback level

	// Adjustments applied before export
	Tempo     float64
	Semitones float64

	// Export
	OutputDir     string
	ExportTimeout time.Duration

	KeepAdjustments bool // keep tempo/pitch/volume across imports
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate: envInt("TEMPO_WAV_SAMPLE_RATE", 44100),
		Volume:     envFloat("TEMPO_WAV_VOLUME", 0.2),

		Tempo:     envFloat("TEMPO_WAV_TEMPO", 1.0),
		Semitones: envFloat("TEMPO_WAV_SEMITONES", 0),

		OutputDir:     envStr("TEMPO_WAV_OUTPUT_DIR", ""),
		ExportTimeout: time.Duration(envInt("TEMPO_WAV_EXPORT_TIMEOUT", 300)) * time.Second,

		KeepAdjustments: envBool("TEMPO_WAV_KEEP_ADJUSTMENTS", false),
	}
}

// LoadDotEnv reads variables from the given .env files (".env" when none
// are given) without overriding variables that are already set.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
