package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"chainbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig
	Results ResultsConfig
	Bench   BenchConfig
	Logging LoggingConfig
}

// DataConfig holds input file settings
type DataConfig struct {
	// Dir is the directory input file names are resolved against.
	Dir string
}

// ResultsConfig holds where measurements are persisted
type ResultsConfig struct {
	LogPath string
	// DSN is optional; an empty DSN disables the relational result store.
	DSN string
}

// BenchConfig holds benchmark run settings
type BenchConfig struct {
	// Seed for the shuffled ordering; 0 seeds from the clock.
	Seed int64
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := getEnvInt64OrDefault("BENCH_SEED", 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load bench configuration")
	}

	config := &Config{
		Data: DataConfig{
			Dir: getEnvOrDefault("BENCH_DATA_DIR", "src"),
		},
		Results: ResultsConfig{
			LogPath: getEnvOrDefault("BENCH_RESULTS_LOG", "analysis.txt"),
			DSN:     strings.TrimSpace(os.Getenv("BENCH_RESULTS_DSN")),
		},
		Bench: BenchConfig{
			Seed: seed,
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnvOrDefault("BENCH_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("BENCH_LOG_FORMAT", "console")),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// InputPath resolves an input file name against the data directory.
func (c *Config) InputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Results.LogPath) == "" {
		return errors.ConfigInvalid("BENCH_RESULTS_LOG must not be blank")
	}
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("BENCH_LOG_LEVEL must be one of debug, info, warn, error")
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		return errors.ConfigInvalid("BENCH_LOG_FORMAT must be console or json")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + strconv.Quote(value))
	}
	return v, nil
}
