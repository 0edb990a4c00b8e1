// Package config resolves sensordb settings from a .env file and the
// environment. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/maloquacious/sensordb/internal/logger"
	"github.com/maloquacious/sensordb/internal/store"
)

const (
	EnvDBPath       = "SENSORDB_PATH"
	EnvSchemaPolicy = "SENSORDB_SCHEMA_POLICY"
	EnvLogLevel     = "LOG_LEVEL"
)

type Config struct {
	DBPath   string
	Policy   store.Policy
	LogLevel logger.Level
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DBPath:   store.GetDBPath(store.GetStorePath()),
		Policy:   store.PolicyStrict,
		LogLevel: logger.LevelInfo,
	}
}

// Load reads the optional env files (".env" when none are given) and then
// the process environment. Variables already set in the environment win
// over values from the files. A missing file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvSchemaPolicy); v != "" {
		p, err := store.ParsePolicy(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSchemaPolicy, err)
		}
		cfg.Policy = p
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		lvl, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}
