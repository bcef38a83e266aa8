package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvPlatformDir = "NRF52_PLATFORM_DIR"
	EnvBoardsDir   = "NRF52_BOARDS_DIR"
	EnvLogLevel    = "NRF52_LOG_LEVEL"
	EnvLogFormat   = "NRF52_LOG_FORMAT"
	EnvHostOS      = "NRF52_HOST_OS"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Config holds the settings shared by all commands.
type Config struct {
	PlatformDir string
	// BoardsDir overrides <PlatformDir>/boards.
	BoardsDir string
	LogLevel  string
	LogFormat string
	// HostOS is the operating system packages and debug servers are chosen
	// for.
	HostOS string
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		PlatformDir: ".",
		LogLevel:    "warn",
		LogFormat:   "auto",
		HostOS:      runtime.GOOS,
	}
}

// Load builds the configuration from defaults, then envFile (a missing file
// is fine), then the process environment.
func Load(envFile string) (Config, error) {
	return LoadFrom(envFile, os.LookupEnv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(envFile string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	fileEnv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = values
		case errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, fmt.Errorf("config: read %s: %w", envFile, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		if v, ok := fileEnv[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
		return "", false
	}

	if v, ok := get(EnvPlatformDir); ok {
		cfg.PlatformDir = v
	}
	if v, ok := get(EnvBoardsDir); ok {
		cfg.BoardsDir = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := get(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := get(EnvHostOS); ok {
		cfg.HostOS = strings.ToLower(v)
	}
	return cfg, nil
}

// BoardsPath is the directory holding the board manifests.
func (c Config) BoardsPath() string {
	if c.BoardsDir != "" {
		return c.BoardsDir
	}
	return filepath.Join(c.PlatformDir, "boards")
}
