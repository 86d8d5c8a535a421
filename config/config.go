package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Config holds the resolved runtime configuration. It is constructed once at
// startup and passed explicitly into every component that needs it.
type Config struct {
	BackendURL     string
	DataDirectory  string
	RequestTimeout time.Duration
}

var Debug = false
var DebugLog *log.Logger

// DataDir returns the data directory with ~ and env vars expanded.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// SessionsDir returns the directory holding one JSON file per session.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir(), "sessions")
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("AGTUI_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
	if dataDir := os.Getenv("AGTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

// Load reads settings.toml (creating a default one on first run), applies
// environment overrides and returns the resolved configuration.
func Load() (*Config, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BackendURL:     settings.Backend.URL,
		DataDirectory:  settings.DataDirectory,
		RequestTimeout: time.Duration(settings.Backend.TimeoutSeconds) * time.Second,
	}
	cfg.applyEnvOverrides()

	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDir()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	return cfg, nil
}

func CheckDebug() bool {
	debug := os.Getenv("AGTUI_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when AGTUI_DEBUG is set. Call sites
// guard with `config.DebugLog != nil`.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - the log may contain conversation fragments
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (AGTUI_DEBUG=%s) ===", os.Getenv("AGTUI_DEBUG"))
}

// HasAnyEnvVar reports whether any AGTUI_* override is set.
func HasAnyEnvVar() bool {
	return os.Getenv("AGTUI_BACKEND_URL") != "" ||
		os.Getenv("AGTUI_DATA_DIR") != ""
}

// HasAllEnvVars reports whether the full override set is present. When
// overrides are used both must be set, otherwise startup refuses to guess.
func HasAllEnvVars() bool {
	return os.Getenv("AGTUI_BACKEND_URL") != "" &&
		os.Getenv("AGTUI_DATA_DIR") != ""
}

// GetMissingEnvVar names the first missing override, for the startup error.
func GetMissingEnvVar() string {
	if os.Getenv("AGTUI_BACKEND_URL") == "" {
		return "AGTUI_BACKEND_URL"
	}
	if os.Getenv("AGTUI_DATA_DIR") == "" {
		return "AGTUI_DATA_DIR"
	}
	return ""
}
