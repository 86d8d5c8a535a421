package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// BackendSettings configures the HTTP backend serving agents, teams and
// workflows.
type BackendSettings struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Settings mirrors settings.toml.
type Settings struct {
	DataDirectory string          `toml:"data_directory"`
	Backend       BackendSettings `toml:"backend"`
}

// LoadSettings reads settings.toml, creating a commented default file on
// first run.
func LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	settingsPath := GetSettingsFilePath()

	if !FileExists(settingsPath) {
		if err := CreateDefaultSettings(); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return settings, nil
	}

	_, err := toml.DecodeFile(settingsPath, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return settings, nil
}

// CreateDefaultSettings writes the commented template if no settings file
// exists yet.
func CreateDefaultSettings() error {
	configDir := GetConfigDir()
	if err := EnsureDir(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		return nil
	}

	content := GenerateSettingsTemplate()
	if err := os.WriteFile(settingsPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
