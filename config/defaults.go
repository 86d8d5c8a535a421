package config

import "time"

const (
	DefaultBackendURL     = "http://localhost:7777"
	DefaultRequestTimeout = 120 * time.Second
)

func DefaultSettings() *Settings {
	return &Settings{
		DataDirectory: "~/.local/share/agtui",
		Backend: BackendSettings{
			URL:            DefaultBackendURL,
			TimeoutSeconds: 120,
		},
	}
}

func GenerateSettingsTemplate() string {
	return `# AGTUI Configuration
# Location: ~/.config/agtui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions are stored
data_directory = "~/.local/share/agtui"

[backend]
# Base URL of the agent backend
url = "http://localhost:7777"

# Timeout for streaming requests, in seconds
timeout_seconds = 120
`
}
