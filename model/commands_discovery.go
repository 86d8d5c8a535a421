package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agtui/config"
)

// CheckBackend runs the one-time health check and, only if it succeeds, the
// three target listings. A failed health check short-circuits: no listing
// calls are attempted and the UI moves to the connection-error screen.
func (m *Model) CheckBackend() tea.Cmd {
	client := m.Client
	return func() tea.Msg {
		ctx := context.Background()

		if err := client.HealthCheck(ctx); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[model] health check failed: %v", err)
			}
			return DiscoveryResultMsg{Err: err}
		}

		discovery := client.ListAllTargets(ctx)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[model] discovered %d agents, %d teams, %d workflows",
				len(discovery.Agents), len(discovery.Teams), len(discovery.Workflows))
		}

		return DiscoveryResultMsg{Discovery: discovery}
	}
}
