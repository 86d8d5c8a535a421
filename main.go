package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"agtui/api"
	"agtui/config"
	"agtui/model"
	"agtui/storage"
	"agtui/ui"
)

const Version = "v0.1.0"

func main() {
	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		missingVar := config.GetMissingEnvVar()
		errorMsg := fmt.Sprintf("Missing environment variable: %s\n\n"+
			"When using environment variables, both must be set:\n"+
			"  • AGTUI_BACKEND_URL\n"+
			"  • AGTUI_DATA_DIR\n\n"+
			"Set the missing variable before launching agtui.",
			missingVar)

		errorModal := ui.NewErrorModal("Configuration Error", errorMsg)
		p := tea.NewProgram(
			errorModal,
			tea.WithAltScreen(),
		)

		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize session storage: %v\n", err)
		os.Exit(1)
	}

	// The search index is a convenience layer; a broken index never blocks
	// the chat flow.
	searchIndex, err := storage.NewSearchIndex(cfg.DataDir())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: search index unavailable: %v", err)
		}
		searchIndex = nil
	}
	defer func() {
		if searchIndex != nil {
			searchIndex.Close()
		}
	}()

	client := api.NewClient(cfg)
	dataModel := model.NewModel(cfg, client, sessionStorage, searchIndex, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running agtui: %v\n", err)
		os.Exit(1)
	}
}
