// Package cli is a thin command surface that reads a YAML configuration,
// hands it to the scheduling core, and prints the result as JSON. No flag
// parsing, file I/O, or presentation logic ever crosses into
// internal/scheduling; this package only orchestrates calls into it.
package cli

import (
	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/config"
	"github.com/meridianhire/panelsched/internal/scheduling/domain"
)

// App holds the CLI's dependencies on the scheduling core. A single
// instance is built once in cmd/panelsched/main.go and handed to the
// package via SetApp before command execution begins.
type App struct {
	InstanceBuilder *services.InstanceBuilder
	SolverDriver    *services.SolverDriver
}

var currentApp *App

// SetApp installs the App instance commands read from.
func SetApp(app *App) { currentApp = app }

// GetApp returns the installed App, or nil if main hasn't wired one yet.
func GetApp() *App { return currentApp }

// buildInstance runs the config.Validate → InstanceBuilder.Build pipeline
// shared by every subcommand that needs a domain.Instance.
func buildInstance(doc map[string]any) (*domain.Instance, error) {
	normalized, err := config.Validate(doc)
	if err != nil {
		return nil, err
	}
	return currentApp.InstanceBuilder.Build(normalized)
}
