package seed

import (
	"fmt"
	"os"

	"github.com/spotline/spotline/pkg/logger"
)

// SetupLogging initializes the structured logger for the seed tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Spotline Seed Tool
==================

Floods an in-process engine with synthetic sightings and reactions,
waits for the pipeline to drain and verifies the resulting ranking and
reputation state.

Usage:
  go run cmd/seed/main.go [options]

Options:
  -sightings int
        Number of sightings to register (default 1000)
  -reactions int
        Upper bound of reactions per sighting (default 20)
  -users int
        Size of the synthetic user pool (default 200)
  -top int
        Number of top entries to rank at the end (default 50)
  -workers int
        Number of pipeline workers (default CPU cores * 2)
  -drain duration
        Maximum wait for the queue to drain (default 30s)
  -signals
        Also create matching signals (default true)
  -flairs
        Also create a small flair taxonomy (default true)
  -auto-assign
        Run a flair auto-assign sweep at the end (default true)
  -verbose
        Enable verbose logging and print the final ranking
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed/main.go

  # Larger run with more engagement
  go run cmd/seed/main.go -sightings 10000 -reactions 50 -workers 16

  # Print the final ranking
  go run cmd/seed/main.go -verbose -top 20
`)
}
