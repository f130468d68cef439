// Package cli implements the tracewire command-line interface.
//
// This package provides commands for rendering wiring harness descriptions
// into diagrams and bills of materials, and for serving the renderer over
// HTTP. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PDF, or PNG diagrams plus DOT and BOM files
//   - bom: Print the bill of materials as tab-separated text
//   - serve: Run the renderer as an HTTP service
//   - cache: Manage the rendered-artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"os"
	"path/filepath"
)

// appName is the application name used for directories and display.
const appName = "tracewire"

// cacheDir returns the default artifact cache directory using the XDG
// standard (~/.cache/tracewire/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
