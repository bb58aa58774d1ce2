// Package cli implements the stickerpack command-line interface.
//
// This package provides commands for running the sticker variant pipeline
// as a whole or stage by stage, inspecting layered documents and templates,
// rendering app icon sets and managing the export cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Resize, compose and optionally export in one pass
//   - resize, compose, merge, export: Run a single stage
//   - relabel: Rewrite caption text in a collection from filenames
//   - inspect: Print the layer tree of a document or template
//   - icons: Render the square and 4:3 icon size tables
//   - cache: Manage the export cache
//
// # Configuration
//
// Options are read from stickerpack.toml (or --config), then STICKERPACK_*
// environment variables, then command-line flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every pipeline stage and cache event.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Composed 12 variants (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
