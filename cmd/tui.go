package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/linkreel/internal/shared"
)

const tuiLogName = "linkreel-tui.log"

// tuiLogger returns a logger writing next to the shared container, so log lines don't tear the rendered view.
func (r *Runner) tuiLogger() (*log.Logger, error) {
	path := filepath.Join(filepath.Dir(r.sharedContainer().Root()), tuiLogName)
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	return fileLogger, nil
}

// runTUI runs model until it quits and returns the final model.
func (r *Runner) runTUI(model tea.Model) (tea.Model, error) {
	final, err := r.program(model)
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}
	return final, nil
}
