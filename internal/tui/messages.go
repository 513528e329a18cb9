package tui

import (
	"github.com/mmcdole/kanshi/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// MigrationProgressMsg is sent for every classified entry
type MigrationProgressMsg struct {
	Progress domain.MigrationProgress
	NextCmd  interface{} // Continuation command (tea.Cmd) for streaming
}

// MigrationResultMsg signals a finished classification run
type MigrationResultMsg struct {
	Result domain.MigrationResult
}

// MigrationFailedMsg signals a failed classification run
type MigrationFailedMsg struct {
	Err error
}

// AppliedMsg signals that a batch changed the lists
type AppliedMsg struct {
	Description string
}

// HistoryMsg signals an undo or redo
type HistoryMsg struct {
	Undo bool
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
