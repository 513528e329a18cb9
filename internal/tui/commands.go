package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/migration"
)

// CheckMigrationCmd starts a classification run and streams its events.
// Uses a continuation pattern to pump all progress messages to the UI.
func CheckMigrationCmd(svc *migration.Service, from, to string) tea.Cmd {
	return func() tea.Msg {
		// Use a generous timeout instead of Background
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)

		observer := migration.NewChannelObserver(ctx, 16)
		done := svc.Start(ctx, from, to, observer)
		go func() {
			<-done
			cancel()
		}()

		return readMigrationEvent(observer.Events())
	}
}

// readMigrationEvent reads one event from the channel and converts it to a
// message, attaching the continuation command to progress messages.
func readMigrationEvent(events <-chan migration.Event) tea.Msg {
	e, ok := <-events
	if !ok {
		// Channel closed without a terminal event: the run was cancelled
		return MigrationFailedMsg{Err: fmt.Errorf("migration check cancelled")}
	}

	switch e.Kind {
	case migration.EventResult:
		return MigrationResultMsg{Result: e.Result}
	case migration.EventFailure:
		return MigrationFailedMsg{Err: e.Err}
	default:
		return MigrationProgressMsg{
			Progress: e.Progress,
			NextCmd:  listenToMigrationCmd(events),
		}
	}
}

// listenToMigrationCmd returns a command that reads the next event
func listenToMigrationCmd(events <-chan migration.Event) tea.Cmd {
	return func() tea.Msg {
		return readMigrationEvent(events)
	}
}

// MigrateCmd applies the chosen mappings as one undoable batch
func MigrateCmd(svc *migration.Service, mappings domain.Mappings) tea.Cmd {
	return func() tea.Msg {
		if err := svc.MigrateEntries(context.Background(), mappings); err != nil {
			return ErrMsg{Err: err, Context: "Migration failed"}
		}
		return AppliedMsg{Description: fmt.Sprintf("Migrated %d entries", countMappings(mappings))}
	}
}

// RemoveUnmappedCmd removes the given entries as one undoable batch
func RemoveUnmappedCmd(svc *migration.Service, unmapped domain.Unmapped) tea.Cmd {
	return func() tea.Msg {
		if err := svc.RemoveUnmapped(context.Background(), unmapped); err != nil {
			return ErrMsg{Err: err, Context: "Removal failed"}
		}
		n := 0
		for _, entries := range unmapped {
			n += len(entries)
		}
		return AppliedMsg{Description: fmt.Sprintf("Removed %d entries", n)}
	}
}

// UndoCmd reverts the most recent batch
func UndoCmd(h domain.CommandHistory) tea.Cmd {
	return func() tea.Msg {
		if err := h.Undo(); err != nil {
			return ErrMsg{Err: err, Context: "Undo"}
		}
		return HistoryMsg{Undo: true}
	}
}

// RedoCmd re-applies the most recently undone batch
func RedoCmd(h domain.CommandHistory) tea.Cmd {
	return func() tea.Msg {
		if err := h.Redo(); err != nil {
			return ErrMsg{Err: err, Context: "Redo"}
		}
		return HistoryMsg{Undo: false}
	}
}

// OpenCmd opens the provider page of id
func OpenCmd(o URLOpener, id domain.Identifier) tea.Cmd {
	return func() tea.Msg {
		if err := o.Open(id.String()); err != nil {
			return ErrMsg{Err: err, Context: "Open"}
		}
		return StatusMsg{Message: "Opened " + id.String()}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears the status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

func countMappings(mappings domain.Mappings) int {
	n := 0
	for _, ms := range mappings {
		n += len(ms)
	}
	return n
}
