package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/kanshi/internal/domain"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateReview
		}
		return m, nil

	case StateConfirmRemove:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateReview
			return m, RemoveUnmappedCmd(m.MigrationSvc, unmappedOf(m.Rows))
		case key.Matches(msg, Keys.Deny):
			m.State = StateReview
		}
		return m, nil

	case StateChecking, StateFailed:
		if key.Matches(msg, Keys.Quit, Keys.Escape) {
			return m, tea.Quit
		}
		if m.State == StateFailed && key.Matches(msg, Keys.Recheck) {
			return m.recheck()
		}
		return m, nil
	}

	// Review keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.Cursor--
	case key.Matches(msg, Keys.Down):
		m.Cursor++
	case key.Matches(msg, Keys.HalfUp):
		m.Cursor -= m.visibleRows() / 2
	case key.Matches(msg, Keys.HalfDown):
		m.Cursor += m.visibleRows() / 2
	case key.Matches(msg, Keys.Home):
		m.Cursor = 0
	case key.Matches(msg, Keys.End):
		m.Cursor = len(m.Rows) - 1

	case key.Matches(msg, Keys.Left):
		m.cycleCurrent(-1)
	case key.Matches(msg, Keys.Right), key.Matches(msg, Keys.Skip):
		m.cycleCurrent(1)

	case key.Matches(msg, Keys.Migrate):
		mappings := mappingsOf(m.Rows)
		if len(mappings) == 0 {
			cmd := m.setStatus("No entry has a target", true)
			return m, cmd
		}
		return m, MigrateCmd(m.MigrationSvc, mappings)

	case key.Matches(msg, Keys.Remove):
		if len(unmappedOf(m.Rows)) == 0 {
			cmd := m.setStatus("No entry without mapping", true)
			return m, cmd
		}
		m.State = StateConfirmRemove
		return m, nil

	case key.Matches(msg, Keys.Recheck):
		return m.recheck()

	case key.Matches(msg, Keys.Open):
		if m.Opener == nil || m.Cursor >= len(m.Rows) {
			return m, nil
		}
		r := m.Rows[m.Cursor]
		id, ok := r.Target()
		if !ok {
			id = r.Entry.GetLink()
		}
		if id.IsZero() {
			cmd := m.setStatus("Entry has no link", true)
			return m, cmd
		}
		return m, OpenCmd(m.Opener, id)

	case key.Matches(msg, Keys.Undo):
		if !m.History.CanUndo() {
			cmd := m.setStatus("Nothing to undo", true)
			return m, cmd
		}
		return m, UndoCmd(m.History)

	case key.Matches(msg, Keys.Redo):
		if !m.History.CanRedo() {
			cmd := m.setStatus("Nothing to redo", true)
			return m, cmd
		}
		return m, RedoCmd(m.History)
	}

	m.clampCursor()
	return m, nil
}

func (m *Model) cycleCurrent(delta int) {
	if m.Cursor >= 0 && m.Cursor < len(m.Rows) {
		m.Rows[m.Cursor].cycleChoice(delta)
	}
}

// recheck starts a new classification run
func (m Model) recheck() (tea.Model, tea.Cmd) {
	if m.MigrationSvc.IsRunning() {
		cmd := m.setStatus("Check already running", true)
		return m, cmd
	}
	m.State = StateChecking
	m.Err = nil
	m.Checked = domain.MigrationProgress{}
	return m, tea.Batch(
		CheckMigrationCmd(m.MigrationSvc, m.From, m.To),
		TickCmd(100*time.Millisecond),
	)
}
