package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/migration"
	"github.com/mmcdole/kanshi/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateChecking ApplicationState = iota
	StateReview
	StateFailed
	StateHelp
	StateConfirmRemove
)

// Vertical layout: header, progress/summary line, footer
const ChromeHeight = 5

// Model is the Bubble Tea model of the migration screen
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	MigrationSvc *migration.Service
	History      domain.CommandHistory
	Opener       URLOpener // nil disables opening pages
	From, To     string

	// UI Components
	Progress progress.Model
	Help     help.Model

	// Data
	Checked domain.MigrationProgress
	Rows    []Row
	Cursor  int
	Offset  int
	Err     error
	Applied int // Batches applied this session

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	logger *slog.Logger
}

// URLOpener opens a provider page
type URLOpener interface {
	Open(url string) error
}

// NewModel creates a new migration model
func NewModel(svc *migration.Service, hist domain.CommandHistory, from, to string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		State:        StateChecking,
		MigrationSvc: svc,
		History:      hist,
		From:         from,
		To:           to,
		Progress:     progress.New(progress.WithSolidFill(string(styles.Accent)), progress.WithoutPercentage()),
		Help:         help.New(),
		logger:       logger,
	}
}

// Init starts the classification run
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		CheckMigrationCmd(m.MigrationSvc, m.From, m.To),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Progress.Width = max(10, msg.Width-20)
		m.Help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		if m.State == StateChecking {
			return m, TickCmd(100 * time.Millisecond)
		}
		return m, nil

	case MigrationProgressMsg:
		m.Checked = msg.Progress
		if next, ok := msg.NextCmd.(tea.Cmd); ok && next != nil {
			return m, next
		}
		return m, nil

	case MigrationResultMsg:
		m.State = StateReview
		m.Rows = buildRows(msg.Result)
		m.Cursor, m.Offset = 0, 0
		without, multiple, single := msg.Result.Counts()
		m.logger.Info("migration check shown", "withoutMapping", without, "multipleMappings", multiple, "mappings", single)
		if len(m.Rows) == 0 {
			m.StatusMsg = "Nothing to migrate"
		}
		return m, nil

	case MigrationFailedMsg:
		m.State = StateFailed
		m.Err = msg.Err
		return m, nil

	case AppliedMsg:
		m.Applied++
		m.reloadRows()
		cmd := m.setStatus(msg.Description, false)
		return m, cmd

	case HistoryMsg:
		m.reloadRows()
		if msg.Undo {
			cmd := m.setStatus("Undone", false)
			return m, cmd
		}
		cmd := m.setStatus("Redone", false)
		return m, cmd

	case ErrMsg:
		m.logger.Error("tui action failed", "error", msg.Err, "context", msg.Context)
		text := msg.Error()
		if errors.Is(msg.Err, domain.ErrNothingToUndo) || errors.Is(msg.Err, domain.ErrNothingToRedo) {
			text = msg.Err.Error()
		}
		cmd := m.setStatus(text, true)
		return m, cmd

	case StatusMsg:
		cmd := m.setStatus(msg.Message, msg.IsError)
		return m, cmd

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(5 * time.Second)
	}
	return ClearStatusCmd(3 * time.Second)
}

// reloadRows rebuilds the rows from the service's current result, keeping
// choices of ambiguous rows that are still present.
func (m *Model) reloadRows() {
	result, ok := m.MigrationSvc.Result()
	if !ok {
		m.Rows = nil
		return
	}

	choices := make(map[domain.ListEntry]int)
	for _, r := range m.Rows {
		if r.Kind == RowAmbiguous {
			choices[r.Entry] = r.Choice
		}
	}
	m.Rows = buildRows(result)
	for i := range m.Rows {
		if c, ok := choices[m.Rows[i].Entry]; ok && m.Rows[i].Kind == RowAmbiguous {
			m.Rows[i].Choice = c
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	visible := m.visibleRows()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if visible > 0 && m.Cursor >= m.Offset+visible {
		m.Offset = m.Cursor - visible + 1
	}
}

func (m Model) visibleRows() int {
	if m.Height <= ChromeHeight {
		return len(m.Rows)
	}
	return m.Height - ChromeHeight
}

// summary counts the rows per kind
func (m Model) summary() string {
	var mapped, ambiguous, chosen, unmapped int
	for _, r := range m.Rows {
		switch r.Kind {
		case RowMapped:
			mapped++
		case RowAmbiguous:
			ambiguous++
			if r.Choice >= 0 {
				chosen++
			}
		case RowUnmapped:
			unmapped++
		}
	}
	return fmt.Sprintf("%d mapped · %d ambiguous (%d chosen) · %d without mapping", mapped, ambiguous, chosen, unmapped)
}
