package history

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/kanshi/internal/domain"
)

// History keeps the undo and redo stacks of reversible commands.
// Implements domain.CommandHistory.
type History struct {
	mu     sync.Mutex
	done   []domain.ReversibleCommand
	undone []domain.ReversibleCommand
	logger *slog.Logger
}

// New creates an empty history.
func New(logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{logger: logger.With("component", "history")}
}

// Execute runs cmd and records it. A failed command is not recorded.
func (h *History) Execute(cmd domain.ReversibleCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := cmd.Execute(); err != nil {
		h.logger.Error("command failed", "error", err, "command", cmd.Description())
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}
	h.record(cmd)
	return nil
}

// Push records a command that has already been applied.
func (h *History) Push(cmd domain.ReversibleCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(cmd)
}

// record must be called with the lock held. A new command invalidates redo.
func (h *History) record(cmd domain.ReversibleCommand) {
	h.done = append(h.done, cmd)
	h.undone = nil
	h.logger.Debug("recorded command", "command", cmd.Description(), "depth", len(h.done))
}

// Undo reverts the most recent command.
func (h *History) Undo() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.done) == 0 {
		return domain.ErrNothingToUndo
	}
	cmd := h.done[len(h.done)-1]
	if err := cmd.Undo(); err != nil {
		h.logger.Error("undo failed", "error", err, "command", cmd.Description())
		return fmt.Errorf("undo %s: %w", cmd.Description(), err)
	}
	h.done = h.done[:len(h.done)-1]
	h.undone = append(h.undone, cmd)
	h.logger.Info("undid command", "command", cmd.Description())
	return nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undone) == 0 {
		return domain.ErrNothingToRedo
	}
	cmd := h.undone[len(h.undone)-1]
	if err := cmd.Execute(); err != nil {
		h.logger.Error("redo failed", "error", err, "command", cmd.Description())
		return fmt.Errorf("redo %s: %w", cmd.Description(), err)
	}
	h.undone = h.undone[:len(h.undone)-1]
	h.done = append(h.done, cmd)
	h.logger.Info("redid command", "command", cmd.Description())
	return nil
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.done) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undone) > 0
}

// UndoDescription returns the label of the command Undo would revert.
func (h *History) UndoDescription() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.done) == 0 {
		return ""
	}
	return h.done[len(h.done)-1].Description()
}

// Clear drops both stacks, e.g. after loading a different file.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = nil
	h.undone = nil
}
