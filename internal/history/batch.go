package history

import (
	"errors"
	"fmt"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Batch runs several commands as one reversible unit.
// Commands execute in order and undo in reverse order.
type Batch struct {
	Name     string
	Commands []domain.ReversibleCommand
}

// NewBatch creates a batch command.
func NewBatch(name string, cmds ...domain.ReversibleCommand) *Batch {
	return &Batch{Name: name, Commands: cmds}
}

// Execute runs every command in order and stops at the first failure.
// Commands already applied stay applied.
func (b *Batch) Execute() error {
	for _, cmd := range b.Commands {
		if err := cmd.Execute(); err != nil {
			return fmt.Errorf("%s: %w", cmd.Description(), err)
		}
	}
	return nil
}

// Undo reverts every command in reverse order.
func (b *Batch) Undo() error {
	return undoAll(b.Commands)
}

func (b *Batch) Description() string { return b.Name }

// Len returns the number of commands in the batch
func (b *Batch) Len() int { return len(b.Commands) }

func undoAll(cmds []domain.ReversibleCommand) error {
	var errs []error
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(); err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", cmds[i].Description(), err))
		}
	}
	return errors.Join(errs...)
}
