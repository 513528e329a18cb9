package domain

// ReversibleCommand is one undoable unit of work.
type ReversibleCommand interface {
	// Execute applies the command
	Execute() error

	// Undo reverts a previously executed command
	Undo() error

	// Description is a short label for menus ("Migrate 3 entries")
	Description() string
}

// CommandHistory owns the undo/redo stacks.
type CommandHistory interface {
	// Execute runs cmd and records it on success
	Execute(cmd ReversibleCommand) error

	// Push records a command that has already been applied
	Push(cmd ReversibleCommand)

	Undo() error
	Redo() error
	CanUndo() bool
	CanRedo() bool
}
