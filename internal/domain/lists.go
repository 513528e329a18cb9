package domain

// ListStore owns the three user lists. Mutations return the diff they
// applied; they never notify observers themselves.
type ListStore interface {
	// Entries returns a snapshot of one list in list order
	Entries(lt ListType) []ListEntry

	// Add appends entries to the list
	Add(lt ListType, entries ...ListEntry) ListDiff

	// Remove deletes the first equal occurrence of each entry
	Remove(lt ListType, entries ...ListEntry) ListDiff
}

// ListObserver receives list diffs forwarded by whoever mutated a list.
type ListObserver interface {
	OnListChange(diff ListDiff)
}

// NoOpListObserver discards list diffs.
type NoOpListObserver struct{}

func (NoOpListObserver) OnListChange(ListDiff) {}
