package migration

import (
	"fmt"

	"github.com/mmcdole/kanshi/internal/domain"
)

// entriesCommand adds or removes a set of entries on one list and forwards
// the resulting diff to the list observer. Undo reverts only what Execute
// actually changed, so entries that were never on the list stay off it.
type entriesCommand struct {
	lists    domain.ListStore
	observer domain.ListObserver
	listType domain.ListType
	entries  []domain.ListEntry
	remove   bool

	applied domain.ListDiff
}

func addEntries(lists domain.ListStore, observer domain.ListObserver, lt domain.ListType, entries []domain.ListEntry) *entriesCommand {
	return &entriesCommand{lists: lists, observer: observer, listType: lt, entries: entries}
}

func removeEntries(lists domain.ListStore, observer domain.ListObserver, lt domain.ListType, entries []domain.ListEntry) *entriesCommand {
	return &entriesCommand{lists: lists, observer: observer, listType: lt, entries: entries, remove: true}
}

func (c *entriesCommand) Execute() error {
	if c.remove {
		c.applied = c.lists.Remove(c.listType, c.entries...)
	} else {
		c.applied = c.lists.Add(c.listType, c.entries...)
	}
	c.notify(c.applied)
	return nil
}

func (c *entriesCommand) Undo() error {
	var diff domain.ListDiff
	if c.remove {
		diff = c.lists.Add(c.listType, c.applied.Removed...)
	} else {
		diff = c.lists.Remove(c.listType, c.applied.Added...)
	}
	c.applied = domain.ListDiff{}
	c.notify(diff)
	return nil
}

func (c *entriesCommand) notify(diff domain.ListDiff) {
	if !diff.IsEmpty() {
		c.observer.OnListChange(diff)
	}
}

func (c *entriesCommand) Description() string {
	verb := "Add"
	if c.remove {
		verb = "Remove"
	}
	return fmt.Sprintf("%s %d entries on %s", verb, len(c.entries), c.listType)
}
