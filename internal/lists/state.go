package lists

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Persister saves a list after it changed. domain.Store satisfies it.
type Persister interface {
	GetList(lt domain.ListType) ([]domain.ListEntry, bool)
	SaveList(lt domain.ListType, entries []domain.ListEntry) error
}

// State owns the anime list, the watch list and the ignore list.
// Implements domain.ListStore.
type State struct {
	mu      sync.RWMutex
	entries map[domain.ListType][]domain.ListEntry

	persister Persister // nil = memory only
	logger    *slog.Logger
}

// NewState creates empty lists. A non-nil persister is used to load the
// initial lists and is written after every mutation.
func NewState(persister Persister, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		entries:   make(map[domain.ListType][]domain.ListEntry),
		persister: persister,
		logger:    logger.With("component", "lists"),
	}
	if persister != nil {
		for _, lt := range domain.ListTypes {
			if saved, ok := persister.GetList(lt); ok {
				s.entries[lt] = saved
			}
		}
	}
	return s
}

// Entries returns a copy of one list in list order.
func (s *State) Entries(lt domain.ListType) []domain.ListEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ListEntry, len(s.entries[lt]))
	copy(out, s.entries[lt])
	return out
}

// AnimeList returns the anime list entries.
func (s *State) AnimeList() []domain.AnimeListEntry {
	return entriesOf[domain.AnimeListEntry](s, domain.ListTypeAnime)
}

// WatchList returns the watch list entries.
func (s *State) WatchList() []domain.WatchListEntry {
	return entriesOf[domain.WatchListEntry](s, domain.ListTypeWatch)
}

// IgnoreList returns the ignore list entries.
func (s *State) IgnoreList() []domain.IgnoreListEntry {
	return entriesOf[domain.IgnoreListEntry](s, domain.ListTypeIgnore)
}

func entriesOf[T domain.ListEntry](s *State, lt domain.ListType) []T {
	all := s.Entries(lt)
	out := make([]T, 0, len(all))
	for _, e := range all {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of entries on one list
func (s *State) Len(lt domain.ListType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[lt])
}

// Add appends entries to the list. Entries of another list type are skipped.
func (s *State) Add(lt domain.ListType, entries ...domain.ListEntry) domain.ListDiff {
	diff := domain.ListDiff{ListType: lt}

	s.mu.Lock()
	for _, e := range entries {
		if e == nil || e.GetListType() != lt {
			continue
		}
		s.entries[lt] = append(s.entries[lt], e)
		diff.Added = append(diff.Added, e)
	}
	snapshot := s.snapshotLocked(lt, diff)
	s.mu.Unlock()

	s.persist(lt, snapshot)
	return diff
}

// Remove deletes the first equal occurrence of each entry. Entries not on
// the list are ignored and absent from the returned diff.
func (s *State) Remove(lt domain.ListType, entries ...domain.ListEntry) domain.ListDiff {
	diff := domain.ListDiff{ListType: lt}

	s.mu.Lock()
	for _, e := range entries {
		list := s.entries[lt]
		for i := range list {
			if list[i] == e {
				s.entries[lt] = append(list[:i:i], list[i+1:]...)
				diff.Removed = append(diff.Removed, e)
				break
			}
		}
	}
	snapshot := s.snapshotLocked(lt, diff)
	s.mu.Unlock()

	s.persist(lt, snapshot)
	return diff
}

// Replace swaps the full content of every list, e.g. after an import.
func (s *State) Replace(lists map[domain.ListType][]domain.ListEntry) {
	s.mu.Lock()
	snapshots := make(map[domain.ListType][]domain.ListEntry, len(domain.ListTypes))
	for _, lt := range domain.ListTypes {
		s.entries[lt] = append([]domain.ListEntry{}, lists[lt]...)
		snapshots[lt] = append([]domain.ListEntry{}, s.entries[lt]...)
	}
	s.mu.Unlock()

	for lt, snapshot := range snapshots {
		s.persist(lt, snapshot)
	}
}

// snapshotLocked copies the list for persisting; nil when nothing changed.
func (s *State) snapshotLocked(lt domain.ListType, diff domain.ListDiff) []domain.ListEntry {
	if diff.IsEmpty() || s.persister == nil {
		return nil
	}
	return append([]domain.ListEntry{}, s.entries[lt]...)
}

func (s *State) persist(lt domain.ListType, snapshot []domain.ListEntry) {
	if snapshot == nil || s.persister == nil {
		return
	}
	if err := s.persister.SaveList(lt, snapshot); err != nil {
		s.logger.Error("failed to save list", "error", err, "list", lt.String())
	}
}
