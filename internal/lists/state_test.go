package lists

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
)

type memoryPersister struct {
	lists map[domain.ListType][]domain.ListEntry
	saves int
	err   error
}

func (p *memoryPersister) GetList(lt domain.ListType) ([]domain.ListEntry, bool) {
	l, ok := p.lists[lt]
	return l, ok
}

func (p *memoryPersister) SaveList(lt domain.ListType, entries []domain.ListEntry) error {
	p.saves++
	if p.err != nil {
		return p.err
	}
	p.lists[lt] = entries
	return nil
}

func watch(id, title string) domain.WatchListEntry {
	return domain.WatchListEntry{Link: domain.NewIdentifier("myanimelist.net", id), Title: title}
}

func TestState_AddRemoveReturnsDiff(t *testing.T) {
	s := NewState(nil, adapter.NullLogger())
	a, b := watch("1", "A"), watch("2", "B")

	diff := s.Add(domain.ListTypeWatch, a, b)
	assert.Equal(t, domain.ListTypeWatch, diff.ListType)
	assert.Equal(t, []domain.ListEntry{a, b}, diff.Added)
	assert.Empty(t, diff.Removed)

	diff = s.Remove(domain.ListTypeWatch, a, watch("3", "missing"))
	assert.Equal(t, []domain.ListEntry{a}, diff.Removed)
	assert.Equal(t, []domain.WatchListEntry{b}, s.WatchList())
}

func TestState_AddSkipsForeignListTypes(t *testing.T) {
	s := NewState(nil, adapter.NullLogger())
	diff := s.Add(domain.ListTypeIgnore, watch("1", "A"))

	assert.True(t, diff.IsEmpty())
	assert.Equal(t, 0, s.Len(domain.ListTypeIgnore))
}

func TestState_RemoveFirstOccurrenceOnly(t *testing.T) {
	s := NewState(nil, adapter.NullLogger())
	a := watch("1", "A")
	s.Add(domain.ListTypeWatch, a, a)

	s.Remove(domain.ListTypeWatch, a)
	assert.Equal(t, 1, s.Len(domain.ListTypeWatch))
}

func TestState_EntriesReturnsCopy(t *testing.T) {
	s := NewState(nil, adapter.NullLogger())
	s.Add(domain.ListTypeWatch, watch("1", "A"))

	got := s.Entries(domain.ListTypeWatch)
	got[0] = watch("2", "B")

	assert.Equal(t, "A", s.Entries(domain.ListTypeWatch)[0].GetTitle())
}

func TestState_LoadsAndPersists(t *testing.T) {
	p := &memoryPersister{lists: map[domain.ListType][]domain.ListEntry{
		domain.ListTypeAnime: {domain.AnimeListEntry{Title: "Beck", Episodes: 26}},
	}}
	s := NewState(p, adapter.NullLogger())
	require.Len(t, s.AnimeList(), 1)

	s.Add(domain.ListTypeIgnore, domain.IgnoreListEntry{Title: "X", Link: domain.NewIdentifier("anidb.net", "1")})
	assert.Len(t, p.lists[domain.ListTypeIgnore], 1)

	s.Remove(domain.ListTypeAnime, domain.AnimeListEntry{Title: "Beck", Episodes: 26})
	assert.NotNil(t, p.lists[domain.ListTypeAnime])
	assert.Empty(t, p.lists[domain.ListTypeAnime])
	assert.Equal(t, 2, p.saves)

	// A no-op mutation does not hit the persister.
	s.Remove(domain.ListTypeAnime, domain.AnimeListEntry{Title: "gone"})
	assert.Equal(t, 2, p.saves)
}

func TestState_PersistFailureKeepsMemoryState(t *testing.T) {
	p := &memoryPersister{lists: map[domain.ListType][]domain.ListEntry{}, err: errors.New("disk full")}
	s := NewState(p, adapter.NullLogger())

	s.Add(domain.ListTypeWatch, watch("1", "A"))
	assert.Equal(t, 1, s.Len(domain.ListTypeWatch))
}

func TestState_Replace(t *testing.T) {
	p := &memoryPersister{lists: map[domain.ListType][]domain.ListEntry{}}
	s := NewState(p, adapter.NullLogger())
	s.Add(domain.ListTypeWatch, watch("1", "A"))

	s.Replace(map[domain.ListType][]domain.ListEntry{
		domain.ListTypeIgnore: {domain.IgnoreListEntry{Title: "I"}},
	})

	assert.Equal(t, 0, s.Len(domain.ListTypeWatch))
	assert.Equal(t, 1, s.Len(domain.ListTypeIgnore))
	assert.Empty(t, p.lists[domain.ListTypeWatch])
}
