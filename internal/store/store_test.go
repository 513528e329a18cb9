package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
)

var (
	malBeck   = domain.NewIdentifier("myanimelist.net", "57")
	kitsuBeck = domain.NewIdentifier("kitsu.app", "38")
	malGone   = domain.NewIdentifier("myanimelist.net", "404")
)

func testSlots() map[domain.Identifier]domain.Slot {
	beck := &domain.AnimeRecord{
		Title:    "Beck",
		Sources:  []domain.Identifier{malBeck, kitsuBeck},
		Episodes: 26,
		Tags:     []string{"music"},
	}
	return map[domain.Identifier]domain.Slot{
		malBeck:   domain.Present(beck),
		kitsuBeck: domain.Present(beck),
		malGone:   domain.Dead(),
	}
}

// stores runs fn against a memory-only and a BoltDB-backed store.
func stores(t *testing.T, fn func(t *testing.T, s *BoltStore)) {
	t.Run("memory", func(t *testing.T) {
		s, err := New("", adapter.NullLogger())
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
	t.Run("bolt", func(t *testing.T) {
		s, err := New(t.TempDir(), adapter.NullLogger())
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func TestStore_SlotsRoundTrip(t *testing.T) {
	stores(t, func(t *testing.T, s *BoltStore) {
		_, ok := s.GetSlots()
		assert.False(t, ok)

		require.NoError(t, s.SaveSlots(testSlots()))

		slots, ok := s.GetSlots()
		require.True(t, ok)
		require.Len(t, slots, 3)
		assert.True(t, slots[malGone].IsDead())
		require.True(t, slots[malBeck].IsPresent())
		assert.Equal(t, "Beck", slots[malBeck].Record.Title)
		assert.Equal(t, []domain.Identifier{malBeck, kitsuBeck}, slots[malBeck].Record.Sources)
		assert.Same(t, slots[malBeck].Record, slots[kitsuBeck].Record, "aliases share one record after loading")
	})
}

func TestStore_SaveSlotsReplaces(t *testing.T) {
	stores(t, func(t *testing.T, s *BoltStore) {
		require.NoError(t, s.SaveSlots(testSlots()))
		require.NoError(t, s.SaveSlots(map[domain.Identifier]domain.Slot{
			malGone:                                domain.Dead(),
			domain.NewIdentifier("anidb.net", "1"): {},
		}))

		slots, ok := s.GetSlots()
		require.True(t, ok)
		assert.Len(t, slots, 1)
		assert.True(t, slots[malGone].IsDead())
	})
}

func TestStore_InvalidateProvider(t *testing.T) {
	stores(t, func(t *testing.T, s *BoltStore) {
		require.NoError(t, s.SaveSlots(testSlots()))
		s.InvalidateProvider("myanimelist.net")

		slots, ok := s.GetSlots()
		require.True(t, ok)
		assert.Len(t, slots, 1)
		assert.True(t, slots[kitsuBeck].IsPresent())
	})
}

func TestStore_ListsRoundTrip(t *testing.T) {
	stores(t, func(t *testing.T, s *BoltStore) {
		anime := []domain.ListEntry{
			domain.AnimeListEntry{Link: malBeck, Title: "Beck", Episodes: 26, Status: domain.StatusCompleted},
			domain.AnimeListEntry{Title: "Local only", Location: "/anime/local"},
		}
		watch := []domain.ListEntry{domain.WatchListEntry{Link: kitsuBeck, Title: "Beck"}}

		require.NoError(t, s.SaveList(domain.ListTypeAnime, anime))
		require.NoError(t, s.SaveList(domain.ListTypeWatch, watch))

		got, ok := s.GetList(domain.ListTypeAnime)
		require.True(t, ok)
		assert.Equal(t, anime, got)

		got, ok = s.GetList(domain.ListTypeWatch)
		require.True(t, ok)
		assert.Equal(t, watch, got)

		_, ok = s.GetList(domain.ListTypeIgnore)
		assert.False(t, ok)
	})
}

func TestStore_InvalidateSlotsKeepsLists(t *testing.T) {
	stores(t, func(t *testing.T, s *BoltStore) {
		require.NoError(t, s.SaveSlots(testSlots()))
		require.NoError(t, s.SaveList(domain.ListTypeIgnore, []domain.ListEntry{domain.IgnoreListEntry{Link: malGone, Title: "Gone"}}))

		s.InvalidateSlots()
		_, ok := s.GetSlots()
		assert.False(t, ok)
		_, ok = s.GetList(domain.ListTypeIgnore)
		assert.True(t, ok)

		s.InvalidateAll()
		_, ok = s.GetList(domain.ListTypeIgnore)
		assert.False(t, ok)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir, adapter.NullLogger())
	require.NoError(t, err)
	require.NoError(t, s.SaveSlots(testSlots()))
	require.NoError(t, s.SaveList(domain.ListTypeWatch, []domain.ListEntry{domain.WatchListEntry{Link: kitsuBeck, Title: "Beck"}}))
	require.NoError(t, s.Close())

	s, err = New(dir, adapter.NullLogger())
	require.NoError(t, err)
	defer s.Close()

	slots, ok := s.GetSlots()
	require.True(t, ok)
	assert.Len(t, slots, 3)

	watch, ok := s.GetList(domain.ListTypeWatch)
	require.True(t, ok)
	require.Len(t, watch, 1)
	assert.Equal(t, kitsuBeck, watch[0].GetLink())
}
