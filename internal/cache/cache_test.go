package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
)

const (
	hostA = "myanimelist.net"
	hostB = "kitsu.app"
	hostC = "anidb.net"
)

// fakeLoader serves records by identifier and counts calls.
type fakeLoader struct {
	host    string
	records map[domain.Identifier]*domain.AnimeRecord
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (l *fakeLoader) Hostname() string { return l.host }

func (l *fakeLoader) LoadAnime(ctx context.Context, id domain.Identifier) (*domain.AnimeRecord, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return nil, l.err
	}
	r, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, domain.ErrDeadEntry)
	}
	return r, nil
}

// gatedLoader blocks every load until release is closed and honors ctx.
type gatedLoader struct {
	host    string
	record  *domain.AnimeRecord
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (l *gatedLoader) Hostname() string { return l.host }

func (l *gatedLoader) LoadAnime(ctx context.Context, id domain.Identifier) (*domain.AnimeRecord, error) {
	l.calls.Add(1)
	close(l.started)
	select {
	case <-l.release:
		return l.record, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func beck() *domain.AnimeRecord {
	return &domain.AnimeRecord{
		Title: "Beck",
		Sources: []domain.Identifier{
			domain.NewIdentifier(hostA, "57"),
			domain.NewIdentifier(hostB, "38"),
		},
		Tags: []string{"music", "comedy"},
	}
}

func newTestCache(t *testing.T, loaders ...domain.Loader) *Cache {
	t.Helper()
	c, err := New(adapter.NullLogger(), loaders...)
	require.NoError(t, err)
	return c
}

func TestCache_AliasConvergence(t *testing.T) {
	r := beck()
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}}
	c := newTestCache(t, loader)
	ctx := context.Background()

	slot, err := c.Fetch(ctx, r.Sources[0])
	require.NoError(t, err)
	require.True(t, slot.IsPresent())
	assert.Equal(t, "Beck", slot.Record.Title)

	sibling, err := c.Fetch(ctx, r.Sources[1])
	require.NoError(t, err)
	assert.True(t, sibling.IsPresent())
	assert.Same(t, slot.Record, sibling.Record)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestCache_PopulateFirstWriteWins(t *testing.T) {
	c := newTestCache(t)
	id := domain.NewIdentifier(hostA, "1")
	first := &domain.AnimeRecord{Title: "A", Sources: []domain.Identifier{id}}
	second := &domain.AnimeRecord{Title: "B", Sources: []domain.Identifier{id}}

	assert.True(t, c.Populate(id, domain.Present(first)))
	assert.False(t, c.Populate(id, domain.Present(second)))
	assert.False(t, c.Populate(id, domain.Dead()))

	assert.Equal(t, "A", c.Lookup(id).Record.Title)
}

func TestCache_PopulateIgnoresUnresolved(t *testing.T) {
	c := newTestCache(t)
	id := domain.NewIdentifier(hostA, "1")

	assert.False(t, c.Populate(id, domain.Slot{}))
	assert.False(t, c.Populate(id, domain.Slot{State: domain.SlotPresent}))
	assert.False(t, c.Populate(domain.Identifier{}, domain.Dead()))
	assert.Equal(t, 0, c.Len())
}

func TestCache_PrePopulatedSlotNotClobbered(t *testing.T) {
	r := beck()
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}}
	c := newTestCache(t, loader)

	saved := &domain.AnimeRecord{Title: "Beck (saved)", Sources: []domain.Identifier{r.Sources[1]}}
	require.True(t, c.Populate(r.Sources[1], domain.Present(saved)))

	_, err := c.Fetch(context.Background(), r.Sources[0])
	require.NoError(t, err)

	assert.Equal(t, "Beck (saved)", c.Lookup(r.Sources[1]).Record.Title)
	assert.Equal(t, "Beck", c.Lookup(r.Sources[0]).Record.Title)
}

func TestCache_NoLoaderMemoizesDead(t *testing.T) {
	loader := &fakeLoader{host: hostA}
	c := newTestCache(t, loader)
	id := domain.NewIdentifier(hostC, "99")

	for i := 0; i < 2; i++ {
		slot, err := c.Fetch(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, slot.IsDead())
	}
	assert.Equal(t, int32(0), loader.calls.Load())
}

func TestCache_DeadEntryOnlyForRequestedID(t *testing.T) {
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{}}
	c := newTestCache(t, loader)
	id := domain.NewIdentifier(hostA, "404")

	slot, err := c.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, slot.IsDead())

	_, err = c.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_LoaderFailureNotMemoized(t *testing.T) {
	r := beck()
	loader := &fakeLoader{host: hostA, err: errors.New("connection reset")}
	c := newTestCache(t, loader)

	_, err := c.Fetch(context.Background(), r.Sources[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoaderFailure)
	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, r.Sources[0], loadErr.ID)
	assert.True(t, c.Lookup(r.Sources[0]).IsUnresolved())

	loader.err = nil
	loader.records = map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}
	slot, err := c.Fetch(context.Background(), r.Sources[0])
	require.NoError(t, err)
	assert.True(t, slot.IsPresent())
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_FetchEmptyIdentifier(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Fetch(context.Background(), domain.Identifier{})
	assert.ErrorIs(t, err, domain.ErrNoIdentifier)
}

func TestCache_LoaderOmitsRequestedID(t *testing.T) {
	id := domain.NewIdentifier(hostA, "1")
	other := domain.NewIdentifier(hostB, "2")
	r := &domain.AnimeRecord{Title: "X", Sources: []domain.Identifier{other}}
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{id: r}}
	c := newTestCache(t, loader)

	slot, err := c.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, slot.IsPresent())
	assert.True(t, c.Lookup(other).IsPresent())
}

func TestCache_ClearMakesEverythingMissAgain(t *testing.T) {
	r := beck()
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}}
	c := newTestCache(t, loader)
	ctx := context.Background()

	_, err := c.Fetch(ctx, r.Sources[0])
	require.NoError(t, err)
	require.NotEmpty(t, c.AvailableMetaDataProviders())

	c.Clear()

	assert.Empty(t, c.AvailableMetaDataProviders())
	assert.True(t, c.Lookup(r.Sources[0]).IsUnresolved())
	assert.True(t, c.Lookup(r.Sources[1]).IsUnresolved())

	_, err = c.Fetch(ctx, r.Sources[0])
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_DuplicateLoaderRejected(t *testing.T) {
	_, err := New(adapter.NullLogger(), &fakeLoader{host: hostA}, &fakeLoader{host: hostA})
	assert.ErrorIs(t, err, domain.ErrDuplicateLoader)
}

func TestCache_Projections(t *testing.T) {
	c := newTestCache(t)
	a1 := domain.NewIdentifier(hostA, "1")
	a2 := domain.NewIdentifier(hostA, "2")
	b1 := domain.NewIdentifier(hostB, "10")
	dead := domain.NewIdentifier(hostC, "5")
	r := &domain.AnimeRecord{Title: "Split", Sources: []domain.Identifier{a1, a2, b1}, Tags: []string{"drama", "action"}}
	for _, id := range r.Sources {
		c.Populate(id, domain.Present(r))
	}
	c.Populate(dead, domain.Dead())

	assert.Equal(t, []string{hostB, hostA}, c.AvailableMetaDataProviders())
	assert.True(t, c.HasMetaDataProvider(hostB))
	assert.False(t, c.HasMetaDataProvider(hostC))
	assert.Equal(t, []string{"action", "drama"}, c.AvailableTags())

	entries := c.AllEntries(hostA)
	require.Len(t, entries, 2)
	assert.Equal(t, a1, entries[0].ID)
	assert.Equal(t, a2, entries[1].ID)
	assert.Same(t, entries[0].Record, entries[1].Record)
	assert.Empty(t, c.AllEntries(hostC))
}

func TestCache_MapToMetaDataProvider(t *testing.T) {
	r := beck()
	loader := &fakeLoader{host: hostA, records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}}
	c := newTestCache(t, loader)
	ctx := context.Background()

	ids, err := c.MapToMetaDataProvider(ctx, r.Sources[0], hostB)
	require.NoError(t, err)
	assert.Equal(t, []domain.Identifier{domain.NewIdentifier(hostB, "38")}, ids)

	ids, err = c.MapToMetaDataProvider(ctx, r.Sources[0], hostC)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = c.MapToMetaDataProvider(ctx, domain.NewIdentifier(hostA, "999"), hostB)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_ConcurrentFetchConverges(t *testing.T) {
	r := beck()
	loaderA := &fakeLoader{host: hostA, delay: 20 * time.Millisecond,
		records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[0]: r}}
	copyB := *r
	loaderB := &fakeLoader{host: hostB, delay: 20 * time.Millisecond,
		records: map[domain.Identifier]*domain.AnimeRecord{r.Sources[1]: &copyB}}
	c := newTestCache(t, loaderA, loaderB)

	var wg sync.WaitGroup
	results := make([]*domain.AnimeRecord, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot, err := c.Fetch(context.Background(), r.Sources[i%2])
			if err == nil {
				results[i] = slot.Record
			}
		}(i)
	}
	wg.Wait()

	winner := c.Lookup(r.Sources[0]).Record
	require.NotNil(t, winner)
	for _, got := range results[1:] {
		require.NotNil(t, got)
	}
	assert.LessOrEqual(t, loaderA.calls.Load(), int32(1))
	assert.LessOrEqual(t, loaderB.calls.Load(), int32(1))
	for i := 0; i < len(results); i += 2 {
		assert.Same(t, winner, results[i])
	}
}

func TestCache_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	r := beck()
	loader := &gatedLoader{host: hostA, record: r, started: make(chan struct{}), release: make(chan struct{})}
	c := newTestCache(t, loader)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, r.Sources[0])
		first <- err
	}()
	<-loader.started

	type result struct {
		slot domain.Slot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		slot, err := c.Fetch(context.Background(), r.Sources[0])
		second <- result{slot, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
	assert.True(t, c.Lookup(r.Sources[0]).IsUnresolved())

	close(loader.release)
	got := <-second
	require.NoError(t, got.err)
	require.True(t, got.slot.IsPresent())
	assert.Equal(t, "Beck", got.slot.Record.Title)
	assert.Equal(t, int32(1), loader.calls.Load())
}
