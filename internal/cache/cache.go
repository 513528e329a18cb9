package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Cache resolves identifiers of many providers to shared anime records.
// Implements domain.AnimeCache.
//
// Slots are write-once: the first Populate for an identifier wins and is
// never overwritten, so concurrent loads of sibling aliases converge on one
// record. No lock is held while a loader performs I/O.
type Cache struct {
	slots sync.Map // domain.Identifier -> domain.Slot

	loadersMu sync.RWMutex
	loaders   map[string]domain.Loader // host -> loader

	group  singleflight.Group
	logger *slog.Logger
}

// New creates an empty cache with the given loaders registered.
func New(logger *slog.Logger, loaders ...domain.Loader) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		loaders: make(map[string]domain.Loader),
		logger:  logger.With("component", "cache"),
	}
	for _, l := range loaders {
		if err := c.RegisterLoader(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RegisterLoader adds the loader for its host. At most one loader per host.
func (c *Cache) RegisterLoader(l domain.Loader) error {
	host := l.Hostname()

	c.loadersMu.Lock()
	defer c.loadersMu.Unlock()

	if _, ok := c.loaders[host]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateLoader, host)
	}
	c.loaders[host] = l
	c.logger.Debug("registered loader", "host", host)
	return nil
}

func (c *Cache) loaderFor(host string) (domain.Loader, bool) {
	c.loadersMu.RLock()
	defer c.loadersMu.RUnlock()
	l, ok := c.loaders[host]
	return l, ok
}

// Lookup returns the slot for id without loading (Unresolved on miss).
func (c *Cache) Lookup(id domain.Identifier) domain.Slot {
	if v, ok := c.slots.Load(id); ok {
		return v.(domain.Slot)
	}
	return domain.Slot{}
}

// Fetch returns the slot for id, loading it on a miss.
//
// A positive load populates every alias of the returned record. A dead
// answer, or a host without a loader, memoizes Dead for id only. Any other
// loader error is returned as a *domain.LoadError and leaves id unresolved.
func (c *Cache) Fetch(ctx context.Context, id domain.Identifier) (domain.Slot, error) {
	if id.IsZero() {
		return domain.Slot{}, domain.ErrNoIdentifier
	}

	if slot := c.Lookup(id); !slot.IsUnresolved() {
		c.logger.Debug("cache hit", "id", id, "state", slot.State)
		return slot, nil
	}

	loader, ok := c.loaderFor(id.Host())
	if !ok {
		c.logger.Debug("no loader for host, marking dead", "id", id, "host", id.Host())
		c.Populate(id, domain.Dead())
		return c.Lookup(id), nil
	}

	if err := ctx.Err(); err != nil {
		return domain.Slot{}, err
	}

	// Concurrent misses on the same identifier share one loader call. The
	// shared load outlives any single caller, so one caller giving up only
	// abandons its own wait.
	ch := c.group.DoChan(id.String(), func() (interface{}, error) {
		if !c.Lookup(id).IsUnresolved() {
			return nil, nil
		}
		return nil, c.load(context.WithoutCancel(ctx), loader, id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Slot{}, res.Err
		}
	case <-ctx.Done():
		return domain.Slot{}, ctx.Err()
	}
	return c.Lookup(id), nil
}

func (c *Cache) load(ctx context.Context, loader domain.Loader, id domain.Identifier) error {
	c.logger.Debug("cache miss, loading", "id", id)

	record, err := loader.LoadAnime(ctx, id)
	switch {
	case errors.Is(err, domain.ErrDeadEntry):
		c.logger.Info("anime is dead", "id", id)
		c.Populate(id, domain.Dead())
		return nil
	case err != nil:
		c.logger.Error("failed to load anime", "error", err, "id", id)
		return &domain.LoadError{ID: id, Err: err}
	case record == nil:
		return &domain.LoadError{ID: id, Err: errors.New("loader returned no record")}
	}

	present := domain.Present(record)
	for _, alias := range record.Sources {
		c.Populate(alias, present)
	}
	// The loader answered for id even if the provider left it out of the alias set.
	c.Populate(id, present)

	c.logger.Debug("loaded anime", "id", id, "title", record.Title, "aliases", len(record.Sources))
	return nil
}

// Populate installs slot for id unless id already has one.
// It reports whether the slot was installed.
func (c *Cache) Populate(id domain.Identifier, slot domain.Slot) bool {
	if id.IsZero() || slot.IsUnresolved() {
		return false
	}
	if slot.State == domain.SlotPresent && slot.Record == nil {
		return false
	}
	_, loaded := c.slots.LoadOrStore(id, slot)
	return !loaded
}

// Clear drops all slots. Registered loaders are kept.
func (c *Cache) Clear() {
	c.slots.Clear()
	c.logger.Info("cleared cache")
}

// Len returns the number of resolved identifiers (Present and Dead).
func (c *Cache) Len() int {
	n := 0
	c.slots.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Snapshot copies every resolved slot, e.g. for persisting.
func (c *Cache) Snapshot() map[domain.Identifier]domain.Slot {
	out := make(map[domain.Identifier]domain.Slot)
	c.slots.Range(func(k, v any) bool {
		out[k.(domain.Identifier)] = v.(domain.Slot)
		return true
	})
	return out
}

// present calls fn for every identifier with a live record.
func (c *Cache) present(fn func(id domain.Identifier, r *domain.AnimeRecord)) {
	c.slots.Range(func(k, v any) bool {
		if slot := v.(domain.Slot); slot.IsPresent() {
			fn(k.(domain.Identifier), slot.Record)
		}
		return true
	})
}

// AvailableMetaDataProviders returns the hosts of all present identifiers, sorted.
func (c *Cache) AvailableMetaDataProviders() []string {
	seen := make(map[string]bool)
	c.present(func(id domain.Identifier, _ *domain.AnimeRecord) {
		seen[id.Host()] = true
	})
	return sortedKeys(seen)
}

// HasMetaDataProvider reports whether host is among the available providers.
func (c *Cache) HasMetaDataProvider(host string) bool {
	found := false
	c.slots.Range(func(k, v any) bool {
		if k.(domain.Identifier).Host() == host && v.(domain.Slot).IsPresent() {
			found = true
			return false
		}
		return true
	})
	return found
}

// AvailableTags returns the distinct tags of all present records, sorted.
func (c *Cache) AvailableTags() []string {
	seen := make(map[string]bool)
	c.present(func(_ domain.Identifier, r *domain.AnimeRecord) {
		for _, tag := range r.Tags {
			seen[tag] = true
		}
	})
	return sortedKeys(seen)
}

// AllEntries returns one entry per present identifier on host. A record with
// several identifiers on the same host appears once per identifier.
func (c *Cache) AllEntries(host string) []domain.CachedEntry {
	var entries []domain.CachedEntry
	c.present(func(id domain.Identifier, r *domain.AnimeRecord) {
		if id.Host() == host {
			entries = append(entries, domain.CachedEntry{ID: id, Record: r})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries
}

// MapToMetaDataProvider returns the aliases on host of the record id resolves to.
// It never loads from host itself; only the alias set of id's record is consulted.
func (c *Cache) MapToMetaDataProvider(ctx context.Context, id domain.Identifier, host string) ([]domain.Identifier, error) {
	slot, err := c.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slot.IsPresent() {
		return nil, nil
	}
	return slot.Record.SourcesOn(host), nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
