package library

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Cache is the identity cache as used by the library: the domain contract
// plus the read-only projections.
type Cache interface {
	domain.AnimeCache
	Lookup(id domain.Identifier) domain.Slot
	Snapshot() map[domain.Identifier]domain.Slot
	AvailableTags() []string
	AllEntries(host string) []domain.CachedEntry
}

// Commands provides operations that may hit the network or the disk.
type Commands struct {
	cache  Cache
	lists  domain.ListStore
	store  domain.Store
	logger *slog.Logger
}

// NewCommands creates a new Commands instance.
func NewCommands(cache Cache, lists domain.ListStore, store domain.Store, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{cache: cache, lists: lists, store: store, logger: logger.With("component", "library")}
}

// Restore pre-populates the cache from the store and returns how many slots
// were installed.
func (c *Commands) Restore() int {
	slots, ok := c.store.GetSlots()
	if !ok {
		return 0
	}
	n := 0
	for id, slot := range slots {
		if c.cache.Populate(id, slot) {
			n++
		}
	}
	c.logger.Debug("restored cache", "count", n)
	return n
}

// SaveSnapshot persists every resolved slot of the cache.
func (c *Commands) SaveSnapshot() error {
	snapshot := c.cache.Snapshot()
	if err := c.store.SaveSlots(snapshot); err != nil {
		c.logger.Error("failed to save cache", "error", err)
		return err
	}
	c.logger.Debug("saved cache", "count", len(snapshot))
	return nil
}

// Refresh resolves the link of every list entry. With force, the cache is
// cleared first so every link is loaded again.
//
// Loader failures do not stop the pass; they are joined into the returned
// error. Cancelling ctx stops the pass and returns ctx.Err().
func (c *Commands) Refresh(
	ctx context.Context,
	force bool,
	onProgress domain.ProgressFunc,
) (domain.RefreshResult, error) {
	if force {
		c.cache.Clear()
		c.store.InvalidateSlots()
	}

	links := c.linkedIdentifiers()
	result := domain.RefreshResult{Total: len(links)}
	c.logger.Debug("refreshing links", "count", len(links), "force", force)

	var errs []error
	for i, id := range links {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		slot, err := c.cache.Fetch(ctx, id)
		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, err)
		case slot.IsPresent():
			result.Present++
		case slot.IsDead():
			result.Dead++
		}

		if onProgress != nil {
			onProgress(i+1, len(links))
		}
	}

	if err := c.SaveSnapshot(); err != nil {
		// Persisting is best effort; the cache itself is up to date.
		c.logger.Warn("refresh not persisted", "error", err)
	}

	c.logger.Info("refreshed links",
		"total", result.Total, "present", result.Present, "dead", result.Dead, "failed", result.Failed)
	return result, errors.Join(errs...)
}

// InvalidateProvider drops the persisted slots of one provider. They are
// loaded again after the next start.
func (c *Commands) InvalidateProvider(host string) {
	c.store.InvalidateProvider(host)
	c.logger.Info("invalidated provider cache", "host", host)
}

// InvalidateAll clears the cache and everything persisted, lists included.
func (c *Commands) InvalidateAll() {
	c.cache.Clear()
	c.store.InvalidateAll()
	c.logger.Info("invalidated all cache")
}

// linkedIdentifiers returns the distinct links of all lists in list order.
func (c *Commands) linkedIdentifiers() []domain.Identifier {
	seen := make(map[domain.Identifier]bool)
	var ids []domain.Identifier
	for _, lt := range domain.ListTypes {
		for _, e := range c.lists.Entries(lt) {
			id := e.GetLink()
			if id.IsZero() || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
