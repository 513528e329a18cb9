package library

import (
	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/search"
)

// Queries provides synchronous, cache-only reads.
type Queries struct {
	cache Cache
	lists domain.ListStore
}

// NewQueries creates a new Queries instance.
func NewQueries(cache Cache, lists domain.ListStore) *Queries {
	return &Queries{cache: cache, lists: lists}
}

func (q *Queries) AvailableProviders() []string {
	return q.cache.AvailableMetaDataProviders()
}

func (q *Queries) AvailableTags() []string {
	return q.cache.AvailableTags()
}

// Entries returns every cached identifier of host with its record.
func (q *Queries) Entries(host string) []domain.CachedEntry {
	return q.cache.AllEntries(host)
}

// Search fuzzy-matches query against the titles and synonyms of host's entries.
func (q *Queries) Search(host, query string) []search.Result {
	return search.NewIndex(q.cache.AllEntries(host)).Search(query)
}

// FilterByTag returns host's entries with a tag matching tag.
func (q *Queries) FilterByTag(host, tag string) []domain.CachedEntry {
	return search.FilterByTag(q.cache.AllEntries(host), tag)
}

// DeadEntries returns the rows of one list whose link is known to be dead.
// Links that were never resolved are not reported.
func (q *Queries) DeadEntries(lt domain.ListType) []domain.ListEntry {
	var dead []domain.ListEntry
	for _, e := range q.lists.Entries(lt) {
		if link := e.GetLink(); !link.IsZero() && q.cache.Lookup(link).IsDead() {
			dead = append(dead, e)
		}
	}
	return dead
}

// Record returns the cached record of id without loading.
func (q *Queries) Record(id domain.Identifier) (*domain.AnimeRecord, bool) {
	slot := q.cache.Lookup(id)
	return slot.Record, slot.IsPresent()
}
