package library

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Document is the JSON exchange format: the three lists plus records that
// are known without asking a provider.
type Document struct {
	AnimeList  []domain.AnimeListEntry  `json:"animeList"`
	WatchList  []domain.WatchListEntry  `json:"watchList"`
	IgnoreList []domain.IgnoreListEntry `json:"ignoreList"`
	Records    []*domain.AnimeRecord    `json:"records,omitempty"`
}

// ImportResult summarizes an import
type ImportResult struct {
	Records int // Records that installed at least one alias
	Diffs   []domain.ListDiff
}

// Import reads a Document, pre-populates the cache with its records and
// appends its entries to the lists.
func (c *Commands) Import(r io.Reader) (ImportResult, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("failed to parse import: %w", err)
	}

	var result ImportResult
	for _, rec := range doc.Records {
		if rec == nil {
			continue
		}
		installed := false
		for _, id := range rec.Sources {
			if c.cache.Populate(id, domain.Present(rec)) {
				installed = true
			}
		}
		if installed {
			result.Records++
		}
	}

	add := func(lt domain.ListType, entries []domain.ListEntry) {
		if diff := c.lists.Add(lt, entries...); !diff.IsEmpty() {
			result.Diffs = append(result.Diffs, diff)
		}
	}
	add(domain.ListTypeAnime, toEntries(doc.AnimeList))
	add(domain.ListTypeWatch, toEntries(doc.WatchList))
	add(domain.ListTypeIgnore, toEntries(doc.IgnoreList))

	c.logger.Info("imported",
		"records", result.Records,
		"anime", len(doc.AnimeList), "watch", len(doc.WatchList), "ignore", len(doc.IgnoreList))
	return result, nil
}

// Export writes the lists and every cached record as a Document.
func (c *Commands) Export(w io.Writer) error {
	doc := Document{
		AnimeList:  entriesOf[domain.AnimeListEntry](c.lists.Entries(domain.ListTypeAnime)),
		WatchList:  entriesOf[domain.WatchListEntry](c.lists.Entries(domain.ListTypeWatch)),
		IgnoreList: entriesOf[domain.IgnoreListEntry](c.lists.Entries(domain.ListTypeIgnore)),
	}

	seen := make(map[*domain.AnimeRecord]bool)
	for _, slot := range c.cache.Snapshot() {
		if slot.IsPresent() && !seen[slot.Record] {
			seen[slot.Record] = true
			doc.Records = append(doc.Records, slot.Record)
		}
	}
	sort.Slice(doc.Records, func(i, j int) bool {
		return recordSortKey(doc.Records[i]) < recordSortKey(doc.Records[j])
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func recordSortKey(r *domain.AnimeRecord) string {
	if len(r.Sources) > 0 {
		return r.Sources[0].String()
	}
	return r.Title
}

func toEntries[T domain.ListEntry](in []T) []domain.ListEntry {
	out := make([]domain.ListEntry, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

func entriesOf[T domain.ListEntry](in []domain.ListEntry) []T {
	out := make([]T, 0, len(in))
	for _, e := range in {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
