package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Result is one matching identifier with match metadata for highlighting.
// MatchedIndexes refer to MatchedTitle, which is the record title or one of
// its synonyms.
type Result struct {
	domain.CachedEntry
	MatchedTitle   string
	MatchedIndexes []int
	Score          int // Higher is better
}

// indexItem is one searchable title of one entry
type indexItem struct {
	entry int // Index into Index.entries
	title string
}

// Index implements sahilm/fuzzy.Source over the titles and synonyms of
// cached entries.
type Index struct {
	entries     []domain.CachedEntry
	items       []indexItem
	lowerTitles []string // Pre-computed lowercase titles
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of titles (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.items) }

// NewIndex indexes the title and every synonym of each entry.
func NewIndex(entries []domain.CachedEntry) *Index {
	idx := &Index{entries: entries}
	for i, e := range entries {
		if e.Record == nil {
			continue
		}
		for _, title := range append([]string{e.Record.Title}, e.Record.Synonyms...) {
			if title == "" {
				continue
			}
			idx.items = append(idx.items, indexItem{entry: i, title: title})
			idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(title))
		}
	}
	return idx
}

// Search returns one result per matching entry, best first. An entry matched
// through several titles keeps its best match.
func (idx *Index) Search(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || idx.Len() == 0 {
		return nil
	}

	best := make(map[int]Result)
	for _, m := range sfuzzy.FindFrom(query, idx) {
		item := idx.items[m.Index]
		if prev, ok := best[item.entry]; ok && prev.Score >= m.Score {
			continue
		}
		best[item.entry] = Result{
			CachedEntry:    idx.entries[item.entry],
			MatchedTitle:   item.title,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	results := make([]Result, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID.String() < results[j].ID.String()
	})
	return results
}

// FilterByTag returns the entries with a tag matching query. Matching is
// case-insensitive and ignores diacritics; query characters must appear in
// order ("sol" matches "slice of life").
func FilterByTag(entries []domain.CachedEntry, query string) []domain.CachedEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	var out []domain.CachedEntry
	for _, e := range entries {
		if e.Record == nil {
			continue
		}
		for _, tag := range e.Record.Tags {
			if fuzzy.MatchNormalizedFold(query, tag) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// MatchingTags returns the tags matching query, closest first.
func MatchingTags(tags []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return tags
	}
	ranks := fuzzy.RankFindNormalizedFold(query, tags)
	sort.Stable(ranks)
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}
