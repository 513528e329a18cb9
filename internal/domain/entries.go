package domain

import "fmt"

// ListType distinguishes the three user lists
type ListType int

const (
	ListTypeAnime ListType = iota
	ListTypeWatch
	ListTypeIgnore
)

// ListTypes is every list type in display order.
var ListTypes = []ListType{ListTypeAnime, ListTypeWatch, ListTypeIgnore}

// String returns a human-readable representation of the list type
func (l ListType) String() string {
	switch l {
	case ListTypeAnime:
		return "anime list"
	case ListTypeWatch:
		return "watch list"
	case ListTypeIgnore:
		return "ignore list"
	default:
		return "unknown list"
	}
}

// WatchingStatus is the user's progress on an anime list entry
type WatchingStatus string

const (
	StatusWatching  WatchingStatus = "WATCHING"
	StatusCompleted WatchingStatus = "COMPLETED"
	StatusOnHold    WatchingStatus = "ON_HOLD"
	StatusDropped   WatchingStatus = "DROPPED"
	StatusPlanned   WatchingStatus = "PLANNED"
)

// ListEntry is a row on one of the user's lists. Every entry carries at most
// one Identifier as its link; entries are plain comparable values.
type ListEntry interface {
	// GetLink returns the identifier the row points at (zero if unlinked)
	GetLink() Identifier

	// GetTitle returns the display title
	GetTitle() string

	// GetListType returns which list the entry belongs to
	GetListType() ListType

	// WithLink returns a copy of the entry pointing at another identifier
	WithLink(link Identifier) ListEntry
}

// AnimeListEntry is a row of the main anime list.
type AnimeListEntry struct {
	Link      Identifier     `json:"link"`
	Title     string         `json:"title"`
	Type      AnimeType      `json:"type,omitempty"`
	Episodes  int            `json:"episodes,omitempty"`
	Status    WatchingStatus `json:"status,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Location  string         `json:"location,omitempty"` // Local folder
}

func (e AnimeListEntry) GetLink() Identifier   { return e.Link }
func (e AnimeListEntry) GetTitle() string      { return e.Title }
func (e AnimeListEntry) GetListType() ListType { return ListTypeAnime }
func (e AnimeListEntry) WithLink(link Identifier) ListEntry {
	e.Link = link
	return e
}

// WatchListEntry is a row of the watch list.
type WatchListEntry struct {
	Link      Identifier `json:"link"`
	Title     string     `json:"title"`
	Thumbnail string     `json:"thumbnail,omitempty"`
}

func (e WatchListEntry) GetLink() Identifier   { return e.Link }
func (e WatchListEntry) GetTitle() string      { return e.Title }
func (e WatchListEntry) GetListType() ListType { return ListTypeWatch }
func (e WatchListEntry) WithLink(link Identifier) ListEntry {
	e.Link = link
	return e
}

// IgnoreListEntry is a row of the ignore list.
type IgnoreListEntry struct {
	Link      Identifier `json:"link"`
	Title     string     `json:"title"`
	Thumbnail string     `json:"thumbnail,omitempty"`
}

func (e IgnoreListEntry) GetLink() Identifier   { return e.Link }
func (e IgnoreListEntry) GetTitle() string      { return e.Title }
func (e IgnoreListEntry) GetListType() ListType { return ListTypeIgnore }
func (e IgnoreListEntry) WithLink(link Identifier) ListEntry {
	e.Link = link
	return e
}

// ListDiff describes one mutation of one list. Lists return it instead of
// notifying anyone; callers forward it to a ListObserver.
type ListDiff struct {
	ListType ListType
	Added    []ListEntry
	Removed  []ListEntry
}

// IsEmpty reports whether the mutation changed nothing
func (d ListDiff) IsEmpty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

func (d ListDiff) String() string {
	return fmt.Sprintf("%s: +%d -%d", d.ListType, len(d.Added), len(d.Removed))
}
