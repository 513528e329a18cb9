package domain

import (
	"fmt"
	"sort"
	"time"
)

// AnimeType distinguishes release formats
type AnimeType string

const (
	AnimeTypeTV      AnimeType = "TV"
	AnimeTypeMovie   AnimeType = "MOVIE"
	AnimeTypeOVA     AnimeType = "OVA"
	AnimeTypeONA     AnimeType = "ONA"
	AnimeTypeSpecial AnimeType = "SPECIAL"
	AnimeTypeUnknown AnimeType = "UNKNOWN"
)

// AnimeStatus is the airing status reported by a provider
type AnimeStatus string

const (
	AnimeStatusFinished AnimeStatus = "FINISHED"
	AnimeStatusOngoing  AnimeStatus = "ONGOING"
	AnimeStatusUpcoming AnimeStatus = "UPCOMING"
	AnimeStatusUnknown  AnimeStatus = "UNKNOWN"
)

// AnimeSeason is the premiere season ("SPRING", 2004)
type AnimeSeason struct {
	Season string `json:"season,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// AnimeRecord is the logical anime entity shared by all of its identifiers.
// Sources is the full alias set across providers; everything else is
// descriptive data for read access only.
type AnimeRecord struct {
	Title     string        `json:"title"`
	Sources   []Identifier  `json:"sources"`
	Type      AnimeType     `json:"type,omitempty"`
	Episodes  int           `json:"episodes,omitempty"`
	Status    AnimeStatus   `json:"status,omitempty"`
	Season    AnimeSeason   `json:"season,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"` // Per episode
	Picture   string        `json:"picture,omitempty"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Synonyms  []string      `json:"synonyms,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
}

// SourcesOn returns the aliases of the record on one provider.
func (r *AnimeRecord) SourcesOn(host string) []Identifier {
	if r == nil {
		return nil
	}
	return FilterByHost(r.Sources, host)
}

// HasSource reports whether id is one of the record's aliases.
func (r *AnimeRecord) HasSource(id Identifier) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Sources {
		if s == id {
			return true
		}
	}
	return false
}

// Hosts returns the distinct providers of the alias set, sorted.
func (r *AnimeRecord) Hosts() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var hosts []string
	for _, s := range r.Sources {
		if s.Host() != "" && !seen[s.Host()] {
			seen[s.Host()] = true
			hosts = append(hosts, s.Host())
		}
	}
	sort.Strings(hosts)
	return hosts
}

// FormattedDuration returns the episode duration in a human-readable format
func (r *AnimeRecord) FormattedDuration() string {
	h := int(r.Duration.Hours())
	mins := int(r.Duration.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// Description returns secondary info for display, e.g. "TV, 26 episodes"
func (r *AnimeRecord) Description() string {
	switch {
	case r.Episodes == 1:
		return fmt.Sprintf("%s, 1 episode", r.Type)
	case r.Episodes > 1:
		return fmt.Sprintf("%s, %d episodes", r.Type, r.Episodes)
	default:
		return string(r.Type)
	}
}
