package anilist

import (
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/kanshi/internal/domain"
)

const hostMyAnimeList = "myanimelist.net"

// MapMedia converts an AniList media to a domain record.
// The alias set is the AniList id plus the MyAnimeList id when known.
func MapMedia(m *Media, host string) *domain.AnimeRecord {
	r := &domain.AnimeRecord{
		Title:     title(m.Title),
		Sources:   []domain.Identifier{domain.NewIdentifier(host, strconv.Itoa(m.ID))},
		Type:      mapFormat(m.Format),
		Episodes:  m.Episodes,
		Status:    mapStatus(m.Status),
		Duration:  time.Duration(m.Duration) * time.Minute,
		Picture:   m.CoverImage.Large,
		Thumbnail: m.CoverImage.Medium,
	}
	if m.Season != "" && m.SeasonYear > 0 {
		r.Season = domain.AnimeSeason{Season: m.Season, Year: m.SeasonYear}
	}
	if m.IDMal != nil && *m.IDMal > 0 {
		r.Sources = append(r.Sources, domain.NewIdentifier(hostMyAnimeList, strconv.Itoa(*m.IDMal)))
	}

	seen := map[string]bool{r.Title: true}
	for _, s := range append([]string{m.Title.English, m.Title.Native}, m.Synonyms...) {
		if s != "" && !seen[s] {
			seen[s] = true
			r.Synonyms = append(r.Synonyms, s)
		}
	}

	tags := make(map[string]bool)
	for _, g := range m.Genres {
		addTag(r, tags, g)
	}
	for _, t := range m.Tags {
		addTag(r, tags, t.Name)
	}
	return r
}

func addTag(r *domain.AnimeRecord, seen map[string]bool, raw string) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" || seen[tag] {
		return
	}
	seen[tag] = true
	r.Tags = append(r.Tags, tag)
}

func title(t MediaTitle) string {
	if t.Romaji != "" {
		return t.Romaji
	}
	if t.English != "" {
		return t.English
	}
	return t.Native
}

func mapFormat(format string) domain.AnimeType {
	switch format {
	case "TV", "TV_SHORT":
		return domain.AnimeTypeTV
	case "MOVIE":
		return domain.AnimeTypeMovie
	case "OVA":
		return domain.AnimeTypeOVA
	case "ONA":
		return domain.AnimeTypeONA
	case "SPECIAL":
		return domain.AnimeTypeSpecial
	default:
		return domain.AnimeTypeUnknown
	}
}

func mapStatus(status string) domain.AnimeStatus {
	switch status {
	case "FINISHED":
		return domain.AnimeStatusFinished
	case "RELEASING":
		return domain.AnimeStatusOngoing
	case "NOT_YET_RELEASED":
		return domain.AnimeStatusUpcoming
	default:
		return domain.AnimeStatusUnknown
	}
}
