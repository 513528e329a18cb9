package kitsu

import (
	"strings"
	"time"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Hosts of the external sites Kitsu maps to
const (
	hostMyAnimeList = "myanimelist.net"
	hostAniList     = "anilist.co"
	hostAniDB       = "anidb.net"
)

// externalSites maps Kitsu's externalSite values to provider hosts
var externalSites = map[string]string{
	"myanimelist/anime": hostMyAnimeList,
	"anilist/anime":     hostAniList,
	"anidb":             hostAniDB,
}

// MapAnime converts a Kitsu anime document to a domain record.
// The alias set starts with the Kitsu identifier itself.
func MapAnime(doc *Document, host string) *domain.AnimeRecord {
	a := doc.Data.Attributes
	r := &domain.AnimeRecord{
		Title:    a.CanonicalTitle,
		Sources:  []domain.Identifier{domain.NewIdentifier(host, doc.Data.ID)},
		Type:     mapSubtype(a.Subtype),
		Episodes: a.EpisodeCount,
		Status:   mapStatus(a.Status),
		Season:   mapSeason(a.StartDate),
		Duration: time.Duration(a.EpisodeLength) * time.Minute,
		Synonyms: synonyms(a),
	}
	if a.PosterImage != nil {
		r.Picture = a.PosterImage.Large
		r.Thumbnail = a.PosterImage.Small
	}

	seen := map[domain.Identifier]bool{r.Sources[0]: true}
	for _, inc := range doc.Included {
		switch inc.Type {
		case "mappings":
			mappedHost, ok := externalSites[inc.Attributes.ExternalSite]
			if !ok {
				continue
			}
			id := domain.NewIdentifier(mappedHost, inc.Attributes.ExternalID)
			if id.IsZero() || seen[id] {
				continue
			}
			seen[id] = true
			r.Sources = append(r.Sources, id)
		case "categories":
			if tag := strings.ToLower(strings.TrimSpace(inc.Attributes.Title)); tag != "" {
				r.Tags = append(r.Tags, tag)
			}
		}
	}
	return r
}

func mapSubtype(subtype string) domain.AnimeType {
	switch strings.ToLower(subtype) {
	case "tv":
		return domain.AnimeTypeTV
	case "movie":
		return domain.AnimeTypeMovie
	case "ova":
		return domain.AnimeTypeOVA
	case "ona":
		return domain.AnimeTypeONA
	case "special":
		return domain.AnimeTypeSpecial
	default:
		return domain.AnimeTypeUnknown
	}
}

func mapStatus(status string) domain.AnimeStatus {
	switch status {
	case "finished":
		return domain.AnimeStatusFinished
	case "current":
		return domain.AnimeStatusOngoing
	case "upcoming", "unreleased", "tba":
		return domain.AnimeStatusUpcoming
	default:
		return domain.AnimeStatusUnknown
	}
}

// mapSeason derives the premiere season from the start date
func mapSeason(startDate string) domain.AnimeSeason {
	t, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return domain.AnimeSeason{}
	}
	var season string
	switch t.Month() {
	case time.December, time.January, time.February:
		season = "WINTER"
	case time.March, time.April, time.May:
		season = "SPRING"
	case time.June, time.July, time.August:
		season = "SUMMER"
	default:
		season = "FALL"
	}
	return domain.AnimeSeason{Season: season, Year: t.Year()}
}

func synonyms(a Attributes) []string {
	seen := map[string]bool{a.CanonicalTitle: true}
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, key := range []string{"en", "en_jp", "ja_jp"} {
		add(a.Titles[key])
	}
	for _, s := range a.AbbreviatedTitles {
		add(s)
	}
	return out
}
