package kitsu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
)

const beckDocument = `{
  "data": {
    "id": "38",
    "type": "anime",
    "attributes": {
      "canonicalTitle": "Beck",
      "titles": {"en": "Beck: Mongolian Chop Squad", "en_jp": "Beck", "ja_jp": "ベック"},
      "abbreviatedTitles": ["BECK"],
      "subtype": "TV",
      "status": "finished",
      "episodeCount": 26,
      "episodeLength": 24,
      "startDate": "2004-10-07",
      "posterImage": {"small": "https://media.kitsu.app/38/small.jpg", "large": "https://media.kitsu.app/38/large.jpg"}
    }
  },
  "included": [
    {"id": "1", "type": "mappings", "attributes": {"externalSite": "myanimelist/anime", "externalId": "57"}},
    {"id": "2", "type": "mappings", "attributes": {"externalSite": "anidb", "externalId": "1815"}},
    {"id": "3", "type": "mappings", "attributes": {"externalSite": "thetvdb/series", "externalId": "80000"}},
    {"id": "4", "type": "categories", "attributes": {"title": "Music"}},
    {"id": "5", "type": "categories", "attributes": {"title": "Comedy"}}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.api+json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/anime/38":
			assert.Equal(t, "mappings,categories", r.URL.Query().Get("include"))
			w.Write([]byte(beckDocument))
		case "/anime/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"title":"Record not found","status":"404"}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoadAnime(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	r, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "38"))
	require.NoError(t, err)

	assert.Equal(t, "Beck", r.Title)
	assert.Equal(t, []domain.Identifier{
		domain.NewIdentifier(Host, "38"),
		domain.NewIdentifier("myanimelist.net", "57"),
		domain.NewIdentifier("anidb.net", "1815"),
	}, r.Sources)
	assert.Equal(t, domain.AnimeTypeTV, r.Type)
	assert.Equal(t, domain.AnimeStatusFinished, r.Status)
	assert.Equal(t, 26, r.Episodes)
	assert.Equal(t, 24*time.Minute, r.Duration)
	assert.Equal(t, domain.AnimeSeason{Season: "FALL", Year: 2004}, r.Season)
	assert.Equal(t, []string{"music", "comedy"}, r.Tags)
	assert.Equal(t, []string{"Beck: Mongolian Chop Squad", "ベック", "BECK"}, r.Synonyms)
	assert.Equal(t, "https://media.kitsu.app/38/small.jpg", r.Thumbnail)
}

func TestClient_LoadAnimeNotFoundIsDead(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	_, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "999999"))
	assert.ErrorIs(t, err, domain.ErrDeadEntry)
}

func TestClient_LoadAnimeServerErrorIsNotDead(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	_, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "500"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDeadEntry)
}

func TestClient_RejectsForeignIdentifier(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second, adapter.NullLogger())

	_, err := c.LoadAnime(context.Background(), domain.NewIdentifier("anilist.co", "1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDeadEntry)
	assert.Equal(t, Host, c.Hostname())
}

func TestMapSeason(t *testing.T) {
	assert.Equal(t, domain.AnimeSeason{Season: "WINTER", Year: 2010}, mapSeason("2010-01-05"))
	assert.Equal(t, domain.AnimeSeason{Season: "SUMMER", Year: 1999}, mapSeason("1999-07-01"))
	assert.Equal(t, domain.AnimeSeason{}, mapSeason(""))
}
