package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
)

const beckResponse = `{
  "data": {
    "Media": {
      "id": 57,
      "idMal": 57,
      "title": {"romaji": "BECK", "english": "Beck: Mongolian Chop Squad", "native": "ベック"},
      "format": "TV",
      "status": "FINISHED",
      "episodes": 26,
      "duration": 24,
      "season": "FALL",
      "seasonYear": 2004,
      "coverImage": {"large": "https://img.anili.st/57-large.jpg", "medium": "https://img.anili.st/57.jpg"},
      "synonyms": ["Beck"],
      "genres": ["Comedy", "Music"],
      "tags": [{"name": "Band"}, {"name": "Music"}]
    }
  }
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req GraphQLRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Contains(t, req.Query, "Media(id: $id, type: ANIME)")

		switch req.Variables["id"] {
		case float64(57):
			w.Write([]byte(beckResponse))
		case float64(500):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"message":"Not Found.","status":404}],"data":{"Media":null}}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoadAnime(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	r, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "57"))
	require.NoError(t, err)

	assert.Equal(t, "BECK", r.Title)
	assert.Equal(t, []domain.Identifier{
		domain.NewIdentifier(Host, "57"),
		domain.NewIdentifier("myanimelist.net", "57"),
	}, r.Sources)
	assert.Equal(t, domain.AnimeTypeTV, r.Type)
	assert.Equal(t, domain.AnimeStatusFinished, r.Status)
	assert.Equal(t, domain.AnimeSeason{Season: "FALL", Year: 2004}, r.Season)
	assert.Equal(t, []string{"comedy", "music", "band"}, r.Tags)
	assert.Equal(t, []string{"Beck: Mongolian Chop Squad", "ベック", "Beck"}, r.Synonyms)
}

func TestClient_LoadAnimeNotFoundIsDead(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	_, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "1"))
	assert.ErrorIs(t, err, domain.ErrDeadEntry)

	_, err = c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "not-a-number"))
	assert.ErrorIs(t, err, domain.ErrDeadEntry)
}

func TestClient_LoadAnimeServerErrorIsNotDead(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, adapter.NullLogger())

	_, err := c.LoadAnime(context.Background(), domain.NewIdentifier(Host, "500"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDeadEntry)
}

func TestMapMedia_WithoutMalID(t *testing.T) {
	r := MapMedia(&Media{ID: 10, Title: MediaTitle{English: "Only English"}}, Host)
	assert.Equal(t, "Only English", r.Title)
	assert.Equal(t, []domain.Identifier{domain.NewIdentifier(Host, "10")}, r.Sources)
	assert.Equal(t, domain.AnimeTypeUnknown, r.Type)
}
