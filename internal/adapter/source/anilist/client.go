package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/kanshi/internal/domain"
)

const (
	// Host is the provider host of AniList identifiers
	Host = "anilist.co"

	DefaultBaseURL = "https://graphql.anilist.co"
	defaultTimeout = 30 * time.Second
	userAgent      = "Kanshi/1.0"
)

const mediaQuery = `query ($id: Int) {
  Media(id: $id, type: ANIME) {
    id
    idMal
    title { romaji english native }
    format
    status
    episodes
    duration
    season
    seasonYear
    coverImage { large medium }
    synonyms
    genres
    tags { name }
  }
}`

// Client loads anime from the AniList GraphQL API.
// Implements domain.Loader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new AniList API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Hostname() string { return Host }

// LoadAnime fetches one anime by its AniList id.
// Unknown ids yield domain.ErrDeadEntry.
func (c *Client) LoadAnime(ctx context.Context, id domain.Identifier) (*domain.AnimeRecord, error) {
	if id.Host() != Host {
		return nil, fmt.Errorf("anilist: cannot load %s", id)
	}
	mediaID, err := strconv.Atoi(id.LocalID())
	if err != nil {
		// Not an id AniList could ever serve.
		return nil, fmt.Errorf("anilist id %q: %w", id.LocalID(), domain.ErrDeadEntry)
	}

	resp, err := c.doQuery(ctx, GraphQLRequest{
		Query:     mediaQuery,
		Variables: map[string]interface{}{"id": mediaID},
	})
	if err != nil {
		return nil, err
	}
	if resp.Data.Media == nil {
		return nil, fmt.Errorf("anilist media %d: %w", mediaID, domain.ErrDeadEntry)
	}

	record := MapMedia(resp.Data.Media, Host)
	c.logger.Debug("loaded anilist media", "id", mediaID, "title", record.Title, "aliases", len(record.Sources))
	return record, nil
}

// doQuery performs a GraphQL POST and decodes the media response
func (c *Client) doQuery(ctx context.Context, gql GraphQLRequest) (*MediaResponse, error) {
	payload, err := json.Marshal(gql)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("anilist request", "url", c.baseURL, "variables", gql.Variables)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("anilist request failed", "error", err)
		return nil, fmt.Errorf("anilist request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp MediaResponse
	parseErr := json.Unmarshal(body, &resp)

	if httpResp.StatusCode == http.StatusNotFound || notFound(resp.Errors) {
		return nil, fmt.Errorf("anilist: %w", domain.ErrDeadEntry)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error("anilist request error", "status", httpResp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", httpResp.StatusCode)
	}

	if parseErr != nil {
		c.logger.Error("JSON parse error", "error", parseErr, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("anilist: %s", resp.Errors[0].Message)
	}
	return &resp, nil
}

func notFound(errs []GraphQLError) bool {
	for _, e := range errs {
		if e.Status == http.StatusNotFound {
			return true
		}
	}
	return false
}
