package kitsu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/kanshi/internal/domain"
)

const (
	// Host is the provider host of Kitsu identifiers
	Host = "kitsu.app"

	DefaultBaseURL = "https://kitsu.app/api/edge"
	defaultTimeout = 30 * time.Second
	userAgent      = "Kanshi/1.0"
)

// Client loads anime from the Kitsu JSON:API.
// Implements domain.Loader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Kitsu API client
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

// LoadAnime fetches the anime with its mappings and categories.
// A 404 means the anime does not exist and yields domain.ErrDeadEntry.
func (c *Client) LoadAnime(ctx context.Context, id domain.Identifier) (*domain.AnimeRecord, error) {
	if id.Host() != Host {
		return nil, fmt.Errorf("kitsu: cannot load %s", id)
	}
	localID := id.LocalID()

	query := url.Values{}
	query.Set("include", "mappings,categories")

	body, err := c.doRequest(ctx, "/anime/"+url.PathEscape(localID), query)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if doc.Data.ID == "" {
		return nil, fmt.Errorf("kitsu anime %s: %w", localID, domain.ErrDeadEntry)
	}

	record := MapAnime(&doc, Host)
	c.logger.Debug("loaded kitsu anime", "id", localID, "title", record.Title, "aliases", len(record.Sources))
	return record, nil
}

// doRequest performs a GET request against the API
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("kitsu request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("kitsu request failed", "error", err)
		return nil, fmt.Errorf("kitsu request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("kitsu %s: %w", path, domain.ErrDeadEntry)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("kitsu request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
