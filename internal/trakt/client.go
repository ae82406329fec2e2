package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

const (
	// DefaultBaseURL is the public API endpoint
	DefaultBaseURL = "https://api.trakt.tv"

	defaultTimeout = 30 * time.Second
	apiVersion     = "2"
	userAgent      = "Shelf/1.0"
)

// Client fetches show lists and metadata from the Trakt API
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(baseURL, clientID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET and decodes the JSON body into dest
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, dest any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("trakt request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("trakt request failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("trakt request error", "status", resp.StatusCode, "path", path, "bodyLen", len(body))
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Path: path}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// PopularShows returns one page of the most popular shows
func (c *Client) PopularShows(ctx context.Context, page, limit int) ([]Show, error) {
	var shows []Show
	if err := c.doRequest(ctx, "/shows/popular", pageQuery(page, limit), &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

// TrendingShows returns one page of shows being watched right now
func (c *Client) TrendingShows(ctx context.Context, page, limit int) ([]TrendingShow, error) {
	var shows []TrendingShow
	if err := c.doRequest(ctx, "/shows/trending", pageQuery(page, limit), &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

// AnticipatedShows returns one page of the most anticipated upcoming shows
func (c *Client) AnticipatedShows(ctx context.Context, page, limit int) ([]AnticipatedShow, error) {
	var shows []AnticipatedShow
	if err := c.doRequest(ctx, "/shows/anticipated", pageQuery(page, limit), &shows); err != nil {
		return nil, err
	}
	return shows, nil
}

// Countries returns the country list for a media category
func (c *Client) Countries(ctx context.Context, category domain.MediaCategory) ([]Country, error) {
	var countries []Country
	path := "/countries/" + url.PathEscape(string(category))
	if err := c.doRequest(ctx, path, nil, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}
