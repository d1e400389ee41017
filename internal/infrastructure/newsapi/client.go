// Package newsapi implements a feed provider backed by a newsdata-style
// JSON HTTP API with server-side recency filtering.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
)

const pubDateLayout = "2006-01-02 15:04:05"

// Client fetches articles from the JSON news API.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ feed.Provider = (*Client)(nil)

// NewClient wires the API endpoint; a nil http.Client gets a 20s timeout.
func NewClient(name, baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

// Name identifies the provider inside the registry.
func (c *Client) Name() string {
	return c.name
}

type apiResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		Link        string `json:"link"`
		ImageURL    string `json:"image_url"`
		PubDate     string `json:"pubDate"`
		SourceID    string `json:"source_id"`
	} `json:"results"`
}

// Fetch pulls up to req.Max articles published after req.Since.
func (c *Client) Fetch(ctx context.Context, req feed.Request) ([]domain.Article, error) {
	endpoint, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "NewsPulse/1.0")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("feed api error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	articles := make([]domain.Article, 0, len(decoded.Results))
	for _, item := range decoded.Results {
		if item.Title == "" || item.Link == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Source:      c.name,
			Title:       item.Title,
			Description: firstNonEmpty(item.Description, item.Content),
			Publisher:   item.SourceID,
			URL:         item.Link,
			ImageURL:    item.ImageURL,
			PublishedAt: parsePubDate(item.PubDate),
		})
		if req.Max > 0 && len(articles) >= req.Max {
			break
		}
	}

	return articles, nil
}

func (c *Client) buildURL(req feed.Request) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed base url %s: %w", c.baseURL, err)
	}

	query := parsed.Query()
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}
	if req.Query != "" {
		query.Set("q", req.Query)
	}
	if req.Language != "" {
		query.Set("language", req.Language)
	}
	if req.Country != "" {
		query.Set("country", req.Country)
	}
	if req.Max > 0 {
		query.Set("size", strconv.Itoa(req.Max))
	}
	if !req.Since.IsZero() {
		query.Set("from_datetime", req.Since.UTC().Format(pubDateLayout))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().UTC()
	}
	if parsed, err := time.Parse(pubDateLayout, value); err == nil {
		return parsed.UTC()
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC()
	}
	return time.Now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
