// Package providers discovers OPTIMADE databases from a providers
// index. The index is itself an OPTIMADE endpoint whose /v1/links
// resource lists child databases with their base URLs.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultIndexURL is the official OPTIMADE providers index.
const DefaultIndexURL = "https://providers.optimade.org"

// DefaultTimeout bounds a single index fetch.
const DefaultTimeout = 15 * time.Second

// Provider is a single queryable database from the index.
type Provider struct {
	ID          string
	Name        string
	Description string
	BaseURL     string
}

// linksBody mirrors the wire shape of a /v1/links response.
type linksBody struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			BaseURL     any    `json:"base_url"`
			LinkType    string `json:"link_type"`
		} `json:"attributes"`
	} `json:"data"`
}

// Config holds the index client configuration.
type Config struct {
	// IndexURL is the providers index base URL (default: DefaultIndexURL).
	IndexURL string

	// UserAgent is sent with index requests.
	UserAgent string

	// Timeout bounds a single fetch (default: DefaultTimeout).
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		IndexURL:  DefaultIndexURL,
		UserAgent: "optimade-client/0.1.0",
		Timeout:   DefaultTimeout,
	}
}

// Client fetches provider listings from an index.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates an index client.
func New(cfg Config) *Client {
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.With().Str("component", "providers-index").Logger(),
	}
}

// List fetches the index and returns the queryable databases: child
// links with a usable base URL. Entries without a base URL (provider
// stubs, aggregators) are skipped.
func (c *Client) List(ctx context.Context) ([]Provider, error) {
	endpoint := strings.TrimRight(c.config.IndexURL, "/") + "/v1/links"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building index request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching providers index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("providers index returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading index response: %w", err)
	}

	var parsed linksBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding index response: %w", err)
	}

	providers := make([]Provider, 0, len(parsed.Data))
	for _, entry := range parsed.Data {
		if entry.Attributes.LinkType != "" && entry.Attributes.LinkType != "child" {
			continue
		}
		baseURL := baseURLString(entry.Attributes.BaseURL)
		if baseURL == "" {
			c.logger.Debug().
				Str("provider", entry.ID).
				Msg("Skipping provider without base URL")
			continue
		}
		providers = append(providers, Provider{
			ID:          entry.ID,
			Name:        entry.Attributes.Name,
			Description: entry.Attributes.Description,
			BaseURL:     baseURL,
		})
	}

	c.logger.Info().
		Int("providers", len(providers)).
		Str("index", c.config.IndexURL).
		Msg("Fetched providers index")

	return providers, nil
}

// baseURLString extracts a base URL which indexes serve either as a
// plain string or as a JSON API links object with an href member.
func baseURLString(v any) string {
	switch u := v.(type) {
	case string:
		return u
	case map[string]any:
		if href, ok := u["href"].(string); ok {
			return href
		}
	}
	return ""
}

// SetHTTPClient replaces the underlying HTTP client (for tests).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
