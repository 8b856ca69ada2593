package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/flightlog/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second

	// Responses larger than this are not flight records.
	maxResponseBytes = 1 << 20
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends key in the X-API-Key header of every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// Client looks flights up on an HTTP provider that serves
// GET {base}/flights/{airline}{number}/{date} as a JSON Enrichment.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a Client for the provider at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the enrichment for in. Any non-200 answer is an error.
func (c *Client) Lookup(ctx context.Context, in domain.FlightInput) (domain.Enrichment, error) {
	endpoint := fmt.Sprintf("%s/flights/%s/%s",
		c.baseURL, url.PathEscape(in.Airline+in.Number), url.PathEscape(in.Date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("enrich.Client.Lookup: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("enrich.Client.Lookup: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Enrichment{}, fmt.Errorf("enrich.Client.Lookup: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Enrichment{}, fmt.Errorf("enrich.Client.Lookup: reading body: %w", err)
	}

	var e domain.Enrichment
	if err := json.Unmarshal(body, &e); err != nil {
		return domain.Enrichment{}, fmt.Errorf("enrich.Client.Lookup: parsing response: %w", err)
	}
	return e, nil
}
