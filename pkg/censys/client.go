// Package censys is a minimal client for the Censys v2 hosts search API.
package censys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzhttp"

	"github.com/rubiojr/hostsearch/pkg/log"
)

// DefaultURL is the hosts search endpoint.
const DefaultURL = "https://search.censys.io/api/v2/hosts/search"

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return "Error fetching search results: " + e.StatusText
}

// Client posts search requests using HTTP Basic authentication.
// Credentials and URL may be replaced while requests are in flight.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	apiID      string
	apiSecret  string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default gzip-aware http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a client for baseURL. An empty baseURL means DefaultURL.
func NewClient(baseURL, apiID, apiSecret string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:   baseURL,
		apiID:     apiID,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
		logger: log.ForService("censys"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentials replaces the API ID and secret used for new requests.
func (c *Client) SetCredentials(apiID, apiSecret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiID = apiID
	c.apiSecret = apiSecret
}

// SetBaseURL replaces the endpoint used for new requests.
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

// HasCredentials reports whether both credentials are set.
func (c *Client) HasCredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiID != "" && c.apiSecret != ""
}

func (c *Client) snapshot() (baseURL, apiID, apiSecret string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.apiID, c.apiSecret
}

// Search posts req and decodes the response. Non-2xx responses return a
// *StatusError.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*HostsResponse, error) {
	baseURL, apiID, apiSecret := c.snapshot()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	httpReq.SetBasicAuth(apiID, apiSecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debugf("POST %s q=%q per_page=%d cursor=%q", baseURL, req.Query, req.PerPage, req.Cursor)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("requesting search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	var hostsResp HostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&hostsResp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return &hostsResp, nil
}

// statusText returns the reason phrase, e.g. "Not Found" for "404 Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if text == "" || text == resp.Status {
		if std := http.StatusText(resp.StatusCode); std != "" {
			return std
		}
	}
	return text
}
