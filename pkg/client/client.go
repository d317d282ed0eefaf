// Package client talks to the hostsearch proxy's /api/fetchSearchResults
// endpoint. It is what the web, terminal and CLI frontends use.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rubiojr/hostsearch/pkg/format"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/log"
)

// SearchOptions are the upstream search knobs forwarded by the proxy.
// Zero values fall back to the hosts package defaults.
type SearchOptions struct {
	PerPage      int
	VirtualHosts string
	Sort         string
}

// DefaultSearchOptions returns per_page=25, virtual_hosts=EXCLUDE, sort=RELEVANCE.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		PerPage:      hosts.DefaultPerPage,
		VirtualHosts: hosts.DefaultVirtualHosts,
		Sort:         hosts.DefaultSort,
	}
}

func (o SearchOptions) withDefaults() SearchOptions {
	d := DefaultSearchOptions()
	if o.PerPage > 0 {
		d.PerPage = o.PerPage
	}
	if o.VirtualHosts != "" {
		d.VirtualHosts = o.VirtualHosts
	}
	if o.Sort != "" {
		d.Sort = o.Sort
	}
	return d
}

// APIError is returned for non-2xx proxy responses. Message and Detail come
// from the proxy's {message, error} body.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// Client is a proxy client. It neither retries nor caches.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient returns a client for the proxy endpoint at baseURL, e.g.
// http://localhost:5001/api/fetchSearchResults.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     log.ForService("client"),
	}
}

// BaseURL returns the proxy endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchSearchResults fetches the first page for query.
func (c *Client) FetchSearchResults(ctx context.Context, query string, opts SearchOptions) (*hosts.SearchResponse, error) {
	return c.fetch(ctx, query, "", opts)
}

// FetchNextPage fetches the page identified by pageToken.
func (c *Client) FetchNextPage(ctx context.Context, query, pageToken string, opts SearchOptions) (*hosts.SearchResponse, error) {
	return c.fetch(ctx, query, pageToken, opts)
}

func (c *Client) fetch(ctx context.Context, query, cursor string, opts SearchOptions) (*hosts.SearchResponse, error) {
	opts = opts.withDefaults()

	params := []format.Param{
		{Key: "q", Value: query},
		{Key: "per_page", Value: opts.PerPage},
		{Key: "virtual_hosts", Value: opts.VirtualHosts},
		{Key: "sort", Value: opts.Sort},
	}
	if cursor != "" {
		params = append(params, format.Param{Key: "cursor", Value: cursor})
	}

	reqURL, err := format.BuildURL(c.baseURL, params...)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debugf("GET %s", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var out hosts.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return &out, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error
		return apiErr
	}

	apiErr.Message = strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
