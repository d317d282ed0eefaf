package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rubiojr/hostsearch/pkg/censys"
	"github.com/rubiojr/hostsearch/pkg/hosts"
)

type mockUpstream struct {
	requests []censys.SearchRequest
	resp     *censys.HostsResponse
	err      error
}

func (m *mockUpstream) Search(ctx context.Context, req censys.SearchRequest) (*censys.HostsResponse, error) {
	m.requests = append(m.requests, req)
	return m.resp, m.err
}

func samplePage() *censys.HostsResponse {
	return &censys.HostsResponse{
		Code:   200,
		Status: "OK",
		Result: censys.SearchResult{
			Total: 42,
			Hits: []censys.Hit{
				{IP: "1.1.1.1", Services: []censys.Service{
					{Port: 80, ServiceName: "HTTP", TransportProtocol: "TCP"},
					{Port: 443, ServiceName: "HTTP", TransportProtocol: "TCP"},
				}},
				{IP: "2.2.2.2"},
			},
			Links: censys.Links{Next: "next-token"},
		},
	}
}

func setupTestAPIServer(t *testing.T, upstream Upstream) *http.ServeMux {
	t.Helper()
	server := NewServer(upstream)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	return mux
}

func TestAPIFetchSearchResults(t *testing.T) {
	upstream := &mockUpstream{resp: samplePage()}
	mux := setupTestAPIServer(t, upstream)

	req := httptest.NewRequest("GET", "/api/fetchSearchResults?q=services.port%3A+80", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var body hosts.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Total != 42 || body.NextPageToken != "next-token" || len(body.Results) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Results[0].Protocols) != 2 || body.Results[0].Protocols[1].Port != 443 {
		t.Errorf("unexpected protocols: %+v", body.Results[0].Protocols)
	}

	if len(upstream.requests) != 1 {
		t.Fatalf("expected one upstream request, got %d", len(upstream.requests))
	}
	got := upstream.requests[0]
	want := censys.SearchRequest{Query: "services.port: 80", PerPage: 25, VirtualHosts: "EXCLUDE", Sort: "RELEVANCE"}
	if got != want {
		t.Errorf("expected upstream request %+v, got %+v", want, got)
	}
}

func TestAPIFetchSearchResultsForwardsParams(t *testing.T) {
	upstream := &mockUpstream{resp: samplePage()}
	mux := setupTestAPIServer(t, upstream)

	req := httptest.NewRequest("GET", "/api/fetchSearchResults?q=x&per_page=50&virtual_hosts=INCLUDE&sort=ASCENDING&cursor=abc", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	want := censys.SearchRequest{Query: "x", PerPage: 50, VirtualHosts: "INCLUDE", Sort: "ASCENDING", Cursor: "abc"}
	if upstream.requests[0] != want {
		t.Errorf("expected %+v, got %+v", want, upstream.requests[0])
	}
}

func TestAPIFetchSearchResultsMissingQueryForwarded(t *testing.T) {
	upstream := &mockUpstream{resp: samplePage()}
	mux := setupTestAPIServer(t, upstream)

	req := httptest.NewRequest("GET", "/api/fetchSearchResults", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if upstream.requests[0].Query != "" {
		t.Errorf("expected empty query to be forwarded, got %q", upstream.requests[0].Query)
	}
}

func TestAPIUpstreamFailure(t *testing.T) {
	upstream := &mockUpstream{err: &censys.StatusError{StatusCode: 404, StatusText: "Not Found"}}
	mux := setupTestAPIServer(t, upstream)

	req := httptest.NewRequest("GET", "/api/fetchSearchResults?q=x", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != "Failed to fetch data" {
		t.Errorf("unexpected message: %q", body.Message)
	}
	if body.Error != "Error fetching search results: Not Found" {
		t.Errorf("unexpected error: %q", body.Error)
	}
}

func TestAPIInvalidPerPage(t *testing.T) {
	upstream := &mockUpstream{resp: samplePage()}
	mux := setupTestAPIServer(t, upstream)

	req := httptest.NewRequest("GET", "/api/fetchSearchResults?q=x&per_page=lots", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if len(upstream.requests) != 0 {
		t.Errorf("upstream should not be called for an invalid per_page")
	}
	if !strings.Contains(w.Body.String(), "per_page") {
		t.Errorf("expected error to mention per_page, got %s", w.Body.String())
	}
}

func TestAPIEndToEndWithCensysClient(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth")
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstreamSrv.Close()

	mux := setupTestAPIServer(t, censys.NewClient(upstreamSrv.URL, "id", "secret"))

	req := httptest.NewRequest("GET", "/api/fetchSearchResults?q=x", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Not Found") {
		t.Errorf("expected upstream status text in body, got %s", w.Body.String())
	}
}

func TestAPIHealth(t *testing.T) {
	mux := setupTestAPIServer(t, censys.NewClient("", "id", "secret"))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if health.Status != "ok" || !health.Upstream {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestAPIMethodNotAllowed(t *testing.T) {
	mux := setupTestAPIServer(t, &mockUpstream{resp: samplePage()})

	testCases := []struct {
		method   string
		endpoint string
	}{
		{"POST", "/api/fetchSearchResults"},
		{"PUT", "/api/fetchSearchResults"},
		{"DELETE", "/api/fetchSearchResults"},
		{"POST", "/health"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+"_"+tc.endpoint, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.endpoint, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405 for %s %s, got %d", tc.method, tc.endpoint, w.Code)
			}
		})
	}
}

func TestCorsMiddlewarePreflight(t *testing.T) {
	handler := CorsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the handler")
	}))

	req := httptest.NewRequest("OPTIONS", "/api/fetchSearchResults", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen == "" || seen == "-" {
		t.Fatalf("expected a request id in context, got %q", seen)
	}
	if w.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected X-Request-ID header %q, got %q", seen, w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "given")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "given" {
		t.Errorf("expected incoming request id to be kept, got %q", seen)
	}

	if RequestID(context.Background()) != "-" {
		t.Error("expected - outside of the middleware")
	}
}

func TestCompress(t *testing.T) {
	payload := strings.Repeat(`{"ip":"1.1.1.1","protocols":[]}`, 200)
	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	}))

	req := httptest.NewRequest("GET", "/api/fetchSearchResults", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", w.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}
	if string(out) != payload {
		t.Error("decompressed body does not match")
	}
}

func TestParseSearchParamsDefaults(t *testing.T) {
	req, err := ParseSearchParams(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PerPage != 25 || req.VirtualHosts != "EXCLUDE" || req.Sort != "RELEVANCE" || req.Cursor != "" {
		t.Errorf("unexpected defaults: %+v", req)
	}

	_, err = ParseSearchParams(map[string][]string{"per_page": {"x"}})
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("expected wrapped *strconv.NumError, got %v", err)
	}
}
