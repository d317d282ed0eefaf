package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rubiojr/hostsearch/pkg/api"
	"github.com/rubiojr/hostsearch/pkg/censys"
)

const pageBody = `{"results":[{"ip":"1.1.1.1","protocols":[{"transport":"TCP","name":"HTTP","port":80}]}],"nextPageToken":"tok","total":7}`

func TestFetchSearchResultsURL(t *testing.T) {
	var gotURI string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageBody))
	}))
	defer ts.Close()

	c := NewClient(ts.URL + "/api/fetchSearchResults")
	resp, err := c.FetchSearchResults(context.Background(), "test", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("FetchSearchResults returned error: %v", err)
	}

	want := "/api/fetchSearchResults?q=test&per_page=25&virtual_hosts=EXCLUDE&sort=RELEVANCE"
	if gotURI != want {
		t.Errorf("expected request %q, got %q", want, gotURI)
	}
	if resp.Total != 7 || resp.NextPageToken != "tok" || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if p := resp.Results[0].Protocols[0]; p.Port != 80 || p.Name != "HTTP" || p.Transport != "TCP" {
		t.Errorf("unexpected protocol: %+v", p)
	}
}

func TestFetchNextPageURL(t *testing.T) {
	var gotURI string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(pageBody))
	}))
	defer ts.Close()

	c := NewClient(ts.URL + "/api/fetchSearchResults")
	if _, err := c.FetchNextPage(context.Background(), "test", "nextPageToken", SearchOptions{}); err != nil {
		t.Fatalf("FetchNextPage returned error: %v", err)
	}

	want := "/api/fetchSearchResults?q=test&per_page=25&virtual_hosts=EXCLUDE&sort=RELEVANCE&cursor=nextPageToken"
	if gotURI != want {
		t.Errorf("expected request %q, got %q", want, gotURI)
	}
}

func TestFetchCustomOptions(t *testing.T) {
	var gotURI string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(pageBody))
	}))
	defer ts.Close()

	opts := SearchOptions{PerPage: 50, VirtualHosts: "INCLUDE", Sort: "DESCENDING"}
	if _, err := NewClient(ts.URL).FetchSearchResults(context.Background(), "a b", opts); err != nil {
		t.Fatalf("FetchSearchResults returned error: %v", err)
	}

	want := "/?q=a+b&per_page=50&virtual_hosts=INCLUDE&sort=DESCENDING"
	if gotURI != want {
		t.Errorf("expected request %q, got %q", want, gotURI)
	}
}

func TestFetchErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to fetch data","error":"Error fetching search results: Not Found"}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).FetchSearchResults(context.Background(), "test", SearchOptions{})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.StatusCode)
	}
	if err.Error() != "Failed to fetch data: Error fetching search results: Not Found" {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}

func TestFetchErrorWithoutJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).FetchNextPage(context.Background(), "test", "tok", SearchOptions{})
	if err == nil || err.Error() != "Bad Gateway" {
		t.Fatalf("expected Bad Gateway error, got %v", err)
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	if _, err := NewClient(url).FetchSearchResults(context.Background(), "test", SearchOptions{}); err == nil {
		t.Fatal("expected network error")
	}
}

// The upstream answers 404; the proxy turns it into a 500 envelope and the
// client error carries the upstream status text.
func TestUpstreamNotFoundThroughProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	mux := http.NewServeMux()
	api.NewServer(censys.NewClient(upstream.URL, "id", "secret")).RegisterRoutes(mux)
	proxy := httptest.NewServer(mux)
	defer proxy.Close()

	_, err := NewClient(proxy.URL+"/api/fetchSearchResults").FetchSearchResults(context.Background(), "test", SearchOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("expected upstream status text in error, got %q", err.Error())
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message == "" {
		t.Errorf("expected 500 with message, got %+v", apiErr)
	}
}
