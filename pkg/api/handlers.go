package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rubiojr/hostsearch/pkg/censys"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/version"
)

// ParseSearchParams maps the proxy's query parameters onto an upstream
// request, applying defaults for missing values. q is forwarded as-is,
// including when it is empty.
func ParseSearchParams(values url.Values) (censys.SearchRequest, error) {
	req := censys.SearchRequest{
		Query:        values.Get("q"),
		PerPage:      hosts.DefaultPerPage,
		VirtualHosts: hosts.DefaultVirtualHosts,
		Sort:         hosts.DefaultSort,
		Cursor:       values.Get("cursor"),
	}

	if raw := values.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid per_page %q: %w", raw, err)
		}
		req.PerPage = perPage
	}
	if v := values.Get("virtual_hosts"); v != "" {
		req.VirtualHosts = v
	}
	if v := values.Get("sort"); v != "" {
		req.Sort = v
	}

	return req, nil
}

func (s *Server) HandleFetchSearchResults(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("req", RequestID(r.Context()))

	params, err := ParseSearchParams(r.URL.Query())
	if err != nil {
		logger.Errorf("fetching data: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch data", err)
		return
	}

	resp, err := s.upstream.Search(r.Context(), params)
	if err != nil {
		logger.Errorf("fetching data: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch data", err)
		return
	}

	body := resp.Reshape()
	logger.Debugf("q=%q returned %d of %d hosts, more=%t", params.Query, len(body.Results), body.Total, body.HasMore())

	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}
	if c, ok := s.upstream.(interface{ HasCredentials() bool }); ok {
		health.Upstream = c.HasCredentials()
	}

	s.writeJSON(w, http.StatusOK, health)
}
