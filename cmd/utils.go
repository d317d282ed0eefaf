package cmd

import (
	"github.com/rubiojr/hostsearch/pkg/client"
	"github.com/rubiojr/hostsearch/pkg/config"
)

// searchEndpoint is the proxy route the frontends call.
const searchEndpoint = "/api/fetchSearchResults"

// newProxyClient returns a client for the backend configured in cfg.
func newProxyClient(cfg *config.Config) *client.Client {
	return client.NewClient(cfg.ProxyURL() + searchEndpoint)
}

// searchOptions returns the per-request search knobs from the [client] section.
func searchOptions(cfg *config.Config) client.SearchOptions {
	return client.SearchOptions{
		PerPage:      cfg.Client.PerPage,
		VirtualHosts: cfg.Client.VirtualHosts,
		Sort:         cfg.Client.Sort,
	}
}
