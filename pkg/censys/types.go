package censys

import (
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/log"
)

// SearchRequest is the POST body of the hosts search endpoint.
type SearchRequest struct {
	Query        string `json:"q"`
	PerPage      int    `json:"per_page"`
	VirtualHosts string `json:"virtual_hosts"`
	Sort         string `json:"sort"`
	Cursor       string `json:"cursor,omitempty"`
}

// HostsResponse is the subset of the hosts search response we consume.
type HostsResponse struct {
	Code   int          `json:"code"`
	Status string       `json:"status"`
	Result SearchResult `json:"result"`
}

type SearchResult struct {
	Query string `json:"query"`
	Total int    `json:"total"`
	Hits  []Hit  `json:"hits"`
	Links Links  `json:"links"`
}

// Hit is one host in a result page.
type Hit struct {
	IP       string    `json:"ip"`
	Services []Service `json:"services"`
}

type Service struct {
	Port                int    `json:"port"`
	ServiceName         string `json:"service_name"`
	ExtendedServiceName string `json:"extended_service_name"`
	TransportProtocol   string `json:"transport_protocol"`
}

// Links carries the pagination cursors. Next is empty on the last page.
type Links struct {
	Prev string `json:"prev"`
	Next string `json:"next"`
}

// Reshape converts the upstream response into the proxy's response body.
// Slices are never nil so they encode as []. Services whose port falls
// outside 0-65535 are dropped.
func (r *HostsResponse) Reshape() hosts.SearchResponse {
	results := make([]hosts.Result, 0, len(r.Result.Hits))
	for _, hit := range r.Result.Hits {
		protocols := make([]hosts.Protocol, 0, len(hit.Services))
		for _, svc := range hit.Services {
			if !hosts.ValidPort(svc.Port) {
				log.ForService("censys").Warnf("skipping %s service on %s with invalid port %d", svc.ServiceName, hit.IP, svc.Port)
				continue
			}
			protocols = append(protocols, hosts.Protocol{
				Transport: svc.TransportProtocol,
				Name:      svc.ServiceName,
				Port:      svc.Port,
			})
		}
		results = append(results, hosts.Result{IP: hit.IP, Protocols: protocols})
	}

	return hosts.SearchResponse{
		Results:       results,
		NextPageToken: r.Result.Links.Next,
		Total:         r.Result.Total,
	}
}
