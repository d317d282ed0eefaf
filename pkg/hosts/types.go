// Package hosts holds the host records exchanged between the proxy and its
// frontends.
package hosts

// Search defaults shared by the proxy and its clients.
const (
	DefaultPerPage      = 25
	DefaultVirtualHosts = "EXCLUDE"
	DefaultSort         = "RELEVANCE"
)

// Protocol is a network service discovered on a host.
type Protocol struct {
	Transport string `json:"transport"`
	Name      string `json:"name"`
	Port      int    `json:"port"`
}

// Result is one host returned by a search.
type Result struct {
	IP        string     `json:"ip"`
	Protocols []Protocol `json:"protocols"`
}

// SearchResponse is the body returned by GET /api/fetchSearchResults.
// NextPageToken is empty when there are no more pages.
type SearchResponse struct {
	Results       []Result `json:"results"`
	NextPageToken string   `json:"nextPageToken"`
	Total         int      `json:"total"`
}

// HasMore reports whether another page can be fetched with NextPageToken.
func (r SearchResponse) HasMore() bool {
	return r.NextPageToken != ""
}

// ValidPort reports whether port fits in the TCP/UDP port range.
func ValidPort(port int) bool {
	return port >= 0 && port <= 65535
}
