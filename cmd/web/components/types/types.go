package types

// PageData represents data passed to the page template
type PageData struct {
	Title   string
	Query   string
	Version string // Application version (for footer display)
	// Credentials is false when the backend has no Censys API credentials.
	Credentials bool
}

// RenderMessage is sent over the websocket whenever the session state changes.
type RenderMessage struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Loading bool   `json:"loading"`
	HTML    string `json:"html"`
}

// ClientMessage is sent by the page: {"type":"search","query":"..."} or {"type":"more"}.
type ClientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

const (
	MessageRender = "render"
	MessageSearch = "search"
	MessageMore   = "more"
)
