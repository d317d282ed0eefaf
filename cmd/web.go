package cmd

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rubiojr/hostsearch/cmd/web/components"
	"github.com/rubiojr/hostsearch/cmd/web/components/types"
	"github.com/rubiojr/hostsearch/pkg/client"
	"github.com/rubiojr/hostsearch/pkg/log"
	"github.com/rubiojr/hostsearch/pkg/search"
	"github.com/rubiojr/hostsearch/pkg/version"
)

//go:embed web/static/*
var staticFS embed.FS

const pageTitle = "Host Search"

// WebServer serves the search page and one search session per websocket.
type WebServer struct {
	fetcher     search.Fetcher
	opts        client.SearchOptions
	credentials func() bool
	upgrader    websocket.Upgrader
	logger      *log.Logger
}

// NewWebServer returns a web UI whose sessions fetch through fetcher.
// credentials reports whether the backend can reach the upstream API; nil
// means it can.
func NewWebServer(fetcher search.Fetcher, opts client.SearchOptions, credentials func() bool) *WebServer {
	if credentials == nil {
		credentials = func() bool { return true }
	}
	return &WebServer{
		fetcher:     fetcher,
		opts:        opts,
		credentials: credentials,
		logger:      log.ForService("web"),
	}
}

// RegisterRoutes adds the page and static routes to mux. The websocket
// endpoint is returned separately so it can bypass compression.
func (s *WebServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /static/", s.handleStatic)
}

// WebSocketHandler serves GET /ws.
func (s *WebServer) WebSocketHandler() http.Handler {
	return http.HandlerFunc(s.handleWebSocket)
}

// handleHome renders the page. A ?q= query prefills the search bar and is
// run as soon as the websocket connects.
func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	data := types.PageData{
		Title:       pageTitle,
		Query:       r.URL.Query().Get("q"),
		Version:     version.Version,
		Credentials: s.credentials(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Index(data, search.InitialState()).Render(r.Context(), w); err != nil {
		s.logger.Errorf("rendering page: %v", err)
	}
}

// handleStatic serves static assets from embedded files
func (s *WebServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Remove /static/ prefix and add web/static/ prefix for embedded filesystem
	filePath := "web/static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	}

	// Set cache headers for static assets
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		s.logger.Warnf("writing static content: %v", err)
	}
}

// handleWebSocket owns one search session for the lifetime of the
// connection. Reads happen here, writes only in writeLoop.
func (s *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := search.NewSession(s.fetcher, search.WithSearchOptions(s.opts))
	logger := s.logger.With("session", sess.ID()[:8])
	logger.Debugf("websocket connected from %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	updates, unsubscribe := sess.Subscribe()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, conn, sess, updates)
	}()

	for {
		var msg types.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("websocket read: %v", err)
			}
			break
		}

		switch msg.Type {
		case types.MessageSearch:
			go s.run(logger, func() error { return sess.Search(ctx, msg.Query) })
		case types.MessageMore:
			go s.run(logger, func() error { return sess.LoadMore(ctx) })
		default:
			logger.Warnf("unknown websocket message type %q", msg.Type)
		}
	}

	cancel()
	unsubscribe()
	<-writerDone
	sess.Close()
	logger.Debugf("websocket closed")
}

func (s *WebServer) run(logger *log.Logger, fn func() error) {
	err := fn()
	switch {
	case err == nil, errors.Is(err, search.ErrStale), errors.Is(err, context.Canceled):
	default:
		// Already shown to the user through the session state.
		logger.Debugf("fetch failed: %v", err)
	}
}

// writeLoop renders the current state, then every update until the
// subscription is closed or a write fails.
func (s *WebServer) writeLoop(ctx context.Context, conn *websocket.Conn, sess *search.Session, updates <-chan search.State) {
	if err := s.writeState(ctx, conn, sess.ID(), sess.State()); err != nil {
		return
	}
	for st := range updates {
		if err := s.writeState(ctx, conn, sess.ID(), st); err != nil {
			s.logger.Debugf("websocket write: %v", err)
			return
		}
	}
}

func (s *WebServer) writeState(ctx context.Context, conn *websocket.Conn, id string, st search.State) error {
	var html strings.Builder
	if err := components.Content(st).Render(ctx, &html); err != nil {
		return err
	}
	return conn.WriteJSON(types.RenderMessage{
		Type:    types.MessageRender,
		Session: id,
		Loading: st.IsLoading,
		HTML:    html.String(),
	})
}
