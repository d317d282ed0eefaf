package search

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/rubiojr/hostsearch/pkg/client"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/log"
	"github.com/rubiojr/hostsearch/pkg/realtime"
)

// ErrStale is returned by Search and LoadMore when their response arrived
// after a newer search had started and was discarded.
var ErrStale = errors.New("search: response superseded by a newer search")

// Fetcher retrieves result pages. *client.Client implements it.
type Fetcher interface {
	FetchSearchResults(ctx context.Context, query string, opts client.SearchOptions) (*hosts.SearchResponse, error)
	FetchNextPage(ctx context.Context, query, pageToken string, opts client.SearchOptions) (*hosts.SearchResponse, error)
}

// Session is one frontend's search state plus the queue its transitions go
// through. It is safe for concurrent use.
type Session struct {
	id            string
	fetcher       Fetcher
	opts          client.SearchOptions
	lastWriteWins bool

	mu         sync.Mutex
	state      State
	generation uint64

	hub    *realtime.Hub[State]
	logger *log.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSearchOptions sets per_page, virtual_hosts and sort for every fetch.
func WithSearchOptions(opts client.SearchOptions) SessionOption {
	return func(s *Session) {
		s.opts = opts
	}
}

// WithLastWriteWins disables the stale-response check: every completion is
// applied in the order it arrives.
func WithLastWriteWins() SessionOption {
	return func(s *Session) {
		s.lastWriteWins = true
	}
}

// NewSession returns a session in the initial state.
func NewSession(fetcher Fetcher, opts ...SessionOption) *Session {
	s := &Session{
		id:      uuid.NewString(),
		fetcher: fetcher,
		opts:    client.DefaultSearchOptions(),
		state:   InitialState(),
		hub:     realtime.NewHub[State](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.ForService("session").With("id", s.id[:8])
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the current state. Callers must not modify
// the Results slice.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving the state after every dispatch.
// Slow readers only see the latest state. cancel closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) {
	id, ch := s.hub.Register()
	return ch, func() { s.hub.Unregister(id) }
}

// Close closes every subscription.
func (s *Session) Close() {
	s.hub.Close()
}

// Dispatch applies a and returns the new state.
func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(a)
}

func (s *Session) dispatchLocked(actions ...Action) State {
	for _, a := range actions {
		s.logger.Debugf("dispatch %s", a.Kind())
		s.state = Reduce(s.state, a)
	}
	s.hub.Publish(s.state)
	return s.state
}

func (s *Session) stale(gen uint64) bool {
	return !s.lastWriteWins && gen != s.generation
}

// Search starts a new search for query, replacing the current results when
// it completes. On failure the results and pagination are cleared and the
// error message is kept in State.Error; the error is also returned.
func (s *Session) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	opts := s.opts
	s.dispatchLocked(SetLoading{Loading: true}, SetQuery{Query: query}, SetError{})
	s.mu.Unlock()

	resp, err := s.fetcher.FetchSearchResults(ctx, query, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(gen) {
		s.logger.Debugf("discarding stale search response for %q", query)
		return ErrStale
	}
	if err != nil {
		s.logger.Warnf("search %q failed: %v", query, err)
		s.dispatchLocked(ClearResults{}, SetResults{}, SetError{Message: err.Error()})
		return err
	}

	s.dispatchLocked(SetResults{
		Results:   resp.Results,
		Total:     resp.Total,
		PageToken: resp.NextPageToken,
		HasMore:   resp.HasMore(),
	})
	return nil
}

// LoadMore fetches the next page and appends it. It does nothing when there
// is no next page, a fetch is already running, or an error is displayed.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	st := s.state
	if !st.CanLoadMore() || st.IsLoading {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	opts := s.opts
	s.dispatchLocked(SetLoading{Loading: true})
	s.mu.Unlock()

	resp, err := s.fetcher.FetchNextPage(ctx, st.Query, st.PageToken, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(gen) {
		s.logger.Debugf("discarding stale page for %q", st.Query)
		return ErrStale
	}
	if err != nil {
		s.logger.Warnf("loading more results for %q failed: %v", st.Query, err)
		s.dispatchLocked(SetLoading{Loading: false})
		return err
	}

	s.dispatchLocked(AppendResults{
		Results:   resp.Results,
		PageToken: resp.NextPageToken,
		HasMore:   resp.HasMore(),
	})
	return nil
}
