package search

import (
	"fmt"

	"github.com/rubiojr/hostsearch/pkg/hosts"
)

// State is the search state of one frontend session.
// PageToken is empty when there is no next page.
type State struct {
	Results        []hosts.Result
	IsLoading      bool
	HasMoreResults bool
	PageToken      string
	Total          int
	Query          string
	Error          string
}

// InitialState returns the empty state a session starts with.
func InitialState() State {
	return State{Results: []hosts.Result{}}
}

// CanLoadMore reports whether a next page exists and no error is shown.
func (s State) CanLoadMore() bool {
	return s.HasMoreResults && s.PageToken != "" && s.Error == ""
}

// Action is a state transition. The set is closed: only the types in this
// package implement it.
type Action interface {
	Kind() string
	action()
}

type SetLoading struct {
	Loading bool
}

type SetQuery struct {
	Query string
}

// SetResults completes a new search.
type SetResults struct {
	Results   []hosts.Result
	Total     int
	PageToken string
	HasMore   bool
}

// AppendResults completes a pagination fetch.
type AppendResults struct {
	Results   []hosts.Result
	PageToken string
	HasMore   bool
}

// ClearResults follows a failed search.
type ClearResults struct{}

// SetError sets the message shown instead of results. Empty clears it.
type SetError struct {
	Message string
}

func (SetLoading) Kind() string    { return "SET_LOADING" }
func (SetQuery) Kind() string      { return "SET_QUERY" }
func (SetResults) Kind() string    { return "SET_RESULTS" }
func (AppendResults) Kind() string { return "APPEND_RESULTS" }
func (ClearResults) Kind() string  { return "CLEAR_RESULTS" }
func (SetError) Kind() string      { return "SET_ERROR" }

func (SetLoading) action()    {}
func (SetQuery) action()      {}
func (SetResults) action()    {}
func (AppendResults) action() {}
func (ClearResults) action()  {}
func (SetError) action()      {}

// Reduce returns the state that follows s after a. It panics on an action it
// does not know, which can only be a nil Action.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.IsLoading = a.Loading

	case SetQuery:
		s.Query = a.Query

	case SetResults:
		s.Results = copyResults(a.Results)
		s.Total = a.Total
		s.PageToken = a.PageToken
		s.HasMoreResults = a.HasMore
		s.IsLoading = false

	case AppendResults:
		merged := make([]hosts.Result, 0, len(s.Results)+len(a.Results))
		merged = append(merged, s.Results...)
		merged = append(merged, a.Results...)
		s.Results = merged
		s.PageToken = a.PageToken
		s.HasMoreResults = a.HasMore
		s.IsLoading = false

	case ClearResults:
		s.Results = []hosts.Result{}

	case SetError:
		s.Error = a.Message

	default:
		panic(fmt.Sprintf("search: unhandled action type %T", a))
	}
	return s
}

func copyResults(in []hosts.Result) []hosts.Result {
	out := make([]hosts.Result, len(in))
	copy(out, in)
	return out
}
