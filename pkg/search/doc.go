// Package search holds the search state machine shared by every hostsearch
// frontend.
//
// # Overview
//
// A frontend (the browser page, the terminal UI, the CLI) owns one Session.
// The session owns one State and changes it only by dispatching Actions
// through Reduce. Dispatch is serialized, so transitions never interleave
// even though fetches run concurrently.
//
// # State transitions
//
//   - SetLoading: sets IsLoading
//   - SetQuery: sets Query
//   - SetResults: replaces Results, Total, PageToken and HasMoreResults, ends loading
//   - AppendResults: appends Results, replaces PageToken and HasMoreResults, ends loading
//   - ClearResults: empties Results
//   - SetError: sets Error
//
// No action touches fields outside its list. Reduce never mutates the slices
// of the state it is given, so snapshots handed to renderers stay valid.
//
// # Fetch orchestration
//
// Session.Search and Session.LoadMore call a Fetcher (normally
// *client.Client) and dispatch the completion. Every fetch is tagged with the
// session generation it started in and Search starts a new generation. A
// completion from an older generation (for example a "load more" that
// resolves after the user already typed a new query) is discarded and
// reported as ErrStale. WithLastWriteWins turns the check off, in which case
// whichever completion lands last wins.
//
// # Usage
//
//	sess := search.NewSession(client.NewClient(proxyURL))
//	updates, cancel := sess.Subscribe()
//	defer cancel()
//
//	go sess.Search(ctx, "services.service_name: HTTP")
//	for st := range updates {
//		render(st)
//	}
package search
