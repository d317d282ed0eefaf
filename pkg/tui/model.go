// Package tui is the terminal frontend: a query input above a scrollable
// result list, both driven by a search.Session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rubiojr/hostsearch/pkg/format"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/search"
)

type Focus int

const (
	FocusInput Focus = iota
	FocusResults
)

// StateMsg carries a session state published after a dispatch.
type StateMsg search.State

// FetchDoneMsg reports the end of a search or load-more. The outcome is
// already part of the session state.
type FetchDoneMsg struct {
	Err error
}

type sessionClosedMsg struct{}

// chrome is the number of rows used by everything but the result pane.
const chrome = 7

type Model struct {
	ctx      context.Context
	sess     *search.Session
	updates  <-chan search.State
	unsub    func()
	initial  string
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	state    search.State
	focus    Focus
	width    int
	height   int
	ready    bool
}

// New returns a model bound to sess. A non-empty query is searched on start.
func New(ctx context.Context, sess *search.Session, query string) Model {
	ti := textinput.New()
	ti.Placeholder = "services.service_name: HTTP"
	ti.CharLimit = 1024
	ti.SetValue(query)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleChip

	updates, unsub := sess.Subscribe()

	return Model{
		ctx:     ctx,
		sess:    sess,
		updates: updates,
		unsub:   unsub,
		initial: query,
		input:   ti,
		spinner: sp,
		state:   sess.State(),
	}
}

// Close drops the model's subscription to the session.
func (m Model) Close() {
	m.unsub()
}

func (m Model) Focus() Focus {
	return m.focus
}

func (m Model) State() search.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForState(m.updates)}
	if strings.TrimSpace(m.initial) != "" {
		cmds = append(cmds, m.searchCmd(m.initial))
	}
	return tea.Batch(cmds...)
}

func waitForState(updates <-chan search.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return StateMsg(st)
	}
}

func (m Model) searchCmd(query string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return FetchDoneMsg{Err: sess.Search(ctx, query)}
	}
}

func (m Model) loadMoreCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return FetchDoneMsg{Err: sess.LoadMore(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = search.State(msg)
		m.refresh()
		return m, waitForState(m.updates)

	case sessionClosedMsg:
		return m, nil

	case FetchDoneMsg:
		// Failures are rendered from the state; stale results are dropped.
		if msg.Err != nil && !errors.Is(msg.Err, search.ErrStale) {
			m.state = m.sess.State()
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 6
		h := msg.Height - chrome
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = h
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Focus):
		m.toggleFocus()
		return m, nil
	}

	if m.focus == FocusInput {
		if key.Matches(msg, Keys.Search) {
			query := m.input.Value()
			if strings.TrimSpace(query) == "" {
				return m, nil
			}
			m.toggleFocus()
			return m, m.searchCmd(query)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.More):
		if m.state.CanLoadMore() && !m.state.IsLoading {
			return m, m.loadMoreCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == FocusInput {
		m.focus = FocusResults
		m.input.Blur()
		return
	}
	m.focus = FocusInput
	m.input.Focus()
}

func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(renderResults(m.state))
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	inputPane, resultPane := StylePaneFocused, StylePane
	if m.focus == FocusResults {
		inputPane, resultPane = StylePane, StylePaneFocused
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render("hostsearch"))
	b.WriteString("\n")
	b.WriteString(inputPane.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(resultPane.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) statusLine() string {
	st := m.state
	switch {
	case st.IsLoading:
		return m.spinner.View() + " Loading..."
	case st.Error != "":
		return StyleFailure.Render(st.Error)
	case st.Query == "":
		return StyleMuted.Render("Type a query and press enter")
	default:
		return StyleMuted.Render(fmt.Sprintf("Showing %s of %s hosts for %q",
			format.Number(len(st.Results)), format.Number(st.Total), st.Query))
	}
}

func (m Model) helpLine() string {
	parts := []string{"enter: search", "tab: switch focus"}
	if m.focus == FocusResults {
		parts = append(parts, "j/k: scroll")
		if m.state.CanLoadMore() {
			parts = append(parts, "n: load more")
		}
		parts = append(parts, "q: quit")
	} else {
		parts = append(parts, "ctrl+c: quit")
	}
	return StyleMuted.Render(strings.Join(parts, "  "))
}

func renderResults(st search.State) string {
	if len(st.Results) == 0 {
		if st.Error != "" {
			return StyleFailure.Render(st.Error)
		}
		return StyleMuted.Render("No results found.")
	}

	var b strings.Builder
	for _, r := range st.Results {
		b.WriteString(renderResult(r))
		b.WriteString("\n")
	}
	if st.CanLoadMore() {
		label := "Load More Results (n)"
		if st.IsLoading {
			label = "Loading..."
		}
		b.WriteString(StyleChip.Render(label))
	}
	return b.String()
}

func renderResult(r hosts.Result) string {
	line := StyleIP.Render(r.IP) + " " + StyleMuted.Render(format.ProtocolCount(len(r.Protocols)))
	if len(r.Protocols) == 0 {
		return line + "\n  " + StyleMuted.Render("No protocols found.")
	}
	chips := make([]string, len(r.Protocols))
	for i, p := range r.Protocols {
		chips[i] = StyleChip.Render(format.ProtocolLabel(p))
	}
	return line + "\n  " + strings.Join(chips, " ")
}
