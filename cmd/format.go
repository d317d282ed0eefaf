package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rubiojr/hostsearch/pkg/format"
	"github.com/rubiojr/hostsearch/pkg/hosts"
	"github.com/rubiojr/hostsearch/pkg/search"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	ipStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	moreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32")).
			Margin(1, 0, 0, 0)
)

// renderResults prints st the way the web page lists it.
func renderResults(w io.Writer, st search.State) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s: %s of %s hosts",
		st.Query, format.Number(len(st.Results)), format.Number(st.Total))))

	if len(st.Results) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No results found."))
		return
	}

	for _, r := range st.Results {
		fmt.Fprintln(w, resultLine(r))
	}

	if st.CanLoadMore() {
		fmt.Fprintln(w, moreStyle.Render("More results available, use --pages to fetch them."))
	}
}

func resultLine(r hosts.Result) string {
	var b strings.Builder
	b.WriteString(ipStyle.Render(r.IP))
	b.WriteString(" ")
	b.WriteString(metaStyle.Render("(" + format.ProtocolCount(len(r.Protocols)) + ")"))

	if len(r.Protocols) == 0 {
		b.WriteString("\n  ")
		b.WriteString(metaStyle.Render("No protocols found."))
		return b.String()
	}

	labels := make([]string, len(r.Protocols))
	for i, p := range r.Protocols {
		labels[i] = chipStyle.Render(format.ProtocolLabel(p))
	}
	b.WriteString("\n  ")
	b.WriteString(strings.Join(labels, " "))
	return b.String()
}
