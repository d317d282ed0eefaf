package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorFailure = lipgloss.Color("#EF4444")
	ColorInfo    = lipgloss.Color("#3B82F6")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBorder  = lipgloss.Color("#374151")
	ColorIP      = lipgloss.Color("#F59E0B")

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(ColorPrimary).
			Padding(0, 1)

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleIP      = lipgloss.NewStyle().Bold(true).Foreground(ColorIP)
	StyleChip    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)
