package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors tuned for both light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorBgSubtle)

	headerSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Background(ColorBgSubtle).
				Underline(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	rowCursorStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBgHighlight)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	filterLabelStyle = lipgloss.NewStyle().
				Foreground(ColorInfo)

	sortLabelStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	statsTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	statsPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
)
