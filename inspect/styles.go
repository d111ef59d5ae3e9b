package inspect

import "github.com/charmbracelet/lipgloss"

// Timeline palette: output time is amber, source time is teal, and wraps
// are drawn in red so loop points stand out while scrubbing.
const (
	colorOutput  = "#F5A524"
	colorSource  = "#2EC4B6"
	colorWrap    = "#E63946"
	colorMuted   = "#8D99AE"
	colorFrame   = "#EDF2F4"
	colorPanel   = "#3A506B"
	colorKeyHint = "#1C2541"
)

var (
	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorFrame)).
		Background(lipgloss.Color(colorPanel)).
		Padding(0, 2).
		MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)).
		Width(13)

	frameStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorFrame))

	outputTimeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorOutput))

	sourceTimeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorSource))

	wrapStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorWrap))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)).
		Italic(true)

	// panelStyle turns red on a loop point frame
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false).
		BorderForeground(lipgloss.Color(colorPanel)).
		Padding(0, 1)

	barPlayedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorSource))

	barRestStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorPanel))

	keyHintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted)).
		Background(lipgloss.Color(colorKeyHint)).
		Padding(0, 1)
)
