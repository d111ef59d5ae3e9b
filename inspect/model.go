// Package inspect is a terminal UI for scrubbing through the output frames
// of a composition and seeing which source instant the background shows.
package inspect

import (
	"fmt"
	"math"
	"strings"
	"time"

	"bgloop/background"
	"bgloop/composite"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// barWidth is the width of the source position bar in cells
const barWidth = 40

// Model is the inspector state. It only holds the cursor; everything shown
// is recomputed from the layer on every render.
type Model struct {
	Timing         background.TimingConfig
	Asset          background.SourceAsset
	SourceDuration time.Duration
	Frame          int
}

// NewModel creates an inspector positioned on frame 0. Timing configs no
// render host accepts are rejected here, before anything is drawn.
func NewModel(timing background.TimingConfig, asset background.SourceAsset, sourceDuration time.Duration) (Model, error) {
	if err := composite.ValidateTiming(timing); err != nil {
		return Model{}, err
	}
	return Model{
		Timing:         timing,
		Asset:          asset,
		SourceDuration: sourceDuration,
	}, nil
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	second := int(math.Round(m.Timing.FPS))
	if second < 1 {
		second = 1
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "right", "l":
		m = m.seek(m.Frame + 1)
	case "left", "h":
		m = m.seek(m.Frame - 1)
	case "up", "k":
		m = m.seek(m.Frame + second)
	case "down", "j":
		m = m.seek(m.Frame - second)
	case "home", "g":
		m = m.seek(0)
	case "end", "G":
		m = m.seek(m.Timing.DurationInFrames - 1)
	case "n":
		m = m.seek(m.nextLoopPoint())
	}
	return m, nil
}

func (m Model) seek(frame int) Model {
	last := m.Timing.DurationInFrames - 1
	switch {
	case frame < 0:
		frame = 0
	case frame > last:
		frame = last
	}
	m.Frame = frame
	return m
}

// nextLoopPoint returns the next frame where the source wraps, or the
// current frame when none is left.
func (m Model) nextLoopPoint() int {
	for f := m.Frame + 1; f < m.Timing.DurationInFrames; f++ {
		if background.IsLoopPoint(f, m.Timing.FPS, m.SourceDuration) {
			return f
		}
	}
	return m.Frame
}

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Background Layer Inspector"))
	b.WriteString("\n")

	d := background.Render(m.Frame, m.Timing, m.Asset)
	sourceTime := d.SourceTime(m.SourceDuration)
	loop := background.LoopIndex(m.Frame, d.FPS, m.SourceDuration)
	wraps := background.IsLoopPoint(m.Frame, d.FPS, m.SourceDuration)

	row := func(label, value string) string {
		return labelStyle.Render(label) + value + "\n"
	}

	var panel strings.Builder
	panel.WriteString(row("frame", frameStyle.Render(fmt.Sprintf("%d / %d", m.Frame, m.Timing.DurationInFrames-1))))
	panel.WriteString(row("output time", outputTimeStyle.Render(formatSeconds(background.SourceTime(m.Frame, d.FPS, 0)))))
	panel.WriteString(row("source time", sourceTimeStyle.Render(formatSeconds(sourceTime))))
	panel.WriteString(row("pass", fmt.Sprintf("%d", loop+1)))
	panel.WriteString(row("asset", dimStyle.Render(string(d.Asset))))
	panel.WriteString(row("directive", fmt.Sprintf("loop=%t muted=%t volume=%g fit=%s", d.Loop, d.Muted, d.Volume, d.Layout.Fit)))
	panel.WriteString(m.positionBar(sourceTime))

	style := panelStyle
	if wraps {
		style = style.BorderForeground(lipgloss.Color(colorWrap))
	}
	b.WriteString(style.Render(panel.String()))
	b.WriteString("\n")

	if wraps {
		b.WriteString(wrapStyle.Render("↺ loop point: source wraps to the start on this frame"))
		b.WriteString("\n")
	}

	if m.SourceDuration <= 0 {
		b.WriteString(dimStyle.Render("Source duration unknown: showing unwrapped time"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(keyHintStyle.Render("←/→ frame  ↑/↓ second  n next loop  g/G start/end  q quit"))
	return b.String()
}

func (m Model) positionBar(sourceTime time.Duration) string {
	if m.SourceDuration <= 0 {
		return ""
	}
	played := int(float64(barWidth) * sourceTime.Seconds() / m.SourceDuration.Seconds())
	return barPlayedStyle.Render(strings.Repeat("━", played)) + barRestStyle.Render(strings.Repeat("─", barWidth-played))
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
