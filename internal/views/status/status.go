package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ezDecode/SortVisualiser/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected   bool
	Offline     bool
	Algorithm   string
	Speed       string
	Phase       string
	Comparisons int
	Swaps       int
	Pending     int
	Width       int
}

// New creates a status bar model.
func New() Model {
	return Model{Phase: "idle"}
}

// SetCounts updates the counters shown next to the phase.
func (m *Model) SetCounts(comparisons, swaps, pending int) {
	m.Comparisons = comparisons
	m.Swaps = swaps
	m.Pending = pending
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch {
	case m.Offline:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorOfflineBg).Render("◆ Offline")
	case m.Connected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	phase := lipgloss.NewStyle().Foreground(theme.PhaseColor(m.Phase)).
		Render(theme.PhaseGlyph(m.Phase) + " " + m.Phase)
	speed := lipgloss.NewStyle().Foreground(theme.SpeedColor(m.Speed)).Render(m.Speed)
	counts := fmt.Sprintf("%d comparisons  %d swaps", m.Comparisons, m.Swaps)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + m.Algorithm + " @ " + speed + sep + phase + sep + counts
	if m.Pending > 0 {
		content += sep + theme.StyleDimmed.Render(fmt.Sprintf("%d buffered", m.Pending))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
