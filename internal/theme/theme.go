// Package theme provides the Lip Gloss color palette and reusable styles
// for the sortviz TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Bar colors.
var (
	ColorBar     = lipgloss.Color("#3b82f6")
	ColorCompare = lipgloss.Color("#d97706")
	ColorSwap    = lipgloss.Color("#dc2626")
	ColorSorted  = lipgloss.Color("#16a34a")
)

// Phase colors.
var (
	ColorIdle      = lipgloss.Color("#4b5563")
	ColorSorting   = lipgloss.Color("#2563eb")
	ColorPaused    = lipgloss.Color("#854d0e")
	ColorDone      = lipgloss.Color("#16a34a")
	ColorFailed    = lipgloss.Color("#dc2626")
	ColorOfflineBg = lipgloss.Color("#7c3aed")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// PhaseColor returns the color for a playback phase name.
func PhaseColor(phase string) lipgloss.Color {
	switch phase {
	case "idle":
		return ColorIdle
	case "sorting":
		return ColorSorting
	case "paused":
		return ColorPaused
	case "done":
		return ColorDone
	case "failed":
		return ColorFailed
	default:
		return ColorDimmed
	}
}

// PhaseGlyph returns a Unicode glyph representing a playback phase.
func PhaseGlyph(phase string) string {
	switch phase {
	case "idle":
		return "○"
	case "sorting":
		return "●>"
	case "paused":
		return "‖"
	case "done":
		return "✓"
	case "failed":
		return "✗"
	default:
		return "·"
	}
}

// SpeedColor shades the speed preset from calm to hot.
func SpeedColor(speed string) lipgloss.Color {
	switch speed {
	case "slow":
		return ColorHealthy
	case "fast":
		return ColorDanger
	default:
		return ColorWarning
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleError = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorDanger)

	StyleBanner = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright).
		Background(ColorOfflineBg).
		Padding(0, 1)
)
