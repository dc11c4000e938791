// Package eventlog keeps a bounded, scrollable log of stream and control
// events for the TUI overlay.
package eventlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ezDecode/SortVisualiser/internal/theme"
)

const maxEntries = 200

// Entry kinds.
const (
	KindConn  = "conn"
	KindCtl   = "ctl"
	KindStep  = "step"
	KindDone  = "done"
	KindError = "err"
)

// Entry is a single log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// Model holds the log and its scroll position.
type Model struct {
	Entries []Entry
	Offset  int // lines scrolled up from the newest entry
	now     func() time.Time
}

func New() Model {
	return Model{now: time.Now}
}

// Add appends an entry, drops the oldest beyond the cap and scrolls back to
// the newest line.
func (m *Model) Add(kind, format string, args ...any) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	m.Entries = append(m.Entries, Entry{
		Time:    now(),
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(0, len(m.Entries)-1))
}

func (m *Model) ScrollDown(n int) {
	m.Offset = max(0, m.Offset-n)
}

// View renders the log as a bordered panel sized to width x height.
func (m Model) View(width, height int) string {
	innerW := max(20, width-4)
	visible := max(3, height-6)

	title := theme.StyleHeader.Render(" EVENT LOG ")
	footer := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))
	panel := lipgloss.NewStyle().
		Width(innerW).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))
	}

	end := max(0, len(m.Entries)-m.Offset)
	start := max(0, end-visible)

	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		msg := e.Message
		if limit := innerW - 23; limit > 0 && len(msg) > limit {
			msg = msg[:limit] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			theme.StyleDimmed.Render(e.Time.Format("15:04:05.000")),
			lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(4).Render(e.Kind),
			msg,
		))
	}

	more := ""
	if m.Offset > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), more, footer))
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindConn:
		return theme.ColorHealthy
	case KindCtl:
		return theme.ColorPaused
	case KindStep:
		return theme.ColorSorting
	case KindDone:
		return theme.ColorDone
	case KindError:
		return theme.ColorFailed
	default:
		return theme.ColorDimmed
	}
}
