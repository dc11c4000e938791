// Package bars renders the array as vertical bars. Bar heights follow
// their target values on critically damped springs so a swap slides rather
// than jumps.
package bars

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/ezDecode/SortVisualiser/internal/playback"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/theme"
)

const (
	defaultHeight = 12
	maxBarWidth   = 4
	settleEpsilon = 0.01
)

var blocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Model holds the bar chart state.
type Model struct {
	Width  int
	Height int

	spring harmonica.Spring
	pos    []float64
	vel    []float64
	target []int

	compare *sortalgo.Pair
	swap    *sortalgo.Pair
	sorted  bool
}

// New creates a bar chart animated at fps frames per second.
func New(fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{
		Height: defaultHeight,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

// SetArray shows a static array, used before a run starts.
func (m *Model) SetArray(a []int) {
	m.SetFrame(playback.Frame{Array: a})
}

// SetFrame retargets the springs at f's values. A length change snaps
// immediately.
func (m *Model) SetFrame(f playback.Frame) {
	m.target = append(m.target[:0], f.Array...)
	m.compare = f.Compare
	m.swap = f.Swap
	m.sorted = f.Final

	if len(m.pos) != len(f.Array) {
		m.pos = make([]float64, len(f.Array))
		m.vel = make([]float64, len(f.Array))
		for i, v := range f.Array {
			m.pos[i] = float64(v)
		}
	}
}

// Tick advances every spring by one frame and reports whether any bar is
// still moving.
func (m *Model) Tick() bool {
	moving := false
	for i, t := range m.target {
		goal := float64(t)
		m.pos[i], m.vel[i] = m.spring.Update(m.pos[i], m.vel[i], goal)
		if math.Abs(m.pos[i]-goal) < settleEpsilon && math.Abs(m.vel[i]) < settleEpsilon {
			m.pos[i], m.vel[i] = goal, 0
			continue
		}
		moving = true
	}
	return moving
}

// Positions returns the current animated heights.
func (m Model) Positions() []float64 { return m.pos }

// View renders the chart followed by one row of value labels.
func (m Model) View() string {
	if len(m.target) == 0 {
		return theme.StyleDimmed.Render("  (empty array)")
	}

	height := m.Height
	if height < 1 {
		height = defaultHeight
	}
	width := m.barWidth()

	lo, hi := 0, 1
	for _, v := range m.target {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := float64(hi - lo)

	styles := make([]lipgloss.Style, len(m.target))
	for i := range m.target {
		styles[i] = lipgloss.NewStyle().Foreground(m.color(i))
	}

	rows := make([]string, 0, height+1)
	for r := height - 1; r >= 0; r-- {
		var b strings.Builder
		for i, p := range m.pos {
			if i > 0 {
				b.WriteByte(' ')
			}
			fill := (p - float64(lo)) / span * float64(height)
			b.WriteString(styles[i].Render(strings.Repeat(cell(fill, r), width)))
		}
		rows = append(rows, b.String())
	}

	var labels strings.Builder
	for i, v := range m.target {
		if i > 0 {
			labels.WriteByte(' ')
		}
		labels.WriteString(label(v, width))
	}
	rows = append(rows, theme.StyleDimmed.Render(labels.String()))

	return strings.Join(rows, "\n")
}

func (m Model) barWidth() int {
	n := len(m.target)
	if m.Width <= 0 {
		return 3
	}
	w := (m.Width - (n - 1)) / n
	return max(1, min(maxBarWidth, w))
}

func (m Model) color(i int) lipgloss.Color {
	switch {
	case m.sorted:
		return theme.ColorSorted
	case m.swap != nil && (i == m.swap[0] || i == m.swap[1]):
		return theme.ColorSwap
	case m.compare != nil && (i == m.compare[0] || i == m.compare[1]):
		return theme.ColorCompare
	default:
		return theme.ColorBar
	}
}

// cell picks the block glyph for row r of a bar filled to fill rows.
func cell(fill float64, r int) string {
	switch {
	case fill >= float64(r+1):
		return blocks[len(blocks)-1]
	case fill <= float64(r):
		return blocks[0]
	default:
		return blocks[int((fill-float64(r))*float64(len(blocks)-1))]
	}
}

func label(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) > width {
		return strings.Repeat("·", width)
	}
	return s + strings.Repeat(" ", width-len(s))
}
