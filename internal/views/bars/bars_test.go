package bars

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezDecode/SortVisualiser/internal/playback"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

func TestSetArraySnapsToValues(t *testing.T) {
	m := New(60)
	m.SetArray([]int{5, 3, 8})
	assert.Equal(t, []float64{5, 3, 8}, m.Positions())
	assert.False(t, m.Tick())
}

func TestSpringSettlesOnTarget(t *testing.T) {
	m := New(60)
	m.SetArray([]int{5, 3})
	m.SetFrame(playback.Frame{Array: []int{3, 5}, Swap: &sortalgo.Pair{0, 1}})

	require.True(t, m.Tick(), "a swap should start the springs moving")
	for i := 0; i < 1000 && m.Tick(); i++ {
	}
	assert.Equal(t, []float64{3, 5}, m.Positions())
}

func TestViewLayout(t *testing.T) {
	m := New(60)
	m.Height = 4
	m.SetArray([]int{1, 4, 2})

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[4], "1")
	assert.Contains(t, lines[4], "4")
	assert.Contains(t, lines[0], "█", "the tallest bar reaches the top row")
}

func TestViewEmpty(t *testing.T) {
	m := New(0)
	assert.Contains(t, m.View(), "empty")
}

func TestBarWidth(t *testing.T) {
	m := New(60)
	m.SetArray([]int{1, 2, 3, 4})
	assert.Equal(t, 3, m.barWidth())

	m.Width = 7
	assert.Equal(t, 1, m.barWidth())

	m.Width = 200
	assert.Equal(t, maxBarWidth, m.barWidth())
}

func TestCell(t *testing.T) {
	assert.Equal(t, "█", cell(3, 1))
	assert.Equal(t, " ", cell(1, 1))
	assert.Equal(t, "▄", cell(1.5, 1))
}

func TestLabelTruncates(t *testing.T) {
	assert.Equal(t, "7  ", label(7, 3))
	assert.Equal(t, "··", label(100, 2))
}
