package app

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/playback"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func newOffline(t *testing.T, opts Options) (Model, client.Conn) {
	t.Helper()
	local := client.NewLocal(nil, func(string) time.Duration { return 0 }, nil)
	conn, err := local.Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	opts.Dialer = local
	opts.Offline = true
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(1, 2))
	}
	m := New(opts)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, client.ConnectedMsg{Conn: conn})
	return m, conn
}

func TestOfflineRunToCompletion(t *testing.T) {
	m, conn := newOffline(t, Options{Algorithm: "insertionSort", Array: []int{4, 1, 3}})
	m = update(t, m, runes("s"))
	require.Equal(t, playback.PhaseStreaming, m.engine.Phase())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for m.engine.Phase() == playback.PhaseStreaming {
		msg := client.ReadLoop(ctx, conn)()
		m = update(t, m, msg)
		m = update(t, m, frameMsg{})
	}

	assert.Equal(t, playback.PhaseDone, m.engine.Phase())
	assert.Equal(t, []int{1, 3, 4}, m.engine.Last())
	assert.Positive(t, m.engine.Comparisons())

	v := m.View()
	assert.Contains(t, v, "Offline demo")
	assert.Contains(t, v, "done")
	assert.Contains(t, v, "insertionSort")
}

func TestStepDrainsOnFrame(t *testing.T) {
	m, _ := newOffline(t, Options{Array: []int{2, 1}})
	m.engine.Begin()

	next, cmd := m.Update(client.StepMsg{Step: sortalgo.Step{Array: []int{2, 1}, Compare: &sortalgo.Pair{0, 1}}})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.ticking)
	assert.Equal(t, 1, m.engine.Pending())

	m = update(t, m, frameMsg{})
	assert.Equal(t, 1, m.engine.Rendered())
	assert.Equal(t, 0, m.engine.Pending())
	assert.Equal(t, 1, m.statusBar.Comparisons)
}

func TestPauseToggle(t *testing.T) {
	m, _ := newOffline(t, Options{})
	m = update(t, m, runes("p"))
	assert.False(t, m.engine.Paused(), "pause outside a run is ignored")

	m.engine.Begin()
	m = update(t, m, runes("p"))
	assert.True(t, m.engine.Paused())
	assert.Equal(t, "paused", m.statusBar.Phase)

	m = update(t, m, runes(" "))
	assert.False(t, m.engine.Paused())
	assert.Equal(t, "sorting", m.statusBar.Phase)
}

func TestSelectionLockedWhileSorting(t *testing.T) {
	m, _ := newOffline(t, Options{Algorithm: "bubbleSort"})
	m = update(t, m, runes("a"))
	assert.NotEqual(t, "bubbleSort", m.algorithm())
	before := m.algorithm()

	m.engine.Begin()
	m = update(t, m, runes("a"))
	m = update(t, m, runes("f"))
	assert.Equal(t, before, m.algorithm())
	assert.Equal(t, "medium", m.speed())
}

func TestSpeedCycle(t *testing.T) {
	m := New(Options{Speed: "fast"})
	assert.Equal(t, "fast", m.speed())
	m = update(t, m, runes("f"))
	assert.Equal(t, "slow", m.speed())

	m = New(Options{Speed: "ludicrous"})
	assert.Equal(t, "ludicrous", m.speed())
}

func TestEditArray(t *testing.T) {
	m, _ := newOffline(t, Options{Array: []int{1, 2}})
	m = update(t, m, runes("e"))
	require.Equal(t, ModeEdit, m.mode)
	assert.Equal(t, "1,2", m.input.Value())

	m.input.SetValue("1, x")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeEdit, m.mode)
	assert.Contains(t, m.errMsg, "please enter between 1 and 20 valid numbers")

	m.input.SetValue("9, 4, 7")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, []int{9, 4, 7}, m.array)
	assert.Empty(t, m.errMsg)

	m = update(t, m, runes("e"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, []int{9, 4, 7}, m.array)
}

func TestRandomize(t *testing.T) {
	m, _ := newOffline(t, Options{Array: []int{1}})
	m = update(t, m, runes("r"))
	assert.GreaterOrEqual(t, len(m.array), 8)
	assert.LessOrEqual(t, len(m.array), 13)
}

func TestServerErrorIsShown(t *testing.T) {
	m, _ := newOffline(t, Options{})
	m.engine.Begin()
	m = update(t, m, client.ErrorMsg{Message: "Invalid sorting algorithm: stoogeSort"})
	assert.Equal(t, playback.PhaseFailed, m.engine.Phase())
	assert.Contains(t, m.View(), "stoogeSort")
}

func TestStartWithoutConnection(t *testing.T) {
	m := New(Options{})
	m = update(t, m, runes("s"))
	assert.Equal(t, playback.PhaseIdle, m.engine.Phase())
	assert.Equal(t, client.ErrNotConnected.Error(), m.errMsg)
}

func TestDisconnectResetsAndRedials(t *testing.T) {
	m, _ := newOffline(t, Options{})
	m.engine.Begin()

	next, cmd := m.Update(client.DisconnectedMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Nil(t, m.conn)
	assert.Equal(t, playback.PhaseIdle, m.engine.Phase())
	m.cancel()
}

func TestDisconnectKeepsPendingFrameTick(t *testing.T) {
	m, conn := newOffline(t, Options{Array: []int{2, 1}})
	m.engine.Begin()
	m = update(t, m, client.StepMsg{Step: sortalgo.Step{Array: []int{2, 1}, Compare: &sortalgo.Pair{0, 1}}})
	require.True(t, m.ticking)

	m = update(t, m, client.DisconnectedMsg{})
	assert.True(t, m.ticking, "the tick already in flight still owns the frame chain")

	m = update(t, m, client.ConnectedMsg{Conn: conn})
	assert.Nil(t, m.scheduleFrame(), "a second frame chain must not start")

	for i := 0; m.ticking && i < 1000; i++ {
		m = update(t, m, frameMsg{})
	}
	require.False(t, m.ticking, "frame chain ends once bars settle")
	assert.NotNil(t, m.scheduleFrame())
	m.cancel()
}

func TestDisconnectOverlay(t *testing.T) {
	m := New(Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	v := m.View()
	assert.Contains(t, v, "DISCONNECTED")
	assert.Contains(t, v, "Reconnecting")
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newOffline(t, Options{})
	m = update(t, m, runes("?"))
	require.Equal(t, ModeHelp, m.mode)
	v := m.View()
	assert.Contains(t, v, "radixSort")
	assert.True(t, strings.Contains(v, "esc"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestAlgorithmsFromServerKeepSelection(t *testing.T) {
	m := New(Options{Algorithm: "heapSort"})
	m = update(t, m, algorithmsMsg{names: []string{"quickSort", "heapSort"}})
	assert.Equal(t, "heapSort", m.algorithm())

	m = update(t, m, algorithmsMsg{names: []string{"quickSort"}})
	assert.Equal(t, "quickSort", m.algorithm())
}

func TestInitialView(t *testing.T) {
	assert.Equal(t, "Initializing...", New(Options{}).View())
}

func TestEventLogOverlay(t *testing.T) {
	m, _ := newOffline(t, Options{Array: []int{2, 1}})
	m.engine.Begin()
	m = update(t, m, client.StepMsg{Step: sortalgo.Step{Array: []int{2, 1}, Swap: &sortalgo.Pair{0, 1}}})
	m = update(t, m, runes("p"))

	m = update(t, m, runes("l"))
	require.Equal(t, ModeLog, m.mode)
	v := m.View()
	assert.Contains(t, v, "EVENT LOG")
	assert.Contains(t, v, "connected")
	assert.Contains(t, v, "swap 0,1")
	assert.Contains(t, v, "pauseSort")

	m = update(t, m, runes("k"))
	assert.Equal(t, 1, m.events.Offset)
	m = update(t, m, runes("j"))
	assert.Equal(t, 0, m.events.Offset)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}
