package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ezDecode/SortVisualiser/internal/client"
	"github.com/ezDecode/SortVisualiser/internal/playback"
	"github.com/ezDecode/SortVisualiser/internal/sortalgo"
	"github.com/ezDecode/SortVisualiser/internal/theme"
	"github.com/ezDecode/SortVisualiser/internal/views/bars"
	"github.com/ezDecode/SortVisualiser/internal/views/eventlog"
	helpview "github.com/ezDecode/SortVisualiser/internal/views/help"
	"github.com/ezDecode/SortVisualiser/internal/views/status"
)

// Mode identifies what the keyboard is driving.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit
	ModeHelp
	ModeLog
)

// Options configure the root model.
type Options struct {
	Dialer     client.Dialer
	HTTP       *client.HTTPClient // optional; refreshes the algorithm list
	Algorithms []string
	Algorithm  string
	Speed      string
	Array      []int
	Offline    bool
	FPS        int
	Logger     *zap.SugaredLogger
	Rand       *rand.Rand
}

type frameMsg struct{}

type algorithmsMsg struct{ names []string }

// Model is the root Bubble Tea model.
type Model struct {
	dialer client.Dialer
	http   *client.HTTPClient
	conn   client.Conn
	log    *zap.SugaredLogger
	rng    *rand.Rand
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	help   help.Model
	input  textinput.Model
	mode   Mode
	width  int
	height int

	// Playback.
	engine  *playback.Engine
	refresh time.Duration
	ticking bool

	// Run selection.
	algorithms []string
	algIdx     int
	speeds     []string
	speedIdx   int
	array      []int

	// Sub-views.
	bars      bars.Model
	statusBar status.Model
	events    eventlog.Model
	helpText  string

	offline   bool
	connected bool
	banner    string
	errMsg    string
}

// New creates the root model.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}

	algorithms := opts.Algorithms
	if len(algorithms) == 0 {
		algorithms = sortalgo.Default().Names()
	}
	speeds := []string{"slow", "medium", "fast"}
	if opts.Speed != "" && !slices.Contains(speeds, opts.Speed) {
		speeds = append(speeds, opts.Speed)
	}
	speed := opts.Speed
	if speed == "" {
		speed = "medium"
	}
	alg := opts.Algorithm
	if alg == "" {
		alg = "bubbleSort"
	}

	array := opts.Array
	if len(array) == 0 {
		array = playback.RandomArray(rng)
	}

	input := textinput.New()
	input.Prompt = "array> "
	input.Placeholder = "5, 3, 8, 1"
	input.CharLimit = 200

	m := Model{
		dialer:     opts.Dialer,
		http:       opts.HTTP,
		log:        log,
		rng:        rng,
		ctx:        ctx,
		cancel:     cancel,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		input:      input,
		engine:     playback.New(playback.Options{ShowBanner: opts.Offline}),
		refresh:    time.Second / time.Duration(fps),
		algorithms: algorithms,
		algIdx:     max(0, slices.Index(algorithms, alg)),
		speeds:     speeds,
		speedIdx:   slices.Index(speeds, speed),
		array:      array,
		bars:       bars.New(fps),
		statusBar:  status.New(),
		events:     eventlog.New(),
		offline:    opts.Offline,
	}
	m.bars.SetArray(array)
	m.syncStatus()
	return m
}

// Init starts the connection and, when an HTTP client is set, fetches the
// server's algorithm list.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen()}
	if m.http != nil {
		cmds = append(cmds, m.fetchAlgorithms())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.bars.Width = msg.Width - 4
		m.bars.Height = max(4, msg.Height-10)
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-12)
		if m.mode == ModeHelp {
			m.helpText = helpview.Render(m.width, m.keys.All(), m.algorithms)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.ConnectedMsg:
		m.conn = msg.Conn
		m.connected = true
		m.events.Add(eventlog.KindConn, "connected")
		m.syncStatus()
		return m, m.readNext()

	case client.DisconnectedMsg:
		if m.conn != nil {
			m.conn.Close()
		}
		m.conn = nil
		m.connected = false
		m.engine.Reset()
		m.syncStatus()
		if m.ctx.Err() != nil {
			return m, nil
		}
		if msg.Err != nil {
			m.log.Warnw("stream lost", "error", msg.Err)
		}
		m.events.Add(eventlog.KindConn, "disconnected: %v", msg.Err)
		return m, m.listen()

	case client.StepMsg:
		m.events.Add(eventlog.KindStep, "%s", describeStep(msg.Step))
		cmds := []tea.Cmd{m.readNext()}
		if m.engine.Enqueue(msg.Step) {
			cmds = append(cmds, m.scheduleFrame())
		}
		m.syncStatus()
		return m, tea.Batch(cmds...)

	case client.CompleteMsg:
		f := m.engine.Complete(msg.Array)
		m.events.Add(eventlog.KindDone, "sortComplete %v", msg.Array)
		m.bars.SetFrame(f)
		m.banner = f.Banner
		m.syncStatus()
		return m, tea.Batch(m.readNext(), m.scheduleFrame())

	case client.ErrorMsg:
		m.errMsg = m.engine.Fail(msg.Message).Error()
		m.events.Add(eventlog.KindError, "sortError %s", msg.Message)
		m.syncStatus()
		return m, m.readNext()

	case frameMsg:
		m.ticking = false
		advanced := false
		if f, ok := m.engine.Advance(); ok {
			m.bars.SetFrame(f)
			advanced = true
		}
		moving := m.bars.Tick()
		m.syncStatus()
		if advanced || moving {
			return m, m.scheduleFrame()
		}
		return m, nil

	case algorithmsMsg:
		current := m.algorithms[m.algIdx]
		m.algorithms = msg.names
		m.algIdx = max(0, slices.Index(m.algorithms, current))
		m.syncStatus()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeEdit:
		return m.handleEditKey(msg)
	case ModeLog:
		switch {
		case msg.String() == "ctrl+c":
			return m.quit()
		case key.Matches(msg, m.keys.Up):
			m.events.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.events.ScrollDown(1)
		case key.Matches(msg, m.keys.Escape, m.keys.Log, m.keys.Quit):
			m.mode = ModeNormal
		}
		return m, nil
	case ModeHelp:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if key.Matches(msg, m.keys.Escape, m.keys.Help, m.keys.Quit) {
			m.mode = ModeNormal
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		m.helpText = helpview.Render(m.width, m.keys.All(), m.algorithms)
		return m, nil

	case key.Matches(msg, m.keys.Log):
		m.mode = ModeLog
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		return m.togglePause()
	}

	// Run selection is locked while a sort streams.
	if m.engine.Phase() == playback.PhaseStreaming {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		return m.start()

	case key.Matches(msg, m.keys.Randomize):
		m.array = playback.RandomArray(m.rng)
		m.bars.SetArray(m.array)
		m.banner, m.errMsg = "", ""
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		m.mode = ModeEdit
		m.errMsg = ""
		m.input.SetValue(playback.FormatArray(m.array))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Algorithm):
		m.algIdx = (m.algIdx + 1) % len(m.algorithms)
		m.syncStatus()
		return m, nil

	case key.Matches(msg, m.keys.Speed):
		m.speedIdx = (m.speedIdx + 1) % len(m.speeds)
		m.syncStatus()
		return m, nil
	}

	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.errMsg = ""
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		arr, err := playback.ParseArray(m.input.Value())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.array = arr
		m.bars.SetArray(arr)
		m.mode = ModeNormal
		m.errMsg, m.banner = "", ""
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) start() (tea.Model, tea.Cmd) {
	if m.conn == nil {
		m.errMsg = client.ErrNotConnected.Error()
		return m, nil
	}
	m.errMsg, m.banner = "", ""
	m.engine.Begin()
	m.bars.SetArray(m.array)
	m.events.Add(eventlog.KindCtl, "startSort %s %v speed=%s", m.algorithm(), m.array, m.speed())
	if err := client.StartSort(m.conn, m.algorithm(), m.array, m.speed()); err != nil {
		m.engine.Reset()
		m.errMsg = err.Error()
		m.events.Add(eventlog.KindError, "%v", err)
	}
	m.syncStatus()
	return m, nil
}

func (m Model) togglePause() (tea.Model, tea.Cmd) {
	if m.engine.Phase() != playback.PhaseStreaming || m.conn == nil {
		return m, nil
	}

	var cmd tea.Cmd
	if m.engine.Paused() {
		if m.engine.Resume() {
			cmd = m.scheduleFrame()
		}
		m.events.Add(eventlog.KindCtl, "resumeSort (%d buffered)", m.engine.Pending())
		if err := client.Resume(m.conn); err != nil {
			m.log.Warnw("resume failed", "error", err)
		}
	} else {
		m.engine.Pause()
		m.events.Add(eventlog.KindCtl, "pauseSort after %d frames", m.engine.Rendered())
		if err := client.Pause(m.conn); err != nil {
			m.log.Warnw("pause failed", "error", err)
		}
	}
	m.syncStatus()
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	if m.conn != nil {
		m.conn.Close()
	}
	return m, tea.Quit
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	switch m.mode {
	case ModeHelp:
		return m.helpText + "\n" + theme.StyleDimmed.Render("  esc: close help")
	case ModeLog:
		return m.events.View(m.width, m.height)
	}
	if !m.connected && !m.offline {
		return m.renderDisconnected()
	}

	sections := []string{
		theme.StyleHeader.Render("SortVisualiser") + "  " +
			theme.StyleDimmed.Render("array: "+playback.FormatArray(m.array)),
	}
	if m.banner != "" {
		sections = append(sections, theme.StyleBanner.Render(m.banner))
	}
	sections = append(sections, "", m.bars.View(), m.statusBar.View())
	if m.mode == ModeEdit {
		sections = append(sections, m.input.View())
	}
	if m.errMsg != "" {
		sections = append(sections, theme.StyleError.Render("  "+m.errMsg))
	}
	sections = append(sections, "  "+m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderDisconnected() string {
	box := theme.StyleBorder.
		Padding(1, 4).
		Render(theme.StyleError.Render("DISCONNECTED") + "\n\n" +
			theme.StyleDimmed.Render("Reconnecting to the step server..."))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func describeStep(s sortalgo.Step) string {
	switch {
	case s.Swap != nil:
		return fmt.Sprintf("swap %d,%d", s.Swap[0], s.Swap[1])
	case s.Compare != nil:
		return fmt.Sprintf("compare %d,%d", s.Compare[0], s.Compare[1])
	default:
		return "settle"
	}
}

func (m Model) algorithm() string { return m.algorithms[m.algIdx] }
func (m Model) speed() string     { return m.speeds[m.speedIdx] }

func (m Model) listen() tea.Cmd {
	if m.dialer == nil {
		return nil
	}
	return client.Listen(m.ctx, m.dialer, m.log)
}

func (m Model) readNext() tea.Cmd {
	if m.conn == nil {
		return nil
	}
	return client.ReadLoop(m.ctx, m.conn)
}

// scheduleFrame arms the single refresh tick. Only one is ever pending.
func (m *Model) scheduleFrame() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m Model) fetchAlgorithms() tea.Cmd {
	ctx, httpClient, log := m.ctx, m.http, m.log
	return func() tea.Msg {
		resp, err := httpClient.Algorithms(ctx)
		if err != nil || len(resp.Algorithms) == 0 {
			log.Debugw("algorithm list unavailable", "error", err)
			return nil
		}
		return algorithmsMsg{names: resp.Algorithms}
	}
}

func (m *Model) syncStatus() {
	phase := m.engine.Phase().String()
	if m.engine.Paused() {
		phase = "paused"
	}
	m.statusBar.Connected = m.connected
	m.statusBar.Offline = m.offline
	m.statusBar.Algorithm = m.algorithm()
	m.statusBar.Speed = m.speed()
	m.statusBar.Phase = phase
	m.statusBar.SetCounts(m.engine.Comparisons(), m.engine.Swaps(), m.engine.Pending())
}
