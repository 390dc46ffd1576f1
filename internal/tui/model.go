package tui

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/engine"
	"github.com/nullkey/keyflow/internal/keycode"
)

// Snapshotter is whatever can report the engine's current state once per
// tick. cmd/keyflow satisfies this directly with *engine.Layout.
type Snapshotter interface {
	CurrentLayer() int
	Keycodes() []keycode.Code
	IsWaitingOnHoldTap() bool
	IsOneShotActive() bool
	IsTapDancePending() bool
	QueuedSequences() int
}

var _ Snapshotter = (*engine.Layout)(nil)

// Messages sent through the Bubble Tea update loop.

type snapshotTickMsg struct{}

type configSavedMsg struct{ err error }

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53.000001"
	Category string // e.g. "matrix", "macro", "holdtap"
	Message  string // the log message
}

// DebugLogMsg carries a structured debug log entry into the dashboard.
type DebugLogMsg struct {
	Entry DebugEntry
}

const maxDebugLines = 50

// snapshotInterval is how often the dashboard polls the engine for a
// fresh state snapshot — independent of the engine's own tick rate,
// which typically runs far faster than a terminal needs to redraw.
const snapshotInterval = 50 * time.Millisecond

// Model is the Bubble Tea model for the keyflow dashboard.
type Model struct {
	Engine     Snapshotter
	Config     *config.Config
	HotkeyName string
	Logger     *log.Logger
	DebugMode  bool

	DebugEntries []DebugEntry

	currentLayer    int
	keycodes        []keycode.Code
	waitingHoldTap  bool
	oneShotActive   bool
	tapDancePending bool
	queuedMacros    int

	themeName string
}

// NewModel creates a new dashboard model over eng, which is polled once
// per snapshotInterval for a fresh state snapshot.
func NewModel(cfg *config.Config, eng Snapshotter, logger *log.Logger, debug bool) Model {
	themeName := cfg.Theme
	applyTheme(LoadTheme(themeName))
	return Model{
		Engine:     eng,
		Config:     cfg,
		HotkeyName: cfg.Matrix.Device,
		Logger:     logger,
		DebugMode:  debug,
		themeName:  themeName,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return snapshotTickCmd()
}

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t":
			next := NextTheme(m.themeName)
			applyTheme(next)
			m.themeName = next.Name
			m.Config.Theme = m.themeName
			return m, m.saveConfigCmd()
		}

	case snapshotTickMsg:
		m.currentLayer = m.Engine.CurrentLayer()
		m.keycodes = m.Engine.Keycodes()
		m.waitingHoldTap = m.Engine.IsWaitingOnHoldTap()
		m.oneShotActive = m.Engine.IsOneShotActive()
		m.tapDancePending = m.Engine.IsTapDancePending()
		m.queuedMacros = m.Engine.QueuedSequences()
		return m, snapshotTickCmd()

	case configSavedMsg:
		if msg.err != nil && m.Logger != nil {
			m.Logger.Printf("failed to save config: %v", msg.err)
		}

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

func snapshotTickCmd() tea.Cmd {
	return tea.Tick(snapshotInterval, func(time.Time) tea.Msg {
		return snapshotTickMsg{}
	})
}

func (m Model) saveConfigCmd() tea.Cmd {
	cfg := m.Config
	path := config.DefaultPath()
	return func() tea.Msg {
		return configSavedMsg{err: config.Save(path, cfg)}
	}
}
