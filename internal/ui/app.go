package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/panel"
	"github.com/five82/lumen/internal/prefs"
	"github.com/five82/lumen/internal/state"
)

// Panel is the control surface the UI drives. *panel.Controller satisfies it.
type Panel interface {
	Store() *state.Store
	SetMode(ctx context.Context, mode device.Mode) error
	SendColor(rgb device.RGB)
	SyncParty(value string)
	Unlock(ctx context.Context) error
	Reset(ctx context.Context) error
}

// View represents the current active view.
type View int

const (
	ViewControls View = iota
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Panel     Panel
	Logger    *zap.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	LogLines  int
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	panel     Panel
	store     *state.Store
	log       *zap.Logger
	keys      keyMap
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	logLines  int
	pollTick  time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Controls
	picker       picker
	progress     progress.Model
	partyInput   textinput.Model
	editingParty bool
	partyDraft   *float64
	partyDraftAt time.Time

	// Diagnostics
	logViewport viewport.Model
	logState    logState

	// Overlays
	showHelp bool
	modal    Modal

	// Footer notice
	notice    string
	noticeErr bool
	noticeAt  time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	logLines := opts.LogLines
	if logLines <= 0 {
		logLines = DefaultLogLines
	}

	p := opts.Prefs
	if p.Theme == "" {
		p.Theme = prefs.Default().Theme
	}
	if p.Color == "" {
		p.Color = prefs.Default().Color
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(p.Theme)

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = strconv.FormatFloat(panel.DefaultPartyHz, 'f', 1, 64)
	input.CharLimit = 6
	input.Width = 6

	m := Model{
		ctx:         ctx,
		panel:       opts.Panel,
		log:         logger.Named("ui"),
		keys:        DefaultKeyMap(),
		prefs:       p,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		logLines:    logLines,
		pollTick:    pollTick,
		theme:       theme,
		currentView: ViewControls,
		picker:      newPicker(p.Color),
		progress:    newProgress(theme),
		partyInput:  input,
		logState:    logState{follow: true},
	}
	if opts.Panel != nil {
		m.store = opts.Panel.Store()
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, max(msg.Height-2, 1))
		}
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.currentView == ViewLogs {
		return m.renderLogs()
	}
	return m.renderControls()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.editingParty {
		return m.handlePartyInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.progress = newProgress(m.theme)
		m.resize()
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = ViewControls
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.loadLogsCmd()
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleControlsKey(msg)
}

// handleControlsKey processes keys for the main control view.
func (m Model) handleControlsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if i, ok := m.keys.modeForKey(msg.String()); ok && i < len(device.Modes) {
		return m.selectMode(device.Modes[i])
	}

	switch {
	case key.Matches(msg, m.keys.HueDown):
		m.picker.shiftHue(-HueStep)
	case key.Matches(msg, m.keys.HueUp):
		m.picker.shiftHue(HueStep)
	case key.Matches(msg, m.keys.ValueUp):
		m.picker.shiftVal(ValueStep)
	case key.Matches(msg, m.keys.ValueDown):
		m.picker.shiftVal(-ValueStep)
	case key.Matches(msg, m.keys.SatDown):
		m.picker.shiftSat(-SaturationStep)
	case key.Matches(msg, m.keys.SatUp):
		m.picker.shiftSat(SaturationStep)

	case key.Matches(msg, m.keys.PartyUp):
		m.nudgeParty(PartyStep)
		return m, nil
	case key.Matches(msg, m.keys.PartyDown):
		m.nudgeParty(-PartyStep)
		return m, nil
	case key.Matches(msg, m.keys.PartyField):
		_, field := panel.PartyInputs(m.partyValue())
		m.partyInput.SetValue(field)
		m.partyInput.CursorEnd()
		m.editingParty = true
		return m, m.partyInput.Focus()

	case key.Matches(msg, m.keys.Unlock):
		if m.snapshot.Unlocked {
			m.setNotice("Full power is already unlocked", false)
			return m, nil
		}
		m.modal = confirmModal{
			title:     "Unlock full power?",
			body:      "The lamp will run above its safe power limit until reset.",
			onConfirm: m.unlockCmd,
		}
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.modal = confirmModal{
			title:     "Return to safe power mode?",
			body:      "Brightness will be capped at the safe power limit.",
			onConfirm: m.resetCmd,
		}
		return m, nil

	default:
		return m, nil
	}

	// Picker moved: dispatch the new sample.
	m.applyColor()
	return m, nil
}

// handlePartyInput processes keys while the strobe field has focus.
func (m Model) handlePartyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.partyInput.Value()
		m.editingParty = false
		m.partyInput.Blur()
		if hz, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			m.setPartyDraft(panel.ClampPartyHz(hz))
		}
		if m.panel != nil {
			m.panel.SyncParty(value)
		}
		return m, nil
	case "esc":
		m.editingParty = false
		m.partyInput.Blur()
		return m, nil
	case "ctrl+c":
		m.savePrefs()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.partyInput, cmd = m.partyInput.Update(msg)
	return m, cmd
}

// selectMode highlights mode immediately and requests the switch.
func (m Model) selectMode(mode device.Mode) (tea.Model, tea.Cmd) {
	m.snapshot.Mode = mode
	if m.panel == nil {
		return m, nil
	}
	p, ctx := m.panel, m.ctx
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return actionMsg{action: actionMode, mode: mode, err: p.SetMode(ctx, mode)}
	}
}

// applyColor hands the picker's color to the dispatcher and remembers it.
func (m *Model) applyColor() {
	m.prefs.Color = m.picker.hex()
	if m.panel != nil {
		m.panel.SendColor(m.picker.rgb())
	}
}

// nudgeParty moves the strobe slider by delta Hz.
func (m *Model) nudgeParty(delta float64) {
	hz := panel.ClampPartyHz(m.partyValue() + delta)
	// Keep two decimals so repeated steps do not drift.
	hz = float64(int(hz*100+0.5)) / 100
	m.setPartyDraft(hz)
	if m.panel != nil {
		m.panel.SyncParty(strconv.FormatFloat(hz, 'f', 2, 64))
	}
}

func (m *Model) setPartyDraft(hz float64) {
	m.partyDraft = &hz
	m.partyDraftAt = time.Now()
}

// partyValue returns the strobe rate to display: a pending local value wins
// over the store until the debounced update lands.
func (m Model) partyValue() float64 {
	if m.partyDraft != nil {
		return *m.partyDraft
	}
	return m.snapshot.PartyHz
}

func (m Model) unlockCmd() tea.Cmd {
	if m.panel == nil {
		return nil
	}
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return actionMsg{action: actionUnlock, err: p.Unlock(ctx)}
	}
}

func (m Model) resetCmd() tea.Cmd {
	if m.panel == nil {
		return nil
	}
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return actionMsg{action: actionReset, err: p.Reset(ctx)}
	}
}

// handleAction reports the outcome of a mode or power request.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	switch msg.action {
	case actionMode:
		if msg.err != nil {
			m.setNotice("Could not switch to "+msg.mode.Label(), true)
		}
	case actionUnlock:
		if msg.err != nil {
			m.modal = alertModal{title: "Unlock failed", body: msg.err.Error()}
		} else {
			m.snapshot.Unlocked = true
			m.setNotice("Full power unlocked", false)
		}
	case actionReset:
		if msg.err != nil {
			m.modal = alertModal{title: "Reset failed", body: msg.err.Error()}
		} else {
			m.snapshot.Unlocked = false
			m.setNotice("Returned to safe power mode", false)
		}
	}
	if m.store != nil {
		return m, fetchSnapshotCmd(m.store)
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, m.loadLogsCmd())
	}
	if m.notice != "" && time.Since(m.noticeAt) > NoticeTTL {
		m.notice = ""
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// applySnapshot stores a fresh snapshot and retires a settled party draft.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()
	if m.partyDraft != nil &&
		(snap.PartyHz == *m.partyDraft || time.Since(m.partyDraftAt) > PartyDraftTTL) {
		m.partyDraft = nil
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
	m.noticeAt = time.Now()
}

// savePrefs persists the theme and picker color. Failures are logged only.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("failed to save preferences", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// resize fits width-dependent widgets to the window.
func (m *Model) resize() {
	m.progress.Width = max(m.cardWidth()-24, ProgressMinWidth)
	m.logViewport.Width = m.width
	m.logViewport.Height = max(m.height-2, 1)
	m.refreshLogViewport()
}

func (m Model) cardWidth() int {
	if m.width <= 0 {
		return CardMaxWidth
	}
	return min(m.width-2, CardMaxWidth)
}

func newProgress(theme Theme) progress.Model {
	return progress.New(
		progress.WithSolidFill(theme.Accent),
		progress.WithoutPercentage(),
	)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionKind int

const (
	actionMode actionKind = iota
	actionUnlock
	actionReset
)

type actionMsg struct {
	action actionKind
	mode   device.Mode
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx ends.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}
