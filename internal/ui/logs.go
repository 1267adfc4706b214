package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lumen/internal/logtail"
)

// logState holds the diagnostics view state.
type logState struct {
	entries  []logtail.Entry
	err      error
	loaded   bool
	follow   bool
	warnOnly bool
	content  string // last rendered viewport content
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// loadLogsCmd tails the panel's own log file.
func (m Model) loadLogsCmd() tea.Cmd {
	path, limit := m.logPath, m.logLines
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, limit)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.loaded = true
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.refreshLogViewport()
}

// refreshLogViewport re-renders the buffer, skipping unchanged content.
func (m *Model) refreshLogViewport() {
	lines := formatLogEntries(m.logState.entries, m.theme.Styles(), m.logState.warnOnly)
	content := strings.Join(lines, "\n")
	if content == m.logState.content {
		return
	}
	m.logState.content = content
	m.logViewport.SetContent(content)
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey processes keys in the diagnostics view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewControls
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.loadLogsCmd()
		}
	case key.Matches(msg, m.keys.WarnOnly):
		m.logState.warnOnly = !m.logState.warnOnly
		m.logState.content = ""
		m.refreshLogViewport()
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logState.follow = false
		m.logViewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
	}
	return m, nil
}

// renderLogs renders the diagnostics view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	follow := bg.Render("paused", styles.WarningText)
	if m.logState.follow {
		follow = bg.Render("following", styles.SuccessText)
	}
	filter := bg.Render("all levels", styles.MutedText)
	if m.logState.warnOnly {
		filter = bg.Render("warn+", styles.WarningText)
	}
	header := styles.Header.Width(max(m.width, 1)).Render(bg.Join([]string{
		bg.Render("lumen", styles.Logo),
		bg.Render("Diagnostics", styles.AccentText),
		bg.Render(truncateMiddle(m.logPath, max(m.width-50, 12)), styles.FaintText),
		follow,
		filter,
	}, 2))

	var body string
	base := m.theme.Styles()
	switch {
	case m.logPath == "":
		body = base.MutedText.Render("No log file configured.")
	case m.logState.err != nil:
		body = base.DangerText.Render("Could not read log: " + m.logState.err.Error())
	case !m.logState.loaded:
		body = base.MutedText.Render("Loading...")
	case m.logState.content == "":
		body = base.MutedText.Render("No log entries yet.")
	default:
		body = m.logViewport.View()
	}

	hints := bg.Join([]string{
		bg.Render("j/k", styles.WarningText) + bg.Spaces(1) + bg.Render("scroll", styles.MutedText),
		bg.Render("Space", styles.WarningText) + bg.Spaces(1) + bg.Render("follow", styles.MutedText),
		bg.Render("W", styles.WarningText) + bg.Spaces(1) + bg.Render("warnings", styles.MutedText),
		bg.Render("esc/L", styles.WarningText) + bg.Spaces(1) + bg.Render("back", styles.MutedText),
	}, 3)
	footer := styles.Footer.Width(max(m.width, 1)).Render(hints)

	bodyHeight := max(m.height-2, 1)
	body = strings.TrimRight(body, "\n")
	if lines := strings.Count(body, "\n") + 1; lines < bodyHeight {
		body += strings.Repeat("\n", bodyHeight-lines)
	}
	return header + "\n" + body + "\n" + footer
}
