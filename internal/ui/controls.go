package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/panel"
)

// renderControls renders the main control view.
func (m Model) renderControls() string {
	view := panel.NewStatusView(m.snapshot)

	sections := []string{
		m.renderHeader(view),
		m.renderModes(view),
		m.card("Color", m.picker.render(m.theme, m.cardWidth()-4)),
		m.card("Party strobe", m.renderParty()),
		m.card("Now playing", m.renderMusic()),
		m.card("Power", m.renderPower(view)),
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.renderFooter()
	if m.height > 0 {
		gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
		if gap > 0 {
			body += strings.Repeat("\n", gap)
		}
	}
	return body + "\n" + footer
}

// renderHeader renders the logo, network badges, and mode chip.
func (m Model) renderHeader(view panel.StatusView) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	network := bg.Dot(view.DotColor) + bg.Spaces(1) + bg.Render(view.Network, styles.Text)
	if view.Fallback {
		network = lipgloss.NewStyle().Background(lipgloss.Color(view.GlowColor)).Render(" ") +
			bg.Dot(view.DotColor) + bg.Spaces(1) + bg.Render(view.Network, styles.WarningText)
	}

	parts := []string{
		bg.Render("lumen", styles.Logo),
		network,
		bg.Render(view.IPBadge, styles.MutedText),
		bg.Render(view.ModeChip, styles.AccentText),
	}
	if view.Offline {
		parts = append(parts, bg.Render("OFFLINE", styles.DangerText))
		if m.snapshot.LastError != nil {
			parts = append(parts, bg.Render(truncate(m.snapshot.LastError.Error(), 40), styles.FaintText))
		}
	} else if !m.snapshot.HasStatus {
		parts = append(parts, bg.Render("connecting...", styles.WarningText))
	}

	return styles.Header.Width(max(m.width, 1)).Render(bg.Join(parts, 2))
}

// renderModes renders one button per mode, highlighting the active one.
func (m Model) renderModes(view panel.StatusView) string {
	styles := m.theme.Styles()
	compact := m.width > 0 && m.width < LayoutCompactWidth

	buttons := make([]string, 0, len(device.Modes))
	for i, mode := range device.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode.Label())
		if compact {
			label = fmt.Sprintf("%d %s", i+1, shortModeLabel(mode))
		}
		if mode == view.Active {
			buttons = append(buttons, styles.ModeStyle(mode).Render(label))
			continue
		}
		buttons = append(buttons, styles.SurfaceAlt.Foreground(lipgloss.Color(m.theme.Muted)).Padding(0, 1).Render(label))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, joinWith(buttons, " ")...)
	return lipgloss.NewStyle().Padding(1, 1, 0, 1).Render(row)
}

func shortModeLabel(mode device.Mode) string {
	switch mode {
	case device.ModeRemote:
		return "rem"
	case device.ModeKnobs:
		return "knob"
	case device.ModeLTT:
		return "mix"
	case device.ModeParty:
		return "party"
	case device.ModeMusic:
		return "music"
	case device.ModeOff:
		return "off"
	default:
		return string(mode)
	}
}

// renderParty renders the strobe slider and its numeric field.
func (m Model) renderParty() string {
	styles := m.theme.Styles()
	hz, field := panel.PartyInputs(m.partyValue())

	width := max(m.cardWidth()-24, 10)
	pos := (hz - panel.MinPartyHz) / (panel.MaxPartyHz - panel.MinPartyHz)
	marker := int(math.Round(pos * float64(width-1)))

	var track strings.Builder
	for i := range width {
		switch {
		case i == marker:
			track.WriteString(styles.AccentText.Bold(true).Render("●"))
		case i < marker:
			track.WriteString(styles.AccentText.Render("━"))
		default:
			track.WriteString(styles.FaintText.Render("─"))
		}
	}

	value := styles.Text.Bold(true).Render(field + " Hz")
	if m.editingParty {
		value = styles.Selected.Padding(0, 1).Render(m.partyInput.View()) + styles.Text.Render(" Hz")
	}

	return fmt.Sprintf("%s %s %s  %s",
		styles.MutedText.Render(fmt.Sprintf("%.2f", panel.MinPartyHz)),
		track.String(),
		styles.MutedText.Render(fmt.Sprintf("%.2f", panel.MaxPartyHz)),
		value,
	)
}

// renderMusic renders the now-playing card.
func (m Model) renderMusic() string {
	styles := m.theme.Styles()
	view := panel.NewMusicView(m.snapshot.Music, m.snapshot.HasMusic)

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Width(8)
	lines := []string{
		label.Render("Track") + styles.Text.Bold(true).Render(view.Title),
		label.Render("Artist") + styles.Text.Render(view.Artist),
		label.Render("Next") + styles.MutedText.Render(view.Next),
		label.Render("BPM") + styles.AccentText.Render(view.BPM),
		label.Render("") + styles.MutedText.Render(view.Now) + " " +
			m.progress.ViewAs(view.Fraction) + " " + styles.MutedText.Render(view.Total),
	}
	if view.AlbumArt != "" {
		lines = append(lines, label.Render("Art")+styles.FaintText.Render(truncate(view.AlbumArt, m.cardWidth()-14)))
	}
	if m.snapshot.MusicError != nil && !m.snapshot.HasMusic {
		lines = append(lines, styles.FaintText.Render("music unavailable"))
	}
	return strings.Join(lines, "\n")
}

// renderPower renders the lock state and the available power action.
func (m Model) renderPower(view panel.StatusView) string {
	styles := m.theme.Styles()

	text := styles.SuccessText.Render(view.LockText)
	if view.Unlocked {
		text = styles.WarningText.Bold(true).Render(view.LockText)
	}

	unlock := styles.WarningText.Render("U") + styles.Text.Render(" unlock")
	if view.UnlockDisabled {
		unlock = styles.FaintText.Render("U unlock")
	}
	reset := styles.WarningText.Render("R") + styles.Text.Render(" safe mode")

	return text + "   " + unlock + "  " + reset + "\n" + styles.FaintText.Render(view.Reachable)
}

// renderFooter renders the transient notice or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var content string
	switch {
	case m.notice != "" && m.noticeErr:
		content = bg.Render(m.notice, styles.DangerText)
	case m.notice != "":
		content = bg.Render(m.notice, styles.SuccessText)
	default:
		hints := []string{
			bg.Render("1-6", styles.WarningText) + bg.Spaces(1) + bg.Render("mode", styles.MutedText),
			bg.Render("arrows [ ]", styles.WarningText) + bg.Spaces(1) + bg.Render("color", styles.MutedText),
			bg.Render("+/- p", styles.WarningText) + bg.Spaces(1) + bg.Render("strobe", styles.MutedText),
			bg.Render("L", styles.WarningText) + bg.Spaces(1) + bg.Render("logs", styles.MutedText),
			bg.Render("?", styles.WarningText) + bg.Spaces(1) + bg.Render("help", styles.MutedText),
			bg.Render("q", styles.WarningText) + bg.Spaces(1) + bg.Render("quit", styles.MutedText),
		}
		content = bg.Join(hints, 3)
	}
	return styles.Footer.Width(max(m.width, 1)).Render(content)
}

// card wraps content in a titled, rounded border.
func (m Model) card(title, content string) string {
	styles := m.theme.Styles()
	heading := styles.AccentText.Bold(true).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 1).
		Width(m.cardWidth()).
		Render(heading + "\n" + content)
}

func joinWith(parts []string, sep string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
