package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks before a power change. onConfirm runs only on accept.
type confirmModal struct {
	title     string
	body      string
	onConfirm func() tea.Cmd
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm):
		var cmd tea.Cmd
		if c.onConfirm != nil {
			cmd = c.onConfirm()
		}
		return c, cmd, true
	case key.Matches(km, keys.Escape), km.String() == "n", key.Matches(km, keys.Quit):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	hint := styles.WarningText.Render("enter/y") + styles.MutedText.Render(" confirm   ") +
		styles.WarningText.Render("esc/n") + styles.MutedText.Render(" cancel")
	return placeModal(theme, width, height, theme.Warning, c.title, c.body, hint)
}

// alertModal reports a failed action until dismissed.
type alertModal struct {
	title string
	body  string
}

func (a alertModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm), key.Matches(km, keys.Escape), km.String() == " ":
		return a, nil, true
	case key.Matches(km, keys.Quit):
		return a, nil, true
	}
	return a, nil, false
}

func (a alertModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	hint := styles.WarningText.Render("enter") + styles.MutedText.Render(" dismiss")
	return placeModal(theme, width, height, theme.Danger, a.title, a.body, hint)
}

func placeModal(theme Theme, width, height int, accent, title, body, hint string) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(body))
	b.WriteString("\n\n")
	b.WriteString(hint)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(accent)).
		Padding(1, 2).
		Width(min(48, max(width-4, 20))).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
