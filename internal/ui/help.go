package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Modes",
			items: []helpItem{
				{"1-6", "Remote/Knobs/Mix/Party/Music/Off"},
			},
		},
		{
			title: "Color",
			items: []helpItem{
				{"left/right", "Hue"},
				{"up/down", "Brightness"},
				{"[ ]", "Saturation"},
			},
		},
		{
			title: "Party",
			items: []helpItem{
				{"+/-", "Strobe faster/slower"},
				{"p", "Type strobe Hz"},
			},
		},
		{
			title: "Power",
			items: []helpItem{
				{"U", "Unlock full power"},
				{"R", "Safe power mode"},
			},
		},
		{
			title: "Diagnostics",
			items: []helpItem{
				{"L", "Toggle log view"},
				{"j/k", "Scroll"},
				{"Space", "Toggle follow mode"},
				{"W", "Warnings only"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(48)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
