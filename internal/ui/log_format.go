package ui

import (
	"strings"

	"github.com/five82/lumen/internal/logtail"
)

// formatLogEntries renders entries for the diagnostics view. With warnOnly
// set, entries below warn are dropped.
func formatLogEntries(entries []logtail.Entry, styles Styles, warnOnly bool) []string {
	if len(entries) == 0 {
		return nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if warnOnly && !e.AtLeast("warn") {
			continue
		}
		lines = append(lines, formatLogEntry(e, styles))
	}
	return lines
}

// formatLogEntry colors the level column of one entry.
func formatLogEntry(e logtail.Entry, styles Styles) string {
	line := e.Format()
	if e.Raw != "" {
		return styles.MutedText.Render(line)
	}

	level := strings.ToUpper(strings.TrimSpace(e.Level))
	idx := strings.Index(line, level)
	if level == "" || idx < 0 {
		return styles.Text.Render(line)
	}

	levelStyle := styles.InfoText
	switch strings.ToLower(level) {
	case "debug":
		levelStyle = styles.FaintText
	case "warn":
		levelStyle = styles.WarningText
	case "error", "dpanic", "panic", "fatal":
		levelStyle = styles.DangerText
	}

	prefix := line[:idx]
	rest := line[idx+len(level):]
	subject := ""
	if e.Logger != "" {
		subject = styles.AccentText.Render("["+e.Logger+"]") + " "
	}
	return styles.FaintText.Render(prefix) + levelStyle.Render(level) + " " + subject +
		styles.Text.Render(strings.TrimLeft(rest, " "))
}
