package ui

import (
	"strings"
	"testing"

	"github.com/five82/lumen/internal/logtail"
)

func TestFormatLogEntry(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	e := logtail.Entry{Level: "warn", Logger: "panel", Message: "status check failed"}

	got := formatLogEntry(e, styles)
	if !strings.Contains(got, "WARN") || !strings.Contains(got, "[panel]") || !strings.Contains(got, "status check failed") {
		t.Fatalf("formatLogEntry = %q", got)
	}
}

func TestFormatLogEntryRaw(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	got := formatLogEntry(logtail.Entry{Raw: "panic: boom"}, styles)
	if !strings.Contains(got, "panic: boom") {
		t.Fatalf("formatLogEntry raw = %q", got)
	}
}

func TestFormatLogEntriesWarnOnly(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	entries := []logtail.Entry{
		{Level: "info", Message: "mode changed"},
		{Level: "warn", Message: "failed to set party Hz"},
		{Level: "error", Message: "unlock failed"},
		{Raw: "not json"},
	}

	if got := formatLogEntries(entries, styles, false); len(got) != 4 {
		t.Fatalf("all levels = %d lines, want 4", len(got))
	}
	got := formatLogEntries(entries, styles, true)
	if len(got) != 3 {
		t.Fatalf("warn only = %d lines, want 3", len(got))
	}
	if strings.Contains(strings.Join(got, "\n"), "mode changed") {
		t.Fatalf("info entry leaked through filter: %v", got)
	}
	if formatLogEntries(nil, styles, false) != nil {
		t.Fatalf("expected nil for no entries")
	}
}
