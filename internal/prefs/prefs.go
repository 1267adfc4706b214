// Package prefs persists lumen panel preferences: the UI theme and the last
// color picked. Preferences are stored in ~/.config/lumen/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for the panel.
type Prefs struct {
	Theme string `toml:"theme"`
	// Color is the picker's last color as #rrggbb.
	Color string `toml:"color"`
}

const (
	defaultPrefsPath = "~/.config/lumen/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultColor     = "#ffffff"
)

// Default returns the preferences used when nothing is saved.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Color: defaultColor}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path. A missing file yields the
// defaults. An unreadable or malformed file also yields the defaults, along
// with an error describing the problem.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), fmt.Errorf("resolve path: %w", err)
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read prefs: %w", err)
	}

	var prefs Prefs
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), fmt.Errorf("parse prefs %s: %w", resolved, err)
	}

	prefs.Theme = strings.TrimSpace(prefs.Theme)
	if prefs.Theme == "" {
		prefs.Theme = defaultTheme
	}
	prefs.Color = normalizeColor(prefs.Color)
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	p.Color = normalizeColor(p.Color)
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// normalizeColor returns a lowercase #rrggbb, or the default for anything
// that does not parse.
func normalizeColor(raw string) string {
	c, err := colorful.Hex(strings.TrimSpace(raw))
	if err != nil {
		return defaultColor
	}
	return c.Hex()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
