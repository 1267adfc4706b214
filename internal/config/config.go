package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/lumen/internal/logging"
)

// Config holds the panel's settings.
type Config struct {
	DeviceAddr   string
	StatusPoll   time.Duration
	MusicPoll    time.Duration
	LogFile      string
	LogLevel     string
	PrefsPath    string
	DiagLogLines int
}

const (
	defaultConfigPath   = "~/.config/lumen/config.toml"
	defaultPrefsPath    = "~/.config/lumen/prefs.toml"
	defaultLogFile      = "~/.local/state/lumen/panel.log"
	defaultDeviceAddr   = "192.168.4.1"
	defaultStatusPoll   = 6 * time.Second
	defaultMusicPoll    = 4 * time.Second
	defaultDiagLogLines = 500
)

// Default returns the panel config used when no file exists.
func Default() Config {
	return Config{
		DeviceAddr:   defaultDeviceAddr,
		StatusPoll:   defaultStatusPoll,
		MusicPoll:    defaultMusicPoll,
		LogFile:      mustExpand(defaultLogFile),
		LogLevel:     "info",
		PrefsPath:    mustExpand(defaultPrefsPath),
		DiagLogLines: defaultDiagLogLines,
	}
}

// Load locates and parses the panel config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes == nil {
		return cfg, nil
	}

	var raw struct {
		DeviceAddr        string `toml:"device_addr"`
		StatusPollSeconds int    `toml:"status_poll_seconds"`
		MusicPollSeconds  int    `toml:"music_poll_seconds"`
		LogFile           string `toml:"log_file"`
		LogLevel          string `toml:"log_level"`
		PrefsFile         string `toml:"prefs_file"`
		DiagLogLines      int    `toml:"diag_log_lines"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.DeviceAddr); v != "" {
		cfg.DeviceAddr = v
	}
	if raw.StatusPollSeconds < 0 || raw.MusicPollSeconds < 0 {
		return Config{}, fmt.Errorf("poll intervals must be positive")
	}
	if raw.StatusPollSeconds > 0 {
		cfg.StatusPoll = time.Duration(raw.StatusPollSeconds) * time.Second
	}
	if raw.MusicPollSeconds > 0 {
		cfg.MusicPoll = time.Duration(raw.MusicPollSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.PrefsFile); v != "" {
		cfg.PrefsPath = mustExpand(v)
	}
	if raw.DiagLogLines > 0 {
		cfg.DiagLogLines = raw.DiagLogLines
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		if _, err := logging.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("log_level: %w", err)
		}
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// readFile returns nil, nil when the file does not exist.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if bytes == nil {
		bytes = []byte{}
	}
	return bytes, nil
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(fallback)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
