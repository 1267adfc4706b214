package config

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/lumen/internal/logging"
)

// Relay holds the music relay's settings. Credentials have no defaults.
type Relay struct {
	Listen       string
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURL  string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
	LogLevel     string
}

const (
	defaultRelayConfigPath = "~/.config/lumen/relay.toml"
	defaultRelayListen     = ":3000"
)

// Environment variables that override relay.toml.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRefreshToken = "SPOTIFY_REFRESH_TOKEN"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
	EnvPort         = "PORT"
	EnvLogLevel     = "LUMEN_LOG_LEVEL"
)

// LoadRelay reads relay.toml (optional) and applies environment overrides
// from getenv. The result is validated.
func LoadRelay(path string, getenv func(string) string) (Relay, error) {
	resolved, err := resolvePath(path, defaultRelayConfigPath)
	if err != nil {
		return Relay{}, err
	}

	cfg := Relay{Listen: defaultRelayListen, LogLevel: "info"}
	bytes, err := readFile(resolved)
	if err != nil {
		return Relay{}, err
	}
	if bytes != nil {
		var raw struct {
			Listen       string `toml:"listen"`
			ClientID     string `toml:"client_id"`
			ClientSecret string `toml:"client_secret"`
			RefreshToken string `toml:"refresh_token"`
			RedirectURL  string `toml:"redirect_url"`
			APIBaseURL   string `toml:"api_base_url"`
			AuthURL      string `toml:"auth_url"`
			TokenURL     string `toml:"token_url"`
			LogLevel     string `toml:"log_level"`
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Relay{}, fmt.Errorf("parse relay config: %w", err)
		}
		setIf(&cfg.Listen, raw.Listen)
		setIf(&cfg.ClientID, raw.ClientID)
		setIf(&cfg.ClientSecret, raw.ClientSecret)
		setIf(&cfg.RefreshToken, raw.RefreshToken)
		setIf(&cfg.RedirectURL, raw.RedirectURL)
		setIf(&cfg.APIBaseURL, raw.APIBaseURL)
		setIf(&cfg.AuthURL, raw.AuthURL)
		setIf(&cfg.TokenURL, raw.TokenURL)
		setIf(&cfg.LogLevel, raw.LogLevel)
	}

	if getenv != nil {
		setIf(&cfg.ClientID, getenv(EnvClientID))
		setIf(&cfg.ClientSecret, getenv(EnvClientSecret))
		setIf(&cfg.RefreshToken, getenv(EnvRefreshToken))
		setIf(&cfg.RedirectURL, getenv(EnvRedirectURI))
		setIf(&cfg.LogLevel, getenv(EnvLogLevel))
		if port := strings.TrimSpace(getenv(EnvPort)); port != "" {
			if strings.Contains(port, ":") {
				cfg.Listen = port
			} else {
				cfg.Listen = ":" + port
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Relay{}, err
	}
	return cfg, nil
}

// Validate reports missing credentials and bad values. A missing refresh
// token is allowed: the relay then only serves the auth helper.
func (r Relay) Validate() error {
	var missing []string
	if r.ClientID == "" {
		missing = append(missing, "client_id ("+EnvClientID+")")
	}
	if r.ClientSecret == "" {
		missing = append(missing, "client_secret ("+EnvClientSecret+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("relay config missing %s", strings.Join(missing, ", "))
	}
	if _, err := logging.ParseLevel(r.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// HasRefreshToken reports whether /playback can be served.
func (r Relay) HasRefreshToken() bool {
	return r.RefreshToken != ""
}

func setIf(dst *string, v string) {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		*dst = trimmed
	}
}
