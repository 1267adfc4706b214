// Package config loads lumen's TOML configuration files.
//
// # Panel
//
// Load reads ~/.config/lumen/config.toml. A missing file is not an error;
// defaults are used so the panel works out of the box against a lamp at its
// static address.
//
//	device_addr = "192.168.4.1"
//	status_poll_seconds = 6
//	music_poll_seconds = 4
//	log_file = "~/.local/state/lumen/panel.log"
//	log_level = "info"
//	prefs_file = "~/.config/lumen/prefs.toml"
//	diag_log_lines = 500
//
// # Relay
//
// LoadRelay reads ~/.config/lumen/relay.toml (also optional) and then applies
// environment overrides:
//
//	SPOTIFY_CLIENT_ID      client_id
//	SPOTIFY_CLIENT_SECRET  client_secret
//	SPOTIFY_REFRESH_TOKEN  refresh_token
//	SPOTIFY_REDIRECT_URI   redirect_url
//	PORT                   listen (":<port>" unless it names a host)
//	LUMEN_LOG_LEVEL        log_level
//
// Client id and secret are required and have no built-in values. The refresh
// token may be absent; the relay then runs only its auth helper.
//
// Tilde expansion is applied to every path, and empty or whitespace-only
// values fall back to defaults.
package config
