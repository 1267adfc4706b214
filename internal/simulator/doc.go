// Package simulator serves the lamp's HTTP API from memory so the panel can
// be run and tested without hardware.
//
// It mirrors the firmware: /postRGB clamps each channel to 0-255 and forces
// remote mode, /api/party clamps to [0.05, 5] Hz and enters party mode,
// turning the lamp off blanks the LEDs, and /api/mode accepts "remote" and
// "sleep" as aliases. /api/music forwards to the music relay's /playback when
// one is configured and answers 503 otherwise.
package simulator
