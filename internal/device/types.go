package device

import (
	"encoding/json"
	"strings"
)

// Mode is the lamp's operating behavior.
type Mode string

const (
	ModeRemote Mode = "wifi"
	ModeKnobs  Mode = "rgb"
	ModeLTT    Mode = "ltt"
	ModeParty  Mode = "party"
	ModeMusic  Mode = "music"
	ModeOff    Mode = "off"
)

// Modes lists every mode in button order.
var Modes = []Mode{ModeRemote, ModeKnobs, ModeLTT, ModeParty, ModeMusic, ModeOff}

// ParseMode normalizes a mode string. Unknown values are reported with ok=false.
func ParseMode(value string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return m, false
}

// Label returns the text shown on the mode chip.
func (m Mode) Label() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeKnobs:
		return "manual knobs"
	case ModeLTT:
		return "warm/cool mix"
	case ModeParty:
		return "party mode"
	case ModeMusic:
		return "music visualizer"
	case ModeOff:
		return "lights off"
	default:
		return string(m)
	}
}

// Status mirrors the payload returned by /api/status.
type Status struct {
	Mode       Mode     `json:"mode"`
	IP         string   `json:"ip"`
	APFallback bool     `json:"apFallback"`
	Unlocked   bool     `json:"unlocked"`
	PartyHz    *float64 `json:"partyHz"`
}

// UnmarshalJSON decodes a status payload. A partyHz that is not a JSON
// number leaves PartyHz nil rather than rejecting the whole payload.
func (s *Status) UnmarshalJSON(data []byte) error {
	type plain Status
	var raw struct {
		plain
		PartyHz json.RawMessage `json:"partyHz"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Status(raw.plain)
	s.PartyHz = nil
	var hz *float64
	if len(raw.PartyHz) > 0 && json.Unmarshal(raw.PartyHz, &hz) == nil {
		s.PartyHz = hz
	}
	return nil
}

// Music mirrors the now-playing payload returned by /api/music and by the
// relay's /playback endpoint.
type Music struct {
	Track      string   `json:"track"`
	Artist     string   `json:"artist"`
	AlbumArt   string   `json:"albumArt"`
	DurationMs int      `json:"durationMs"`
	ProgressMs int      `json:"progressMs"`
	BPM        *float64 `json:"bpm"`
	NextTrack  string   `json:"nextTrack"`
	NextArtist string   `json:"nextArtist"`
}

// RGB is an 8-bit color sample.
type RGB struct {
	R, G, B uint8
}
