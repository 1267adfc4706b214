package panel

import (
	"fmt"
	"math"
	"strconv"

	"github.com/five82/lumen/internal/device"
	"github.com/five82/lumen/internal/state"
)

// Network indicator colors: home Wi-Fi is cyan, the fallback hotspot amber.
const (
	HomeDotColor      = "#6de1ff"
	FallbackDotColor  = "#ffa45c"
	HomeGlowColor     = "#1b3a42"
	FallbackGlowColor = "#42301f"
)

const placeholder = "--"

// StatusView is the display-ready form of the lamp status.
type StatusView struct {
	Active         device.Mode
	ModeChip       string
	IPBadge        string
	Network        string
	Reachable      string
	Fallback       bool
	DotColor       string
	GlowColor      string
	Unlocked       bool
	LockText       string
	UnlockDisabled bool
	SliderValue    float64
	PartyField     string
	Offline        bool
}

// NewStatusView derives every status widget from a snapshot.
func NewStatusView(snap state.Snapshot) StatusView {
	v := StatusView{
		Active:   snap.Mode,
		ModeChip: "Mode: " + snap.Mode.Label(),
		Fallback: snap.Status.APFallback,
		Unlocked: snap.Unlocked,
		Offline:  snap.IsOffline(),
	}

	ip := snap.Status.IP
	if ip == "" {
		v.IPBadge = "IP - unknown"
		v.Reachable = "Reachable at static IP"
	} else {
		v.IPBadge = "IP - " + ip
		v.Reachable = "Reachable at " + ip
	}

	if v.Fallback {
		v.Network = "Network - fallback hotspot"
		v.DotColor, v.GlowColor = FallbackDotColor, FallbackGlowColor
	} else {
		v.Network = "Network - home Wi-Fi"
		v.DotColor, v.GlowColor = HomeDotColor, HomeGlowColor
	}

	if snap.Unlocked {
		v.LockText = "Full power unlocked"
	} else {
		v.LockText = "Safe power mode"
	}
	v.UnlockDisabled = snap.Unlocked

	v.SliderValue, v.PartyField = PartyInputs(snap.PartyHz)
	return v
}

// PartyInputs returns the slider value and field text for hz after clamping.
func PartyInputs(hz float64) (float64, string) {
	clamped := ClampPartyHz(hz)
	return clamped, strconv.FormatFloat(clamped, 'f', 1, 64)
}

// MusicView is the display-ready form of the now-playing payload.
type MusicView struct {
	Title    string
	Artist   string
	Next     string
	BPM      string
	AlbumArt string
	Fraction float64 // 0..1
	Fill     string  // CSS-style width, e.g. "25%"
	Now      string
	Total    string
}

// NewMusicView derives the music widgets. ok=false renders placeholders.
func NewMusicView(m device.Music, ok bool) MusicView {
	if !ok {
		m = device.Music{}
	}
	v := MusicView{
		Title:    orPlaceholder(m.Track),
		Artist:   orPlaceholder(m.Artist),
		Next:     placeholder,
		BPM:      placeholder,
		AlbumArt: m.AlbumArt,
	}
	if m.NextTrack != "" {
		v.Next = m.NextTrack + " — " + m.NextArtist
	}
	if m.BPM != nil && *m.BPM != 0 {
		v.BPM = strconv.FormatFloat(*m.BPM, 'f', 1, 64)
	}

	duration := max(m.DurationMs, 0)
	progress := min(max(m.ProgressMs, 0), duration)
	if duration > 0 {
		v.Fraction = math.Min(1, float64(progress)/float64(duration))
	}
	v.Fill = strconv.FormatFloat(v.Fraction*100, 'f', -1, 64) + "%"
	v.Now = FormatTime(progress)
	v.Total = FormatTime(duration)
	return v
}

// FormatTime renders milliseconds as m:ss.
func FormatTime(ms int) string {
	if ms <= 0 {
		return "0:00"
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
