package simulator

import (
	"math"
	"strings"
	"sync"

	"github.com/five82/lumen/internal/device"
)

// PWM resolution of the lamp's LED driver.
const maxPWM = 2047

// Party strobe bounds, matching the firmware.
const (
	minPartyHz     = 0.05
	maxPartyHz     = 5.0
	defaultPartyHz = 0.6
)

// scenes are preset PWM levels for /api/scene.
var scenes = map[string][3]int{
	"sunset": {1900, 750, 180},
	"ocean":  {250, 1100, 1900},
	"forest": {250, 1600, 450},
	"focus":  {1450, 1500, 1400},
	"calm":   {900, 1050, 1200},
	"off":    {0, 0, 0},
}

// State is a copy of the simulated lamp's state.
type State struct {
	Mode       device.Mode
	IP         string
	APFallback bool
	Unlocked   bool
	PartyHz    float64
	PWM        [3]int
}

// Lamp holds the simulated device state.
type Lamp struct {
	mu    sync.RWMutex
	state State
}

// NewLamp returns a lamp in remote mode, locked, with the default party rate.
func NewLamp(ip string, apFallback bool) *Lamp {
	return &Lamp{state: State{
		Mode:       device.ModeRemote,
		IP:         ip,
		APFallback: apFallback,
		PartyHz:    defaultPartyHz,
	}}
}

// Snapshot returns the current state.
func (l *Lamp) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// SetMode applies a mode. Turning the lamp off also blanks the LEDs.
func (l *Lamp) SetMode(mode device.Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Mode = mode
	if mode == device.ModeOff {
		l.state.PWM = [3]int{}
	}
}

// SetColor drives the LEDs directly and forces remote mode so the knobs do
// not override the color.
func (l *Lamp) SetColor(r, g, b int) [3]int {
	pwm := [3]int{toPWM(r), toPWM(g), toPWM(b)}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.PWM = pwm
	l.state.Mode = device.ModeRemote
	return pwm
}

// SetPartyHz clamps and stores the strobe rate and enters party mode.
func (l *Lamp) SetPartyHz(hz float64) float64 {
	hz = math.Min(math.Max(hz, minPartyHz), maxPartyHz)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.PartyHz = hz
	l.state.Mode = device.ModeParty
	return hz
}

// ApplyScene loads a preset. It reports false for unknown scenes.
func (l *Lamp) ApplyScene(name string) bool {
	pwm, ok := scenes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.PWM = pwm
	l.state.Mode = device.ModeRemote
	return true
}

// SetUnlocked switches between full power and safe power.
func (l *Lamp) SetUnlocked(unlocked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Unlocked = unlocked
}

func toPWM(v int) int {
	v = min(max(v, 0), 255)
	return v * maxPWM / 255
}

// parseMode accepts the panel's mode names plus the firmware aliases.
func parseMode(raw string) (device.Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remote":
		return device.ModeRemote, true
	case "sleep":
		return device.ModeOff, true
	}
	return device.ParseMode(raw)
}
