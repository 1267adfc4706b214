package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/lumen/internal/device"
)

// Snapshot represents the latest panel state available to the UI.
type Snapshot struct {
	Status              device.Status
	HasStatus           bool
	Mode                device.Mode
	Unlocked            bool
	PartyHz             float64
	Color               device.RGB
	Music               device.Music
	HasMusic            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive status poll failures
	MusicError          error
}

// IsOffline returns true when the lamp has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates from pollers, controls and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore returns a store seeded with the lamp's power-on defaults.
func NewStore(mode device.Mode, partyHz float64) *Store {
	return &Store{snapshot: Snapshot{Mode: mode, PartyHz: partyHz}}
}

// UpdateStatus records a status poll. When err is non-nil the previous data
// is kept but the error is recorded for visibility. A status without a mode
// leaves the current mode untouched.
func (s *Store) UpdateStatus(status *device.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	if status == nil {
		return
	}

	s.snapshot.Status = *status
	if status.PartyHz != nil {
		hz := *status.PartyHz
		s.snapshot.Status.PartyHz = &hz
	}
	s.snapshot.HasStatus = true
	if status.Mode != "" {
		s.snapshot.Mode = status.Mode
	}
	s.snapshot.Unlocked = status.Unlocked
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// UpdateMusic replaces the now-playing payload wholesale. On error the
// previous payload is kept.
func (s *Store) UpdateMusic(music *device.Music, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.MusicError = err
		return
	}
	if music == nil {
		return
	}
	s.snapshot.Music = cloneMusic(*music)
	s.snapshot.HasMusic = true
	s.snapshot.MusicError = nil
}

// AdvanceProgress moves the local playback position forward by step, clamped
// to the track duration. It reports whether anything changed.
func (s *Store) AdvanceProgress(step time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &s.snapshot.Music
	if !s.snapshot.HasMusic || m.DurationMs <= 0 {
		return false
	}
	next := m.ProgressMs + int(step/time.Millisecond)
	if next > m.DurationMs {
		next = m.DurationMs
	}
	if next == m.ProgressMs {
		return false
	}
	m.ProgressMs = next
	return true
}

// Mode returns the current mode without copying the whole snapshot.
func (s *Store) Mode() device.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Mode
}

// SetMode records a locally initiated mode switch.
func (s *Store) SetMode(mode device.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Mode = mode
}

// SetUnlocked records a confirmed lock-state change.
func (s *Store) SetUnlocked(unlocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Unlocked = unlocked
}

// SetPartyHz records the value shown by the party slider and field.
func (s *Store) SetPartyHz(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.PartyHz = hz
}

// SetColor records the most recently accepted picker color.
func (s *Store) SetColor(c device.RGB) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Color = c
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Music = cloneMusic(s.snapshot.Music)
	if s.snapshot.Status.PartyHz != nil {
		hz := *s.snapshot.Status.PartyHz
		snap.Status.PartyHz = &hz
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneMusic(m device.Music) device.Music {
	if m.BPM != nil {
		bpm := *m.BPM
		m.BPM = &bpm
	}
	return m
}
