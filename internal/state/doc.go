// Package state holds the panel's shared lamp and music state.
//
// # Overview
//
// Three producers write into the Store: the status poller, the music poller
// (plus its one-second progress tick), and the user-facing controls (mode
// buttons, picker, party slider, unlock/reset). The UI reads immutable
// snapshots on its own render tick.
//
//	Pollers / controls            UI
//	┌──────────────────┐          ┌──────────────────┐
//	│ UpdateStatus()   │          │                  │
//	│ UpdateMusic()    │ (mutex)  │ store.Snapshot() │
//	│ AdvanceProgress()│─────────→│       ↓          │
//	│ SetMode() ...    │          │   render panel   │
//	└──────────────────┘          └──────────────────┘
//
// # Update Semantics
//
// Status and music payloads replace the previous ones wholesale; there are no
// partial merges. A failed poll keeps the last good payload and records the
// error, so the panel keeps showing something useful while the lamp is
// unreachable:
//
//	store.UpdateStatus(nil, err)
//	→ Status, Mode, Unlocked unchanged
//	→ LastError = err, ConsecutiveFailures++
//
// The current mode has two writers. A status poll overwrites it with whatever
// the lamp reports, and a mode button sets it locally before the request
// completes. Whichever lands last wins until the next poll, which is the
// eventual-consistency contract the panel relies on.
//
// AdvanceProgress moves the playback position forward between music polls and
// clamps at the track duration. The next UpdateMusic resynchronizes it.
//
// # Defensive Copying
//
// Snapshot copies optional pointer fields (partyHz, bpm) and the last error so
// readers can never mutate or race with stored data.
package state
