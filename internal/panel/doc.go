// Package panel implements the behavior behind the lamp control panel.
//
// # Overview
//
// Controller is the piece the UI talks to. It polls the lamp for status and
// now-playing info, forwards picker colors, switches modes, pushes the party
// strobe frequency, and toggles the power lock. Everything it learns goes into
// a state.Store; the UI only reads snapshots from that store.
//
// # Timers
//
//   - status: every 6s, starts immediately
//   - music:  every 4s, starts immediately, ensured running after any
//     successful status fetch or mode change
//   - progress: every 1s, advances the local playback position between music
//     fetches
//
// # Color Dispatch
//
// Picker samples pass through a 180ms debounce into ColorDispatcher, which
// keeps at most one POST in flight. Samples arriving mid-flight overwrite each
// other, so a fast drag never builds a backlog and the last color dragged is
// always the last color sent. The lamp is switched into remote mode before a
// color is sent if it is in any other mode.
//
// # Views
//
// NewStatusView and NewMusicView turn a snapshot into display strings (badges,
// lock text, progress fill, m:ss labels). They hold no state and are safe to
// call from the render loop.
package panel
