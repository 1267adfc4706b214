// Package ui provides the terminal control panel for a lumen lamp.
//
// The UI is a Bubble Tea program. It renders a state.Store snapshot that the
// panel controller keeps current and forwards user intent back to the
// controller through the Panel interface, so every network call and timer
// lives outside this package.
//
// # Views
//
//   - Controls: header with network and mode badges, the six mode buttons,
//     an HSV color picker, the party strobe slider and field, the now playing
//     card, and the power lock card
//   - Diagnostics: a tail of the panel's own JSON log file, rendered through
//     logtail, with follow mode and a warnings-only filter
//
// Help, confirmation and alert dialogs are drawn as centered overlays.
//
// # Key Bindings
//
//   - 1-6: Remote, manual knobs, warm/cool mix, party, music, lights off
//   - left/right: Hue
//   - up/down: Brightness
//   - [ and ]: Saturation
//   - + and -: Party strobe rate
//   - p: Type a strobe rate (enter applies, esc cancels)
//   - U: Unlock full power (asks first)
//   - R: Return to safe power mode (asks first)
//   - L: Toggle the diagnostics view
//   - T: Cycle theme
//   - h or ?: Toggle help
//   - q or Ctrl+C: Quit
//
// The theme and the last picked color are saved to the preferences file when
// the theme changes and on quit.
package ui
