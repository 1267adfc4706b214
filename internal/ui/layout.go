package ui

import "time"

// Widths used by the responsive layout.
const (
	// LayoutCompactWidth is the threshold below which cards stack without
	// side padding and the mode row uses short labels.
	LayoutCompactWidth = 72

	// CardMaxWidth caps the width of each control card.
	CardMaxWidth = 76

	// ProgressMinWidth is the narrowest music progress bar.
	ProgressMinWidth = 10
)

// Picker and slider steps.
const (
	HueStep        = 5.0
	SaturationStep = 0.05
	ValueStep      = 0.05
	PartyStep      = 0.05
)

// Timing constants.
const (
	// DefaultUIInterval is how often the model re-reads the store.
	DefaultUIInterval = 250 * time.Millisecond

	// ActionTimeout bounds mode, unlock and reset requests made from keys.
	ActionTimeout = 5 * time.Second

	// NoticeTTL is how long footer notices stay visible.
	NoticeTTL = 4 * time.Second

	// PartyDraftTTL is how long a local slider value wins over the store
	// while the debounced update is in flight.
	PartyDraftTTL = time.Second
)

// DefaultLogLines is the diagnostics buffer size when none is configured.
const DefaultLogLines = 500
