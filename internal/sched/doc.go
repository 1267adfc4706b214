// Package sched holds the two timing primitives the panel is built from.
//
// Debounce collapses bursts of calls (color picker drags, party slider
// scrubbing) into a leading call plus one trailing call carrying the newest
// argument. A call arriving after the minimum interval runs immediately so the
// first interaction of a burst never feels delayed.
//
// Task is a cancellable periodic job with an explicit Start/Stop lifecycle.
// Start is idempotent, which lets callers "ensure running" from any code path
// without tracking timer handles.
package sched
