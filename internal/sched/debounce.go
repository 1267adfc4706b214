package sched

import (
	"sync"
	"time"
)

// Debounce wraps fn so that bursts of calls collapse into one.
//
// Each call cancels any pending delayed run. If at least minInterval has
// passed since fn last executed, the call runs fn immediately on the caller's
// goroutine; otherwise fn runs once after wait with the newest argument, on a
// timer goroutine. The first call of a burst is therefore never delayed.
func Debounce[T any](fn func(T), wait, minInterval time.Duration) func(T) {
	var (
		mu      sync.Mutex
		pending *time.Timer
		lastRun time.Time
	)

	return func(arg T) {
		mu.Lock()
		if pending != nil {
			pending.Stop()
			pending = nil
		}

		now := time.Now()
		if lastRun.IsZero() || now.Sub(lastRun) >= minInterval {
			lastRun = now
			mu.Unlock()
			fn(arg)
			return
		}

		var timer *time.Timer
		timer = time.AfterFunc(wait, func() {
			mu.Lock()
			if pending != timer {
				// superseded by a later call
				mu.Unlock()
				return
			}
			pending = nil
			lastRun = time.Now()
			mu.Unlock()
			fn(arg)
		})
		pending = timer
		mu.Unlock()
	}
}
