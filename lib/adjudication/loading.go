// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import "sync"

// Indicator counts in-flight fetches. It is active while at least one
// holder has acquired it and not yet released.
type Indicator struct {
	mu       sync.Mutex
	holders  int
	onChange func(active bool)
}

// OnChange registers a callback invoked whenever the indicator turns
// on or off.
func (indicator *Indicator) OnChange(callback func(active bool)) {
	indicator.mu.Lock()
	defer indicator.mu.Unlock()
	indicator.onChange = callback
}

// Acquire marks one fetch in flight and returns the function that
// ends it. The release function is safe to call more than once; only
// the first call counts. Callers defer it so that every exit path
// releases.
func (indicator *Indicator) Acquire() (release func()) {
	indicator.mu.Lock()
	indicator.holders++
	turnedOn := indicator.holders == 1
	callback := indicator.onChange
	indicator.mu.Unlock()

	if turnedOn && callback != nil {
		callback(true)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			indicator.mu.Lock()
			indicator.holders--
			turnedOff := indicator.holders == 0
			callback := indicator.onChange
			indicator.mu.Unlock()

			if turnedOff && callback != nil {
				callback(false)
			}
		})
	}
}

// Active reports whether any fetch is in flight.
func (indicator *Indicator) Active() bool {
	indicator.mu.Lock()
	defer indicator.mu.Unlock()
	return indicator.holders > 0
}
