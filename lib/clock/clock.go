// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for anything in the adjudicator that waits:
// the flash auto-dismiss timer and request timestamps in logs.
// Production code uses Real(); tests use Fake() and drive time with
// Advance.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f once d has elapsed and returns a Timer that
	// can cancel the pending call. If d <= 0, f runs immediately
	// (in a new goroutine for Real, synchronously for Fake).
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stop func() bool
}

// Stop cancels the pending call. Returns false if the call already
// ran or was already stopped.
func (timer *Timer) Stop() bool { return timer.stop() }
