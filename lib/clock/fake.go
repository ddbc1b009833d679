// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock starting at initial. Time stands still
// until Advance is called.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock. AfterFunc callbacks run
// synchronously inside Advance, in deadline order. A callback must
// not call Advance.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	deadline time.Time
	callback func()
	done     bool
}

// Now returns the current fake time.
func (fake *FakeClock) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.current
}

// AfterFunc registers f to run once the clock has advanced by d.
func (fake *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	fake.mu.Lock()
	timer := &fakeTimer{deadline: fake.current.Add(d), callback: f}
	fake.pending = append(fake.pending, timer)
	fake.mu.Unlock()

	return &Timer{stop: func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		if timer.done {
			return false
		}
		timer.done = true
		return true
	}}
}

// Advance moves the clock forward by d and runs every callback whose
// deadline is now due.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.current = fake.current.Add(d)
	target := fake.current

	var due, remaining []*fakeTimer
	for _, timer := range fake.pending {
		switch {
		case timer.done:
		case !timer.deadline.After(target):
			timer.done = true
			due = append(due, timer)
		default:
			remaining = append(remaining, timer)
		}
	}
	fake.pending = remaining
	fake.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, timer := range due {
		timer.callback()
	}
}

// PendingCount returns the number of timers that have neither fired
// nor been stopped.
func (fake *FakeClock) PendingCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	count := 0
	for _, timer := range fake.pending {
		if !timer.done {
			count++
		}
	}
	return count
}
