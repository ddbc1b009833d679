// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Types that schedule work hold a Clock field instead of calling
// time.AfterFunc directly:
//
//	flash := adjudication.NewFlash(clock.Real())
//
// Tests construct a FakeClock, register timers through the code under
// test, and fire them deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	flash := adjudication.NewFlash(fake)
//	flash.Show(adjudication.FlashSuccess, "Relationship added.")
//	fake.Advance(5 * time.Second) // flash is now empty
package clock
