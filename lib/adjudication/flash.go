// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"errors"
	"sync"
	"time"

	"github.com/bureau-foundation/adjudicator/lib/clock"
)

// SuccessDismissDelay is how long a success message stays visible.
const SuccessDismissDelay = 5 * time.Second

// FlashKind classifies a flash message.
type FlashKind int

const (
	FlashInfo FlashKind = iota
	FlashSuccess
	FlashError
)

func (kind FlashKind) String() string {
	switch kind {
	case FlashInfo:
		return "info"
	case FlashSuccess:
		return "success"
	case FlashError:
		return "error"
	default:
		return "unknown"
	}
}

// FlashMessage is the content of the flash slot.
type FlashMessage struct {
	Kind FlashKind
	Text string
}

// Flash is a single-slot notification channel. Each Show replaces
// whatever is visible. Success messages clear themselves after
// SuccessDismissDelay; info and error messages stay until the next
// Show or Clear.
type Flash struct {
	clock clock.Clock

	mu       sync.Mutex
	current  FlashMessage
	visible  bool
	sequence uint64
	timer    *clock.Timer
	onChange func(message FlashMessage, visible bool)
}

// NewFlash returns an empty Flash using clk for the dismiss timer.
func NewFlash(clk clock.Clock) *Flash {
	if clk == nil {
		clk = clock.Real()
	}
	return &Flash{clock: clk}
}

// OnChange registers a callback invoked after every change to the
// slot, including auto-dismissal. The callback runs without the
// Flash's lock held and may be called from a timer goroutine, so
// callbacks for concurrent changes can arrive out of order. Treat the
// call as a notification and read Current for the slot's state.
func (flash *Flash) OnChange(callback func(message FlashMessage, visible bool)) {
	flash.mu.Lock()
	defer flash.mu.Unlock()
	flash.onChange = callback
}

// Show replaces the visible message.
func (flash *Flash) Show(kind FlashKind, text string) {
	flash.mu.Lock()
	if flash.timer != nil {
		flash.timer.Stop()
		flash.timer = nil
	}
	flash.sequence++
	flash.current = FlashMessage{Kind: kind, Text: text}
	flash.visible = true
	sequence := flash.sequence
	callback := flash.onChange
	flash.mu.Unlock()

	if kind == FlashSuccess {
		timer := flash.clock.AfterFunc(SuccessDismissDelay, func() { flash.dismiss(sequence) })
		flash.mu.Lock()
		if flash.sequence == sequence {
			flash.timer = timer
		}
		flash.mu.Unlock()
	}

	if callback != nil {
		callback(FlashMessage{Kind: kind, Text: text}, true)
	}
}

// Info shows an info message.
func (flash *Flash) Info(text string) { flash.Show(FlashInfo, text) }

// Success shows a success message that dismisses itself.
func (flash *Flash) Success(text string) { flash.Show(FlashSuccess, text) }

// Error shows err's user-facing text and returns err unchanged.
// ErrSuperseded and ErrDeclined are not shown, since neither is a
// failure the user needs to hear about. A nil err is a no-op.
func (flash *Flash) Error(err error) error {
	if err == nil || errors.Is(err, ErrSuperseded) || errors.Is(err, ErrDeclined) {
		return err
	}
	flash.Show(FlashError, FlashText(err))
	return err
}

// Clear empties the slot.
func (flash *Flash) Clear() {
	flash.mu.Lock()
	flash.sequence++
	if flash.timer != nil {
		flash.timer.Stop()
		flash.timer = nil
	}
	wasVisible := flash.visible
	flash.visible = false
	callback := flash.onChange
	message := flash.current
	flash.mu.Unlock()

	if wasVisible && callback != nil {
		callback(message, false)
	}
}

// Current returns the visible message, if any.
func (flash *Flash) Current() (FlashMessage, bool) {
	flash.mu.Lock()
	defer flash.mu.Unlock()
	return flash.current, flash.visible
}

// dismiss clears the slot if it still shows the message with the
// given sequence number.
func (flash *Flash) dismiss(sequence uint64) {
	flash.mu.Lock()
	if flash.sequence != sequence || !flash.visible {
		flash.mu.Unlock()
		return
	}
	flash.visible = false
	flash.timer = nil
	callback := flash.onChange
	message := flash.current
	flash.mu.Unlock()

	if callback != nil {
		callback(message, false)
	}
}
