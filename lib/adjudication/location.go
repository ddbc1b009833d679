// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// DefaultPath is the page path locations are rooted at.
const DefaultPath = "adj"

// Location is the session's address: a page path plus query
// parameters, with a navigable history of every pushed state. It
// plays the role a browser URL plays for a page, and is the durable
// encoding of the Selection and both search forms.
//
// Location is safe for concurrent use. Writers merge only the
// parameters they name; concurrent writers to the same parameter are
// last-writer-wins.
type Location struct {
	mu       sync.Mutex
	path     string
	entries  []url.Values
	index    int
	revision uint64
}

// historyMode says how a write lands in the location's history.
type historyMode int

const (
	// pushEntry records the write as a new entry.
	pushEntry historyMode = iota

	// replaceEntry merges the write into the current entry. Loads that
	// render what the current entry already says use it.
	replaceEntry

	// keepEntry leaves the location alone.
	keepEntry
)

// ParseLocation parses an absolute URL, "path?query", "?query", or a
// bare query. An empty path defaults to DefaultPath. The result has a
// single history entry.
func ParseLocation(raw string) (*Location, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing location %q: %w", raw, err)
		}
		raw = parsed.Path + "?" + parsed.RawQuery
	}
	path, query, found := strings.Cut(raw, "?")
	if !found && strings.Contains(raw, "=") {
		path, query = "", raw
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	return NewLocation(path, values), nil
}

// NewLocation returns a Location at path with the given initial
// parameters.
func NewLocation(path string, values url.Values) *Location {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		path = DefaultPath
	}
	if values == nil {
		values = url.Values{}
	}
	return &Location{
		path:    path,
		entries: []url.Values{cloneValues(values)},
	}
}

// Path returns the page path.
func (location *Location) Path() string {
	location.mu.Lock()
	defer location.mu.Unlock()
	return location.path
}

// Values returns a copy of the current parameters.
func (location *Location) Values() url.Values {
	location.mu.Lock()
	defer location.mu.Unlock()
	return cloneValues(location.entries[location.index])
}

// Get returns the current value of one parameter.
func (location *Location) Get(name string) string {
	location.mu.Lock()
	defer location.mu.Unlock()
	return location.entries[location.index].Get(name)
}

// Push merges updates into the current parameters, keeping every
// parameter it does not name, and records the result as a new history
// entry. Entries ahead of the current one (after Back) are discarded.
func (location *Location) Push(updates map[string]string) {
	location.write(updates, pushEntry)
}

// Replace merges updates into the current entry without recording a
// new one.
func (location *Location) Replace(updates map[string]string) {
	location.write(updates, replaceEntry)
}

func (location *Location) write(updates map[string]string, mode historyMode) {
	if mode == keepEntry {
		return
	}
	location.mu.Lock()
	defer location.mu.Unlock()

	next := cloneValues(location.entries[location.index])
	for name, value := range updates {
		next.Set(name, value)
	}
	location.revision++
	if mode == replaceEntry {
		location.entries[location.index] = next
		return
	}
	location.entries = append(location.entries[:location.index+1], next)
	location.index = len(location.entries) - 1
}

// Back moves to the previous history entry. Returns false if already
// at the oldest entry.
func (location *Location) Back() bool {
	_, moved := location.step(-1)
	return moved
}

// Forward moves to the next history entry. Returns false if already
// at the newest entry.
func (location *Location) Forward() bool {
	_, moved := location.step(1)
	return moved
}

// historyStep records one Back or Forward so it can be undone.
type historyStep struct {
	from, to int
	revision uint64
}

// step moves the current entry by delta.
func (location *Location) step(delta int) (historyStep, bool) {
	location.mu.Lock()
	defer location.mu.Unlock()
	target := location.index + delta
	if target < 0 || target >= len(location.entries) {
		return historyStep{}, false
	}
	location.revision++
	step := historyStep{from: location.index, to: target, revision: location.revision}
	location.index = target
	return step, true
}

// undo returns to the entry step left, unless the location has been
// written or moved since.
func (location *Location) undo(step historyStep) bool {
	location.mu.Lock()
	defer location.mu.Unlock()
	if location.revision != step.revision || location.index != step.to {
		return false
	}
	location.revision++
	location.index = step.from
	return true
}

// Len returns the number of history entries.
func (location *Location) Len() int {
	location.mu.Lock()
	defer location.mu.Unlock()
	return len(location.entries)
}

// String returns "path?query" for the current entry, with parameters
// in sorted order.
func (location *Location) String() string {
	location.mu.Lock()
	defer location.mu.Unlock()
	return location.path + "?" + location.entries[location.index].Encode()
}

// LocationState is the serializable form of a Location, history
// included.
type LocationState struct {
	Path    string   `cbor:"path"`
	Entries []string `cbor:"entries"`
	Index   int      `cbor:"index"`
}

// State captures the location and its history.
func (location *Location) State() LocationState {
	location.mu.Lock()
	defer location.mu.Unlock()
	state := LocationState{Path: location.path, Index: location.index}
	for _, entry := range location.entries {
		state.Entries = append(state.Entries, entry.Encode())
	}
	return state
}

// RestoreLocation rebuilds a Location from a captured state.
func RestoreLocation(state LocationState) (*Location, error) {
	if len(state.Entries) == 0 {
		return nil, fmt.Errorf("restoring location: no history entries")
	}
	if state.Index < 0 || state.Index >= len(state.Entries) {
		return nil, fmt.Errorf("restoring location: index %d out of range [0, %d)", state.Index, len(state.Entries))
	}
	location := NewLocation(state.Path, nil)
	location.entries = location.entries[:0]
	for position, encoded := range state.Entries {
		values, err := url.ParseQuery(encoded)
		if err != nil {
			return nil, fmt.Errorf("restoring location entry %d: %w", position, err)
		}
		location.entries = append(location.entries, values)
	}
	location.index = state.Index
	return location, nil
}

func cloneValues(values url.Values) url.Values {
	clone := make(url.Values, len(values))
	for name, list := range values {
		clone[name] = append([]string(nil), list...)
	}
	return clone
}
