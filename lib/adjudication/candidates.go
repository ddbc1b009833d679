// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"slices"
	"strings"
)

// MaxCandidates is the number of candidate events the grid holds at
// once.
const MaxCandidates = 4

// emptySentinel is what an empty candidate list looks like after a
// trip through the location when it was serialized as a null value.
const emptySentinel = "null"

// CandidateSet is the ordered list of candidate event ids attached to
// the grid. It never holds more than MaxCandidates ids and never holds
// the same id twice. The zero value is an empty set.
//
// When the set is full, adding a new id replaces the id in the last
// position rather than the oldest one.
type CandidateSet struct {
	ids []string
}

// NewCandidateSet builds a set from ids, applying the same rules as
// ParseCandidateSet to each element.
func NewCandidateSet(ids ...string) CandidateSet {
	var set CandidateSet
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if isSentinel(id) || set.Contains(id) || len(set.ids) == MaxCandidates {
			continue
		}
		set.ids = append(set.ids, id)
	}
	return set
}

// ParseCandidateSet reads the comma-separated form produced by
// Serialize. Empty elements and the "null" sentinel are dropped, so
// "", "null", and an absent parameter all yield an empty set.
// Duplicates keep their first position and anything past
// MaxCandidates is ignored.
func ParseCandidateSet(raw string) CandidateSet {
	if strings.TrimSpace(raw) == "" {
		return CandidateSet{}
	}
	return NewCandidateSet(strings.Split(raw, ",")...)
}

func isSentinel(id string) bool {
	return id == "" || id == emptySentinel
}

// Add appends id. Adding an id that is already present (or the empty
// sentinel) returns a ValidationError and leaves the set unchanged. If the set holds only
// the empty sentinel it is cleared first; if it is full, the last id
// is evicted to make room.
func (set *CandidateSet) Add(id string) error {
	if isSentinel(id) {
		return validationf("Invalid event id.")
	}
	if set.Contains(id) {
		return validationf("Event already in grid.")
	}
	if len(set.ids) == 1 && isSentinel(set.ids[0]) {
		set.ids = nil
	}
	if len(set.ids) >= MaxCandidates {
		set.ids = set.ids[:MaxCandidates-1]
	}
	set.ids = append(set.ids, id)
	return nil
}

// Remove drops id if present. Removing an absent id is a no-op.
func (set *CandidateSet) Remove(id string) {
	index := slices.Index(set.ids, id)
	if index < 0 {
		return
	}
	set.ids = slices.Delete(set.ids, index, index+1)
}

// With returns a copy of the set with id added, leaving the receiver
// untouched.
func (set CandidateSet) With(id string) (CandidateSet, error) {
	next := set.Clone()
	if err := next.Add(id); err != nil {
		return set, err
	}
	return next, nil
}

// Without returns a copy of the set with id removed.
func (set CandidateSet) Without(id string) CandidateSet {
	next := set.Clone()
	next.Remove(id)
	return next
}

// Contains reports whether id is in the set.
func (set CandidateSet) Contains(id string) bool {
	return slices.Contains(set.ids, id)
}

// Len returns the number of ids in the set.
func (set CandidateSet) Len() int { return len(set.ids) }

// IDs returns a copy of the ids in order.
func (set CandidateSet) IDs() []string { return slices.Clone(set.ids) }

// Clone returns an independent copy.
func (set CandidateSet) Clone() CandidateSet {
	return CandidateSet{ids: slices.Clone(set.ids)}
}

// Equal reports whether both sets hold the same ids in the same order.
func (set CandidateSet) Equal(other CandidateSet) bool {
	return slices.Equal(set.ids, other.ids)
}

// Serialize joins the ids with commas, skipping any id in exclude.
func (set CandidateSet) Serialize(exclude ...string) string {
	kept := make([]string, 0, len(set.ids))
	for _, id := range set.ids {
		if slices.Contains(exclude, id) {
			continue
		}
		kept = append(kept, id)
	}
	return strings.Join(kept, ",")
}

func (set CandidateSet) String() string { return "[" + set.Serialize() + "]" }
