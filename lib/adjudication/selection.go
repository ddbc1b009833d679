// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import "net/url"

// Location parameter names for the selection.
const (
	ParamCanonicalKey = "canonical_event_key"
	ParamCandidates   = "cand_events"
)

// Selection is what is being adjudicated: at most one canonical event
// (CanonicalKey, empty for none) and the candidate events shown next
// to it.
type Selection struct {
	CanonicalKey string
	Candidates   CandidateSet
}

// HasCanonical reports whether a canonical event is selected.
func (selection Selection) HasCanonical() bool {
	return selection.CanonicalKey != "" && selection.CanonicalKey != emptySentinel
}

// Clone returns a copy that shares no state with the receiver.
func (selection Selection) Clone() Selection {
	return Selection{
		CanonicalKey: selection.CanonicalKey,
		Candidates:   selection.Candidates.Clone(),
	}
}

// Equal reports whether both selections name the same canonical event
// and the same candidates in the same order.
func (selection Selection) Equal(other Selection) bool {
	return selection.CanonicalKey == other.CanonicalKey &&
		selection.Candidates.Equal(other.Candidates)
}

// Params returns the location parameters that encode the selection.
func (selection Selection) Params() map[string]string {
	return map[string]string{
		ParamCanonicalKey: selection.CanonicalKey,
		ParamCandidates:   selection.Candidates.Serialize(),
	}
}

// SelectionFromValues decodes a selection from location parameters.
// A missing, empty, or "null" canonical key means no selection; a
// missing, empty, or "null" candidate list means an empty set.
func SelectionFromValues(values url.Values) Selection {
	key := values.Get(ParamCanonicalKey)
	if key == emptySentinel {
		key = ""
	}
	return Selection{
		CanonicalKey: key,
		Candidates:   ParseCandidateSet(values.Get(ParamCandidates)),
	}
}
