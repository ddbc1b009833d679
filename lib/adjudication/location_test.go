// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"net/url"
	"testing"
)

func TestParseLocationForms(t *testing.T) {
	tests := []struct {
		raw      string
		wantPath string
		wantKey  string
	}{
		{"adj?canonical_event_key=K1", "adj", "K1"},
		{"/adj?canonical_event_key=K1", "adj", "K1"},
		{"?canonical_event_key=K1", "adj", "K1"},
		{"canonical_event_key=K1", "adj", "K1"},
		{"https://coder.example.org/app/adj?canonical_event_key=K1", "app/adj", "K1"},
		{"", "adj", ""},
	}
	for _, test := range tests {
		location, err := ParseLocation(test.raw)
		if err != nil {
			t.Errorf("ParseLocation(%q): %v", test.raw, err)
			continue
		}
		if location.Path() != test.wantPath {
			t.Errorf("ParseLocation(%q).Path() = %q, want %q", test.raw, location.Path(), test.wantPath)
		}
		if got := location.Get(ParamCanonicalKey); got != test.wantKey {
			t.Errorf("ParseLocation(%q) key = %q, want %q", test.raw, got, test.wantKey)
		}
	}
}

func TestLocationPushMergesAndKeepsUnrelated(t *testing.T) {
	location, err := ParseLocation("adj?candidate_search_input=strike&canonical_event_key=K1")
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	location.Push(map[string]string{ParamCanonicalKey: "K2", ParamCandidates: "A,B"})
	values := location.Values()
	if values.Get("candidate_search_input") != "strike" {
		t.Errorf("unrelated parameter lost: %v", values)
	}
	if values.Get(ParamCanonicalKey) != "K2" || values.Get(ParamCandidates) != "A,B" {
		t.Errorf("merged values = %v", values)
	}
	if location.Len() != 2 {
		t.Errorf("history length = %d, want 2", location.Len())
	}
}

func TestLocationPushRecordsUnchangedWrite(t *testing.T) {
	location, _ := ParseLocation("adj?canonical_event_key=K2")
	location.Push(map[string]string{ParamCanonicalKey: "K2"})
	if location.Len() != 2 {
		t.Fatalf("history length = %d, want 2: every write is an entry", location.Len())
	}
	if !location.Back() || location.Get(ParamCanonicalKey) != "K2" {
		t.Errorf("previous entry key = %q, want K2", location.Get(ParamCanonicalKey))
	}
}

func TestLocationReplaceKeepsHistoryLength(t *testing.T) {
	location, _ := ParseLocation("adj?cand_events=null&candidate_search_input=strike")
	location.Replace(map[string]string{ParamCandidates: "", ParamCanonicalKey: ""})
	if location.Len() != 1 {
		t.Errorf("history length = %d, want 1", location.Len())
	}
	if got := location.String(); got != "adj?cand_events=&candidate_search_input=strike&canonical_event_key=" {
		t.Errorf("location = %q", got)
	}
}

func TestLocationUndoStep(t *testing.T) {
	location := NewLocation("", nil)
	location.Push(map[string]string{"step": "1"})

	step, moved := location.step(-1)
	if !moved || location.Get("step") != "" {
		t.Fatalf("step back: moved=%t step=%q", moved, location.Get("step"))
	}
	if !location.undo(step) || location.Get("step") != "1" {
		t.Fatalf("undo: step = %q, want 1", location.Get("step"))
	}
	if location.undo(step) {
		t.Error("undo applied twice")
	}

	// A write after the step wins over the undo.
	step, _ = location.step(-1)
	location.Push(map[string]string{"step": "2"})
	if location.undo(step) {
		t.Error("undo applied after an intervening push")
	}
	if location.Get("step") != "2" {
		t.Errorf("step = %q, want 2", location.Get("step"))
	}
}

func TestLocationHistory(t *testing.T) {
	location := NewLocation("", nil)
	location.Push(map[string]string{"step": "1"})
	location.Push(map[string]string{"step": "2"})

	if !location.Back() || location.Get("step") != "1" {
		t.Fatalf("Back: step = %q, want 1", location.Get("step"))
	}
	if !location.Back() || location.Get("step") != "" {
		t.Fatalf("second Back: step = %q, want empty", location.Get("step"))
	}
	if location.Back() {
		t.Error("Back past the first entry succeeded")
	}
	if !location.Forward() || location.Get("step") != "1" {
		t.Fatalf("Forward: step = %q, want 1", location.Get("step"))
	}

	location.Push(map[string]string{"step": "other"})
	if location.Forward() {
		t.Error("Forward after a push succeeded; forward entries should be discarded")
	}
	if location.Len() != 3 {
		t.Errorf("history length = %d, want 3", location.Len())
	}
}

func TestLocationStateRestore(t *testing.T) {
	location, _ := ParseLocation("adj?cand_events=A")
	location.Push(map[string]string{ParamCandidates: "A,B"})
	location.Push(map[string]string{ParamCandidates: "A,B,C"})
	location.Back()

	restored, err := RestoreLocation(location.State())
	if err != nil {
		t.Fatalf("RestoreLocation: %v", err)
	}
	if restored.String() != location.String() {
		t.Errorf("restored at %q, want %q", restored.String(), location.String())
	}
	if !restored.Forward() || restored.Get(ParamCandidates) != "A,B,C" {
		t.Errorf("restored history lost forward entry")
	}

	if _, err := RestoreLocation(LocationState{Path: "adj"}); err == nil {
		t.Error("RestoreLocation with no entries succeeded")
	}
	if _, err := RestoreLocation(LocationState{Path: "adj", Entries: []string{""}, Index: 3}); err == nil {
		t.Error("RestoreLocation with out-of-range index succeeded")
	}
}

func TestSelectionFromValues(t *testing.T) {
	tests := []struct {
		query          string
		wantKey        string
		wantCandidates string
	}{
		{"", "", ""},
		{"canonical_event_key=&cand_events=", "", ""},
		{"canonical_event_key=null&cand_events=null", "", ""},
		{"canonical_event_key=K1&cand_events=A,B", "K1", "A,B"},
	}
	for _, test := range tests {
		values, _ := url.ParseQuery(test.query)
		selection := SelectionFromValues(values)
		if selection.CanonicalKey != test.wantKey {
			t.Errorf("%q: key = %q, want %q", test.query, selection.CanonicalKey, test.wantKey)
		}
		if got := selection.Candidates.Serialize(); got != test.wantCandidates {
			t.Errorf("%q: candidates = %q, want %q", test.query, got, test.wantCandidates)
		}
		if test.wantCandidates == "" && selection.Candidates.Len() != 0 {
			t.Errorf("%q: %d candidates, want empty set", test.query, selection.Candidates.Len())
		}
	}
}
