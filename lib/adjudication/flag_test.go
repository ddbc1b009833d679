// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"slices"
	"testing"

	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

func TestMarkCompletedDropsCandidate(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A,B,C&candidate_search_input=protest")
	if got := service.callsWithPrefix("search candidate"); len(got) != 1 {
		t.Fatalf("Open ran %d candidate searches, want 1", len(got))
	}
	grid := session.Grid().Panel()

	if err := grid.Dispatch(context.Background(), findAction(t, grid, "Mark completed: event B")); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if got := service.callsWithPrefix("add-flag"); !slices.Equal(got, []string{"add-flag B completed"}) {
		t.Errorf("flag calls = %q", got)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,C" {
		t.Errorf("candidates = %q, want A,C", got)
	}
	if got := session.Location().Get(ParamCandidates); got != "A,C" {
		t.Errorf("location candidates = %q, want A,C", got)
	}
	if got := service.callsWithPrefix("search candidate"); len(got) != 2 {
		t.Errorf("candidate searches = %d, want exactly one rerun", len(got)-1)
	}
	if got := service.callsWithPrefix("search canonical"); len(got) != 0 {
		t.Errorf("canonical search ran: %q", got)
	}
}

func TestFlagForReviewKeepsCandidate(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?cand_events=A,B")

	if err := session.Flags().Toggle(context.Background(), "B", FlagAdd, FlagForReview); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B" {
		t.Errorf("candidates = %q, want A,B", got)
	}
	if err := session.Flags().Toggle(context.Background(), "A", FlagDelete, FlagCompleted); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := service.callsWithPrefix("del-flag"); !slices.Equal(got, []string{"del-flag A completed"}) {
		t.Errorf("del-flag calls = %q", got)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B" {
		t.Errorf("removing a flag changed candidates to %q", got)
	}
}

func TestFlagValidationAndFailure(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?cand_events=A")
	flags := session.Flags()
	ctx := context.Background()

	for _, test := range []struct {
		id        string
		operation FlagOperation
		flag      Flag
		message   string
	}{
		{"", FlagAdd, FlagCompleted, "No event selected."},
		{"A", "toggle", FlagCompleted, `Unknown flag operation "toggle".`},
		{"A", FlagAdd, "urgent", `Unknown flag "urgent".`},
	} {
		if err := flags.Toggle(ctx, test.id, test.operation, test.flag); !IsValidation(err) {
			t.Errorf("Toggle(%q, %q, %q) = %v, want ValidationError", test.id, test.operation, test.flag, err)
		}
		if _, text := flashText(t, session.Flash()); text != test.message {
			t.Errorf("flash = %q, want %q", text, test.message)
		}
	}

	service.flagErr = &recordservice.ServiceError{StatusCode: 404, Body: "No such event."}
	grids := len(service.callsWithPrefix("grid "))
	if err := flags.Toggle(ctx, "A", FlagAdd, FlagCompleted); !recordservice.IsNotFound(err) {
		t.Fatalf("Toggle = %v, want 404", err)
	}
	if _, text := flashText(t, session.Flash()); text != "No such event." {
		t.Errorf("flash = %q", text)
	}
	if len(service.callsWithPrefix("grid ")) != grids || session.Selection().Candidates.Serialize() != "A" {
		t.Error("failed flag change refreshed the grid")
	}
}
