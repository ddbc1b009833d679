// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

func TestOpenLoadsGridAndRecents(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A,B,C,D")

	if got := service.callsWithPrefix("grid "); !slices.Equal(got, []string{"grid K1|A,B,C,D"}) {
		t.Errorf("grid calls = %q", got)
	}
	if len(service.callsWithPrefix("recent-candidates")) != 1 || len(service.callsWithPrefix("recent-canonicals")) != 1 {
		t.Errorf("recents not loaded once each: %q", service.calls)
	}
	if got := service.callsWithPrefix("search "); len(got) != 0 {
		t.Errorf("Open ran searches with empty forms: %q", got)
	}

	selection := session.Selection()
	if selection.CanonicalKey != "K1" || selection.Candidates.Serialize() != "A,B,C,D" {
		t.Errorf("selection = %+v", selection)
	}
	if session.Location().Len() != 1 {
		t.Errorf("Open pushed %d history entries for an unchanged selection", session.Location().Len()-1)
	}
	if _, key := GridCanonical(session.Grid().Panel().Fragment()); key != "K1" {
		t.Errorf("grid canonical key = %q", key)
	}
	if session.Loading().Active() {
		t.Error("loading indicator still active after Open")
	}
}

func TestOpenTreatsSentinelAsEmpty(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=null&cand_events=null")
	if got := service.callsWithPrefix("grid "); !slices.Equal(got, []string{"grid |"}) {
		t.Errorf("grid calls = %q", got)
	}
	if selection := session.Selection(); selection.HasCanonical() || selection.Candidates.Len() != 0 {
		t.Errorf("selection = %+v, want empty", selection)
	}
}

func TestOpenRunsSearchesFromLocation(t *testing.T) {
	service := newFakeService()
	service.searchCount["canonical"] = 2
	session, _ := openTestSession(t, service, "adj?canonical_search_input=march&canonical_filter_field_0=location")

	searches := service.callsWithPrefix("search ")
	if len(searches) != 1 || !strings.HasPrefix(searches[0], "search canonical ") {
		t.Errorf("searches = %q, want one canonical search", searches)
	}
	if session.Search(PopulationCanonical).Form().Term != "march" {
		t.Errorf("canonical form term = %q", session.Search(PopulationCanonical).Form().Term)
	}
	if session.Search(PopulationCandidate).Count() != -1 {
		t.Error("candidate search ran with an empty form")
	}
	if got := session.Search(PopulationCanonical).Label(); got != "Search (2 results)" {
		t.Errorf("label = %q", got)
	}
	if session.Location().Len() != 1 {
		t.Errorf("Open added %d history entries", session.Location().Len()-1)
	}
}

func TestRefreshDiscardsSupersededResponse(t *testing.T) {
	service := newFakeService()
	entered := make(chan struct{})
	release := make(chan struct{})
	service.gridHook = func(key, _ string) {
		if key == "SLOW" {
			close(entered)
			<-release
		}
	}
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- session.Grid().Refresh(ctx, Selection{CanonicalKey: "SLOW"})
	}()
	<-entered
	if !session.Loading().Active() {
		t.Error("loading indicator inactive during a grid load")
	}

	if err := session.Grid().Refresh(ctx, Selection{CanonicalKey: "FAST"}); err != nil {
		t.Fatalf("Refresh(FAST): %v", err)
	}
	close(release)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Refresh(SLOW) = %v, want ErrSuperseded", err)
	}

	if _, key := GridCanonical(session.Grid().Panel().Fragment()); key != "FAST" {
		t.Errorf("grid shows %q, want FAST", key)
	}
	if session.Selection().CanonicalKey != "FAST" {
		t.Errorf("selection key = %q, want FAST", session.Selection().CanonicalKey)
	}
	if got := session.Location().Get(ParamCanonicalKey); got != "FAST" {
		t.Errorf("location key = %q, want FAST", got)
	}
	if session.Loading().Active() {
		t.Error("loading indicator active after both loads finished")
	}
}

func TestSupersededFailureIsNotFlashed(t *testing.T) {
	service := newFakeService()
	entered := make(chan struct{})
	release := make(chan struct{})
	service.gridHook = func(key, _ string) {
		if key == "SLOW" {
			close(entered)
			<-release
		}
	}
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1")
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- session.Grid().Refresh(ctx, Selection{CanonicalKey: "SLOW"})
	}()
	<-entered
	if err := session.Grid().Refresh(ctx, Selection{CanonicalKey: "FAST"}); err != nil {
		t.Fatalf("Refresh(FAST): %v", err)
	}
	service.gridErr = &recordservice.ServiceError{StatusCode: 500, Body: "late failure"}
	close(release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Refresh(SLOW) = %v, want ErrSuperseded", err)
	}
	if message, visible := session.Flash().Current(); visible {
		t.Errorf("superseded failure flashed %q", message.Text)
	}
}

func TestRefreshFailureLeavesStateUntouched(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A,B")
	before := session.Grid().Panel().Fragment()
	service.gridErr = &recordservice.ServiceError{StatusCode: 500, Body: "Grid unavailable."}

	if err := session.Grid().AddCandidate(context.Background(), "C"); err == nil {
		t.Fatal("AddCandidate succeeded with a failing service")
	}
	if kind, text := flashText(t, session.Flash()); kind != FlashError || text != "Grid unavailable." {
		t.Errorf("flash = %v %q", kind, text)
	}
	if session.Grid().Panel().Fragment() != before {
		t.Error("grid panel replaced after a failed load")
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B" {
		t.Errorf("selection candidates = %q, want A,B", got)
	}
	if got := session.Location().Get(ParamCandidates); got != "A,B" {
		t.Errorf("location candidates = %q, want A,B", got)
	}
	if got := service.callsWithPrefix("recent-candidates"); len(got) != 1 {
		t.Errorf("recent candidates reloaded after failed add: %d loads", len(got))
	}
}

func TestFailedOpenKeepsSelectionFromLocation(t *testing.T) {
	service := newFakeService()
	service.gridErr = &recordservice.ServiceError{StatusCode: 500, Body: "Grid unavailable."}
	session, _ := newTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A,B,C")
	ctx := context.Background()

	if err := session.Open(ctx); err == nil {
		t.Fatal("Open succeeded with a failing grid")
	}
	if selection := session.Selection(); selection.CanonicalKey != "K1" || selection.Candidates.Serialize() != "A,B,C" {
		t.Errorf("selection after failed Open = %q|%q, want K1|A,B,C",
			selection.CanonicalKey, selection.Candidates.Serialize())
	}

	service.gridErr = nil
	if err := session.Grid().AddCandidate(ctx, "E"); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	grids := service.callsWithPrefix("grid ")
	if last := grids[len(grids)-1]; last != "grid K1|A,B,C,E" {
		t.Errorf("grid request after add = %q, want grid K1|A,B,C,E", last)
	}
	if got := session.Location().String(); got != "adj?cand_events=A%2CB%2CC%2CE&canonical_event_key=K1" {
		t.Errorf("location = %q", got)
	}
}

func TestFailedBackKeepsLocationOnRenderedEntry(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A")
	ctx := context.Background()

	if err := session.Grid().AddCandidate(ctx, "B"); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	service.gridErr = &recordservice.ServiceError{StatusCode: 500, Body: "boom"}

	moved, err := session.Back(ctx)
	if !moved || err == nil {
		t.Fatalf("Back = %t, %v; want a move that fails", moved, err)
	}
	if got := session.Location().Get(ParamCandidates); got != "A,B" {
		t.Errorf("location candidates = %q, want A,B (the rendered entry)", got)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B" {
		t.Errorf("selection candidates = %q, want A,B", got)
	}

	service.gridErr = nil
	if err := session.Grid().AddCandidate(ctx, "C"); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	if got := session.Location().Get(ParamCandidates); got != "A,B,C" {
		t.Errorf("location candidates = %q, want A,B,C", got)
	}
	if session.Location().Len() != 3 {
		t.Errorf("history length = %d, want 3", session.Location().Len())
	}
}

func TestFailedForwardKeepsLocationOnRenderedEntry(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A&candidate_search_input=strike")
	ctx := context.Background()

	if err := session.Grid().AddCandidate(ctx, "B"); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	if moved, err := session.Back(ctx); !moved || err != nil {
		t.Fatalf("Back = %t, %v", moved, err)
	}
	service.gridErr = &recordservice.ServiceError{StatusCode: 500, Body: "boom"}

	if moved, err := session.Forward(ctx); !moved || err == nil {
		t.Fatalf("Forward = %t, %v; want a move that fails", moved, err)
	}
	if got := session.Location().Get(ParamCandidates); got != "A" {
		t.Errorf("location candidates = %q, want A", got)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A" {
		t.Errorf("selection candidates = %q, want A", got)
	}
	if got := session.Search(PopulationCandidate).Form().Term; got != "strike" {
		t.Errorf("candidate form term = %q, want strike", got)
	}

	service.gridErr = nil
	if moved, err := session.Forward(ctx); !moved || err != nil {
		t.Fatalf("retried Forward = %t, %v", moved, err)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B" {
		t.Errorf("selection after retried Forward = %q, want A,B", got)
	}
}

func TestBackAndForwardRestoreGrid(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj?canonical_event_key=K1&cand_events=A,B,C,D")
	ctx := context.Background()

	if err := session.Grid().AddCandidate(ctx, "E"); err != nil {
		t.Fatalf("AddCandidate: %v", err)
	}
	moved, err := session.Back(ctx)
	if err != nil || !moved {
		t.Fatalf("Back = %t, %v", moved, err)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B,C,D" {
		t.Errorf("after Back candidates = %q, want A,B,C,D", got)
	}
	if session.Location().Len() != 2 {
		t.Errorf("Back changed history length to %d", session.Location().Len())
	}
	grids := service.callsWithPrefix("grid ")
	if grids[len(grids)-1] != "grid K1|A,B,C,D" {
		t.Errorf("last grid call = %q", grids[len(grids)-1])
	}

	moved, err = session.Forward(ctx)
	if err != nil || !moved {
		t.Fatalf("Forward = %t, %v", moved, err)
	}
	if got := session.Selection().Candidates.Serialize(); got != "A,B,C,E" {
		t.Errorf("after Forward candidates = %q, want A,B,C,E", got)
	}
	if moved, _ := session.Forward(ctx); moved {
		t.Error("Forward past the newest entry moved")
	}
}
