// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// GridController owns the grid panel and is the only writer of the
// session's Selection.
type GridController struct {
	session *Session
	panel   *Panel
}

// Panel returns the grid panel.
func (grid *GridController) Panel() *Panel { return grid.panel }

// Refresh loads the grid for selection. On success the grid shows
// exactly selection, the session's Selection becomes selection, and
// the location's canonical_event_key and cand_events are rewritten to
// match. On failure nothing changes and the service's text is shown in
// the Flash. Returns ErrSuperseded if a newer refresh was issued while
// this one was in flight.
func (grid *GridController) Refresh(ctx context.Context, selection Selection) error {
	return grid.refresh(ctx, selection, pushEntry)
}

func (grid *GridController) refresh(ctx context.Context, selection Selection, mode historyMode) error {
	selection = selection.Clone()
	session := grid.session
	return session.fetch(ctx, grid.panel, true,
		func(ctx context.Context) (string, error) {
			return session.service.LoadGrid(ctx, selection.CanonicalKey, selection.Candidates.Serialize())
		},
		func() {
			session.commitSelection(selection)
			session.location.write(selection.Params(), mode)
			session.logger.Debug("grid refreshed",
				"canonical_key", selection.CanonicalKey,
				"candidates", selection.Candidates.Serialize(),
			)
		},
	)
}

// Reload refreshes the grid for the current selection.
func (grid *GridController) Reload(ctx context.Context) error {
	return grid.Refresh(ctx, grid.session.Selection())
}

// AddCandidate attaches a candidate event to the grid, evicting the
// last candidate if the grid is full, then reloads the recent
// candidates list. Adding a candidate already in the grid is a
// ValidationError and sends nothing.
func (grid *GridController) AddCandidate(ctx context.Context, eventID string) error {
	current := grid.session.Selection()
	candidates, err := current.Candidates.With(eventID)
	if err != nil {
		return grid.session.flash.Error(err)
	}
	if err := grid.Refresh(ctx, Selection{CanonicalKey: current.CanonicalKey, Candidates: candidates}); err != nil {
		return err
	}
	return grid.session.recent.ReloadCandidates(ctx)
}

// RemoveCandidate detaches a candidate event from the grid. Removing
// an id that is not in the grid still refreshes it.
func (grid *GridController) RemoveCandidate(ctx context.Context, eventID string) error {
	current := grid.session.Selection()
	return grid.Refresh(ctx, Selection{
		CanonicalKey: current.CanonicalKey,
		Candidates:   current.Candidates.Without(eventID),
	})
}

// SelectCanonical makes key the grid's canonical event, keeping the
// candidates, then reloads the recent canonical events list.
func (grid *GridController) SelectCanonical(ctx context.Context, key string) error {
	current := grid.session.Selection()
	if err := grid.Refresh(ctx, Selection{CanonicalKey: key, Candidates: current.Candidates}); err != nil {
		return err
	}
	return grid.session.recent.ReloadCanonicals(ctx)
}

// ClearCanonical removes the canonical event from the grid, keeping
// the candidates.
func (grid *GridController) ClearCanonical(ctx context.Context) error {
	current := grid.session.Selection()
	return grid.Refresh(ctx, Selection{Candidates: current.Candidates})
}

// canonicalID returns the id of the canonical event the grid shows,
// or a ValidationError when it shows none.
func (grid *GridController) canonicalID() (string, error) {
	id, _ := GridCanonical(grid.panel.Fragment())
	if id == "" {
		return "", validationf("Please select a canonical event first.")
	}
	return id, nil
}

// AddRecord attaches the candidate datum cecID to the grid's canonical
// event under variable. The new cell is appended to the variable's
// row in place, replacing its "none" placeholder; if the row cannot be
// found the whole grid is reloaded instead.
func (grid *GridController) AddRecord(ctx context.Context, variable, cecID string) error {
	canonicalID, err := grid.canonicalID()
	if err != nil {
		return grid.session.flash.Error(err)
	}
	cell, err := grid.session.service.AddCanonicalRecord(ctx, canonicalID, cecID)
	if err != nil {
		return grid.session.flash.Error(err)
	}

	err = grid.panel.Mutate(func(document *goquery.Document) error {
		row := findByID(document.Selection, "canonical-event_"+variable)
		if row.Length() == 0 {
			return errRowMissing
		}
		row.Find(".none").Remove()
		row.AppendHtml(cell)
		return nil
	})
	if errors.Is(err, errRowMissing) || errors.Is(err, ErrSuperseded) {
		return grid.Reload(ctx)
	}
	return err
}

var errRowMissing = errors.New("grid row not found")

// RemoveRecord detaches the datum with canonical event link id celID
// from the canonical event and removes its cell in place.
func (grid *GridController) RemoveRecord(ctx context.Context, variable, celID string) error {
	if err := grid.session.service.DeleteCanonicalRecord(ctx, celID); err != nil {
		return grid.session.flash.Error(err)
	}
	err := grid.panel.Mutate(func(document *goquery.Document) error {
		findByID(document.Selection, "canonical-"+variable+"_"+celID).Remove()
		return nil
	})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// AddLink links a candidate's article to the grid's canonical event
// and reloads the grid.
func (grid *GridController) AddLink(ctx context.Context, articleID string) error {
	canonicalID, err := grid.canonicalID()
	if err != nil {
		return grid.session.flash.Error(err)
	}
	if err := grid.session.service.AddCanonicalLink(ctx, canonicalID, articleID); err != nil {
		return grid.session.flash.Error(err)
	}
	return grid.Reload(ctx)
}

// RemoveLink removes an article's link and reloads the grid.
func (grid *GridController) RemoveLink(ctx context.Context, articleID string) error {
	if err := grid.session.service.DeleteCanonicalLink(ctx, articleID); err != nil {
		return grid.session.flash.Error(err)
	}
	return grid.Reload(ctx)
}

// findByID returns the descendants of root whose id attribute equals
// id exactly. Ids built from service data are not safe to embed in a
// CSS selector.
func findByID(root *goquery.Selection, id string) *goquery.Selection {
	return root.Find("[id]").FilterFunction(func(_ int, element *goquery.Selection) bool {
		return element.AttrOr("id", "") == id
	})
}
