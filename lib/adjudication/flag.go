// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FlagOperation sets or clears a flag.
type FlagOperation string

const (
	FlagAdd    FlagOperation = "add"
	FlagDelete FlagOperation = "del"
)

// Flag is a review flag on a candidate event.
type Flag string

const (
	// FlagCompleted retires a candidate event from adjudication.
	FlagCompleted Flag = "completed"

	// FlagForReview marks a candidate event for a second look.
	FlagForReview Flag = "for-review"
)

// FlagController sets and clears review flags on candidate events.
type FlagController struct {
	session *Session
}

// Toggle applies operation to flag on the candidate event eventID,
// then refreshes the grid and the candidate search concurrently.
// Completing an event (FlagAdd with FlagCompleted) drops it from the
// refreshed grid's candidates.
//
// The two refreshes are independent: if one fails, the other still
// completes, and the grid and search results may disagree until the
// next refresh. The first failure is returned; each failure is also
// shown in the Flash.
func (flags *FlagController) Toggle(ctx context.Context, eventID string, operation FlagOperation, flag Flag) error {
	session := flags.session
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return session.flash.Error(validationf("No event selected."))
	}
	if operation != FlagAdd && operation != FlagDelete {
		return session.flash.Error(validationf(fmt.Sprintf("Unknown flag operation %q.", operation)))
	}
	if flag != FlagCompleted && flag != FlagForReview {
		return session.flash.Error(validationf(fmt.Sprintf("Unknown flag %q.", flag)))
	}

	var err error
	if operation == FlagAdd {
		err = session.service.AddEventFlag(ctx, eventID, string(flag))
	} else {
		err = session.service.DeleteEventFlag(ctx, eventID, string(flag))
	}
	if err != nil {
		return session.flash.Error(err)
	}
	session.logger.Info("event flag changed",
		"event_id", eventID,
		"operation", operation,
		"flag", flag,
	)

	selection := session.Selection()
	if operation == FlagAdd && flag == FlagCompleted {
		selection.Candidates = selection.Candidates.Without(eventID)
	}

	var group errgroup.Group
	group.Go(func() error { return session.grid.Refresh(ctx, selection) })
	group.Go(func() error { return session.candidateSearch.Rerun(ctx) })
	return group.Wait()
}
