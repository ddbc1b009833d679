// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RecentController owns the recently viewed candidate and canonical
// event panels.
type RecentController struct {
	session    *Session
	candidates *Panel
	canonicals *Panel
}

// ReloadCandidates refreshes the recent candidate events panel.
func (recent *RecentController) ReloadCandidates(ctx context.Context) error {
	return recent.session.fetch(ctx, recent.candidates, false, recent.session.service.LoadRecentCandidateEvents, nil)
}

// ReloadCanonicals refreshes the recent canonical events panel.
func (recent *RecentController) ReloadCanonicals(ctx context.Context) error {
	return recent.session.fetch(ctx, recent.canonicals, false, recent.session.service.LoadRecentCanonicalEvents, nil)
}

// Reload refreshes both panels concurrently.
func (recent *RecentController) Reload(ctx context.Context) error {
	var group errgroup.Group
	group.Go(func() error { return recent.ReloadCandidates(ctx) })
	group.Go(func() error { return recent.ReloadCanonicals(ctx) })
	return group.Wait()
}
