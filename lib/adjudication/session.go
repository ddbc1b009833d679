// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/adjudicator/lib/clock"
)

// Config holds configuration for creating a Session.
type Config struct {
	// Service is the record service. Required.
	Service RecordService

	// Location is the starting location. Defaults to an empty
	// location at DefaultPath.
	Location *Location

	// Clock drives the flash dismiss timer. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Session is one adjudication page: the current Selection, the
// Location mirroring it, the panels, and the controllers that change
// them. Methods are safe to call from multiple goroutines; concurrent
// operations on the same panel resolve by request token.
type Session struct {
	service  RecordService
	location *Location
	flash    *Flash
	loading  *Indicator
	logger   *slog.Logger

	mu        sync.Mutex
	selection Selection

	panels map[PanelID]*Panel

	grid            *GridController
	candidateSearch *SearchController
	canonicalSearch *SearchController
	relationships   *RelationshipController
	flags           *FlagController
	canonical       *CanonicalController
	recent          *RecentController
}

// NewSession creates a Session. Nothing is fetched until Open.
func NewSession(config Config) (*Session, error) {
	if config.Service == nil {
		return nil, fmt.Errorf("adjudication: a record service is required")
	}

	location := config.Location
	if location == nil {
		location = NewLocation(DefaultPath, nil)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	session := &Session{
		service:  config.Service,
		location: location,
		flash:    NewFlash(config.Clock),
		loading:  &Indicator{},
		logger:   logger,
		panels:   make(map[PanelID]*Panel),
	}
	for _, id := range []PanelID{
		PanelGrid, PanelCandidateSearch, PanelCanonicalSearch,
		PanelRecentCandidates, PanelRecentCanonicals, PanelHierarchy, PanelModal,
	} {
		session.panels[id] = NewPanel(id)
	}

	session.grid = &GridController{session: session, panel: session.panels[PanelGrid]}
	session.candidateSearch = newSearchController(session, PopulationCandidate, session.panels[PanelCandidateSearch])
	session.canonicalSearch = newSearchController(session, PopulationCanonical, session.panels[PanelCanonicalSearch])
	session.relationships = &RelationshipController{session: session, panel: session.panels[PanelHierarchy]}
	session.flags = &FlagController{session: session}
	session.canonical = &CanonicalController{
		session: session,
		panel:   session.panels[PanelModal],
		flash:   NewFlash(config.Clock),
	}
	session.recent = &RecentController{
		session:    session,
		candidates: session.panels[PanelRecentCandidates],
		canonicals: session.panels[PanelRecentCanonicals],
	}

	session.bind()
	return session, nil
}

// Open restores the selection and both search forms from the
// location, then loads the grid, both recent lists, and any search
// whose restored form is non-empty, concurrently. The restored
// selection is committed before any load, so a failed grid load still
// leaves later edits building on it. The loads normalize the current
// history entry rather than adding one. Returns the first failure;
// every failure is also reported in the Flash.
func (session *Session) Open(ctx context.Context) error {
	values := session.location.Values()
	selection := SelectionFromValues(values)
	candidateForm := SearchFormFromValues(PopulationCandidate, values)
	canonicalForm := SearchFormFromValues(PopulationCanonical, values)
	session.commitSelection(selection)
	session.candidateSearch.SetForm(candidateForm)
	session.canonicalSearch.SetForm(canonicalForm)

	session.logger.Info("opening adjudication session",
		"location", session.location.String(),
		"canonical_key", selection.CanonicalKey,
		"candidates", selection.Candidates.Serialize(),
	)

	var group errgroup.Group
	group.Go(func() error { return session.grid.refresh(ctx, selection, replaceEntry) })
	group.Go(func() error { return session.recent.Reload(ctx) })
	if !candidateForm.Empty() {
		group.Go(func() error { return session.candidateSearch.run(ctx, candidateForm, replaceEntry) })
	}
	if !canonicalForm.Empty() {
		group.Go(func() error { return session.canonicalSearch.run(ctx, canonicalForm, replaceEntry) })
	}
	return ignoreSuperseded(group.Wait())
}

// Back moves the location to the previous history entry and loads the
// grid and search forms it describes. Returns false if there is no
// earlier entry. If the grid fails to load, the location returns to
// the entry the grid still shows.
func (session *Session) Back(ctx context.Context) (bool, error) {
	return session.navigate(ctx, -1)
}

// Forward is Back in the other direction.
func (session *Session) Forward(ctx context.Context) (bool, error) {
	return session.navigate(ctx, 1)
}

func (session *Session) navigate(ctx context.Context, delta int) (bool, error) {
	step, moved := session.location.step(delta)
	if !moved {
		return false, nil
	}
	if err := session.restore(ctx); err != nil {
		if !session.location.undo(step) {
			session.logger.Debug("location moved during a failed restore, not undoing",
				"location", session.location.String())
		}
		return true, err
	}
	return true, nil
}

// restore loads the state described by the current history entry
// without recording a new one. On failure the search forms are put
// back as they were.
func (session *Session) restore(ctx context.Context) error {
	values := session.location.Values()
	candidateForm := session.candidateSearch.Form()
	canonicalForm := session.canonicalSearch.Form()
	session.candidateSearch.SetForm(SearchFormFromValues(PopulationCandidate, values))
	session.canonicalSearch.SetForm(SearchFormFromValues(PopulationCanonical, values))

	err := ignoreSuperseded(session.grid.refresh(ctx, SelectionFromValues(values), keepEntry))
	if err != nil {
		session.candidateSearch.SetForm(candidateForm)
		session.canonicalSearch.SetForm(canonicalForm)
	}
	return err
}

// Selection returns a copy of the committed selection.
func (session *Session) Selection() Selection {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.selection.Clone()
}

// commitSelection replaces the committed selection. Open calls it with
// the selection decoded from the location; otherwise only the grid
// controller does, after the grid for selection has been installed.
func (session *Session) commitSelection(selection Selection) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.selection = selection.Clone()
}

// Location returns the session's location.
func (session *Session) Location() *Location { return session.location }

// Flash returns the session's notification slot.
func (session *Session) Flash() *Flash { return session.flash }

// Loading returns the indicator that is active while grid, search, or
// hierarchy fetches are in flight.
func (session *Session) Loading() *Indicator { return session.loading }

// Panel returns the panel with the given id, nil if there is none.
func (session *Session) Panel(id PanelID) *Panel { return session.panels[id] }

// Grid returns the grid controller.
func (session *Session) Grid() *GridController { return session.grid }

// Search returns the search controller for a population, nil for an
// unknown population.
func (session *Session) Search(population Population) *SearchController {
	switch population {
	case PopulationCandidate:
		return session.candidateSearch
	case PopulationCanonical:
		return session.canonicalSearch
	default:
		return nil
	}
}

// Relationships returns the relationship controller.
func (session *Session) Relationships() *RelationshipController { return session.relationships }

// Flags returns the flag controller.
func (session *Session) Flags() *FlagController { return session.flags }

// Canonical returns the canonical event modal controller.
func (session *Session) Canonical() *CanonicalController { return session.canonical }

// Recent returns the recent events controller.
func (session *Session) Recent() *RecentController { return session.recent }

// fetch runs one panel load: it issues a token, calls load, parses the
// result, and installs it with commit if the token is still current.
// Failures leave the panel untouched and are reported in the Flash,
// except when a newer request has already been issued, in which case
// ErrSuperseded is returned silently. When indicate is set the loading
// indicator is held for the duration.
func (session *Session) fetch(ctx context.Context, panel *Panel, indicate bool, load func(ctx context.Context) (string, error), commit func()) error {
	if indicate {
		release := session.loading.Acquire()
		defer release()
	}

	token := panel.Issue()
	html, err := load(ctx)
	if err != nil {
		if !panel.Latest(token) {
			return ErrSuperseded
		}
		session.logger.Warn("panel load failed", "panel", panel.ID(), "error", err)
		return session.flash.Error(err)
	}

	fragment, err := ParseFragment(html)
	if err != nil {
		return session.flash.Error(fmt.Errorf("panel %s: %w", panel.ID(), err))
	}
	if !panel.replaceCommit(token, fragment, commit) {
		session.logger.Debug("discarding superseded response", "panel", panel.ID(), "token", token)
		return ErrSuperseded
	}
	return nil
}

// ignoreSuperseded maps ErrSuperseded to nil for callers that only
// care about real failures.
func ignoreSuperseded(err error) error {
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}
