// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"sync"
)

// dirtyMarker is appended to a search tab's label after a search runs
// and removed when the tab is activated.
const dirtyMarker = "*"

// SearchController runs searches over one population and owns that
// population's results panel, search form, and tab label.
type SearchController struct {
	session    *Session
	population Population
	panel      *Panel

	mu      sync.Mutex
	form    SearchForm
	count   int
	ran     bool
	dirty   bool
	exports map[string]bool
}

func newSearchController(session *Session, population Population, panel *Panel) *SearchController {
	return &SearchController{
		session:    session,
		population: population,
		panel:      panel,
		exports:    make(map[string]bool),
	}
}

// Population returns the population this controller searches.
func (search *SearchController) Population() Population { return search.population }

// Panel returns the results panel.
func (search *SearchController) Panel() *Panel { return search.panel }

// Form returns the current form.
func (search *SearchController) Form() SearchForm {
	search.mu.Lock()
	defer search.mu.Unlock()
	return search.form
}

// SetForm replaces the form without running a search or touching the
// location.
func (search *SearchController) SetForm(form SearchForm) {
	search.mu.Lock()
	defer search.mu.Unlock()
	search.form = form
}

// Run searches with form. On success the results panel is replaced,
// the result count and dirty marker are updated, the form becomes
// what the service echoed back, and the echoed fields are merged into
// the location (only this population's declared fields). On failure
// nothing changes and the service's text is shown in the Flash.
func (search *SearchController) Run(ctx context.Context, form SearchForm) error {
	return search.run(ctx, form, pushEntry)
}

func (search *SearchController) run(ctx context.Context, form SearchForm, mode historyMode) error {
	if err := form.Validate(); err != nil {
		return search.session.flash.Error(err)
	}

	var result struct {
		count int
		query map[string]string
	}
	session := search.session
	return session.fetch(ctx, search.panel, true,
		func(ctx context.Context) (string, error) {
			response, err := session.service.Search(ctx, string(search.population), form.Values(search.population))
			if err != nil {
				return "", err
			}
			result.count = response.Count
			result.query = response.Query
			return response.HTML, nil
		},
		func() {
			echoed := declaredSubset(search.population, result.query)
			values := form.Values(search.population)
			for name, value := range echoed {
				values.Set(name, value)
			}

			search.mu.Lock()
			search.form = SearchFormFromValues(search.population, values)
			search.count = result.count
			search.ran = true
			search.dirty = true
			clear(search.exports)
			search.mu.Unlock()

			if len(echoed) > 0 {
				session.location.write(echoed, mode)
			}
			session.logger.Debug("search completed",
				"population", search.population,
				"results", result.count,
			)
		},
	)
}

// Rerun repeats the search with the current form.
func (search *SearchController) Rerun(ctx context.Context) error {
	return search.Run(ctx, search.Form())
}

// ClearRow empties one filter/sort row of the form and blanks the
// row's parameters in the location. No search is run.
func (search *SearchController) ClearRow(row int) {
	if row < 0 || row >= FilterRows {
		return
	}
	search.mu.Lock()
	search.form.ClearRow(row)
	search.mu.Unlock()

	updates := make(map[string]string)
	for _, name := range RowFields(search.population, row) {
		updates[name] = ""
	}
	search.session.location.Push(updates)
}

// Count returns the result count of the last successful search, -1
// when the service did not report one or no search has run.
func (search *SearchController) Count() int {
	search.mu.Lock()
	defer search.mu.Unlock()
	if !search.ran {
		return -1
	}
	return search.count
}

// Label is the results heading: "Search" before any search, then
// "Search (N results)".
func (search *SearchController) Label() string {
	count := search.Count()
	if count < 0 {
		return "Search"
	}
	return fmt.Sprintf("Search (%d results)", count)
}

// TabName is the population's tab title without the dirty marker.
func (search *SearchController) TabName() string {
	if search.population == PopulationCanonical {
		return "Canonical"
	}
	return "Candidates"
}

// TabLabel is the tab title, with the dirty marker after a search has
// run since the tab was last activated. The marker is never doubled.
func (search *SearchController) TabLabel() string {
	if search.Dirty() {
		return search.TabName() + dirtyMarker
	}
	return search.TabName()
}

// Dirty reports whether the tab carries the dirty marker.
func (search *SearchController) Dirty() bool {
	search.mu.Lock()
	defer search.mu.Unlock()
	return search.dirty
}

// ActivateTab records that the user switched to this population's
// tab, clearing the dirty marker.
func (search *SearchController) ActivateTab() {
	search.mu.Lock()
	defer search.mu.Unlock()
	search.dirty = false
}
