// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// PanelID names a region of the screen.
type PanelID string

const (
	PanelGrid             PanelID = "grid"
	PanelCandidateSearch  PanelID = "candidate-search"
	PanelCanonicalSearch  PanelID = "canonical-search"
	PanelRecentCandidates PanelID = "recent-candidates"
	PanelRecentCanonicals PanelID = "recent-canonicals"
	PanelHierarchy        PanelID = "hierarchy"
	PanelModal            PanelID = "modal"
)

// Token identifies one fetch issued for a panel.
type Token uint64

// Binding attaches behavior to every element of a panel's fragment
// matching Selector. Bindings are registered once on the panel and
// apply to whatever fragment is current.
type Binding struct {
	// Selector is a CSS selector evaluated against the fragment.
	Selector string

	// Verb is a short description of what the action does ("Add to
	// grid").
	Verb string

	// Describe names the element the action applies to. Defaults to
	// the element's collapsed text.
	Describe func(element *goquery.Selection) string

	// Prompt, when set, marks the action destructive: the returned
	// question must be confirmed before Handle runs.
	Prompt func(element *goquery.Selection) string

	// Handle performs the action.
	Handle func(ctx context.Context, element *goquery.Selection) error
}

// Action is one bound element in the current fragment of a panel.
type Action struct {
	Panel   PanelID
	Verb    string
	Subject string

	// Prompt is the confirmation question for destructive actions,
	// empty otherwise.
	Prompt string

	element    *goquery.Selection
	binding    *Binding
	generation uint64
}

// Label is the action's display text.
func (action Action) Label() string {
	if action.Subject == "" {
		return action.Verb
	}
	return action.Verb + ": " + action.Subject
}

// Element returns the fragment element the action is bound to.
func (action Action) Element() *goquery.Selection { return action.element }

// Panel is a stable container for one fragment. It orders fetches with
// request tokens: Replace only accepts the fragment for the most
// recently issued token, so a slow response can never overwrite a
// newer one.
type Panel struct {
	id PanelID

	mu         sync.Mutex
	issued     Token
	generation uint64
	fragment   *Fragment
	bindings   []*Binding
	onChange   func(id PanelID)
}

// NewPanel returns an empty panel.
func NewPanel(id PanelID) *Panel {
	return &Panel{id: id}
}

// ID returns the panel's identifier.
func (panel *Panel) ID() PanelID { return panel.id }

// OnChange registers a callback invoked after the panel's fragment
// changes.
func (panel *Panel) OnChange(callback func(id PanelID)) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	panel.onChange = callback
}

// Issue returns a new token for a fetch. Any fetch holding an earlier
// token is now stale.
func (panel *Panel) Issue() Token {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	panel.issued++
	return panel.issued
}

// Latest reports whether token is the most recently issued one.
func (panel *Panel) Latest(token Token) bool {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return token == panel.issued
}

// Replace installs fragment if token is still the latest issued token
// and reports whether it did. A stale token leaves the panel as it
// was.
func (panel *Panel) Replace(token Token, fragment *Fragment) bool {
	return panel.replaceCommit(token, fragment, nil)
}

// replaceCommit is Replace with a commit function that runs under the
// panel's lock, after the fragment is installed and only if it was.
// Controllers use it to make the fragment swap and the state it
// reflects visible together.
func (panel *Panel) replaceCommit(token Token, fragment *Fragment, commit func()) bool {
	panel.mu.Lock()
	if token != panel.issued {
		panel.mu.Unlock()
		return false
	}
	panel.fragment = fragment
	panel.generation++
	if commit != nil {
		commit()
	}
	callback := panel.onChange
	panel.mu.Unlock()

	if callback != nil {
		callback(panel.id)
	}
	return true
}

// Clear empties the panel and invalidates every outstanding token.
func (panel *Panel) Clear() {
	panel.mu.Lock()
	panel.issued++
	panel.fragment = nil
	panel.generation++
	callback := panel.onChange
	panel.mu.Unlock()

	if callback != nil {
		callback(panel.id)
	}
}

// Fragment returns the current fragment, nil before the first load.
func (panel *Panel) Fragment() *Fragment {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.fragment
}

// Generation counts fragment changes. Actions listed at one
// generation are rejected by Dispatch at any other.
func (panel *Panel) Generation() uint64 {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.generation
}

// Mutate applies a local edit to the current fragment. The edit runs
// on a private copy; the result replaces the fragment without
// consuming a request token. Mutating an empty panel is an error.
func (panel *Panel) Mutate(edit func(document *goquery.Document) error) error {
	panel.mu.Lock()
	current := panel.fragment
	generation := panel.generation
	panel.mu.Unlock()

	if current == nil {
		return fmt.Errorf("panel %s: nothing loaded", panel.id)
	}

	document, err := goquery.NewDocumentFromReader(strings.NewReader(current.html))
	if err != nil {
		return fmt.Errorf("panel %s: copying fragment: %w", panel.id, err)
	}
	if err := edit(document); err != nil {
		return err
	}
	html, err := document.Find("body").Html()
	if err != nil {
		return fmt.Errorf("panel %s: rendering fragment: %w", panel.id, err)
	}
	next, err := ParseFragment(html)
	if err != nil {
		return err
	}

	panel.mu.Lock()
	if panel.generation != generation {
		panel.mu.Unlock()
		return ErrSuperseded
	}
	panel.fragment = next
	panel.generation++
	callback := panel.onChange
	panel.mu.Unlock()

	if callback != nil {
		callback(panel.id)
	}
	return nil
}

// Bind registers a delegated binding.
func (panel *Panel) Bind(binding Binding) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	panel.bindings = append(panel.bindings, &binding)
}

// Actions lists every element of the current fragment matched by a
// binding, in binding order and then document order.
func (panel *Panel) Actions() []Action {
	panel.mu.Lock()
	fragment := panel.fragment
	bindings := panel.bindings
	generation := panel.generation
	panel.mu.Unlock()

	var actions []Action
	for _, binding := range bindings {
		fragment.Find(binding.Selector).Each(func(_ int, element *goquery.Selection) {
			action := Action{
				Panel:      panel.id,
				Verb:       binding.Verb,
				element:    element,
				binding:    binding,
				generation: generation,
			}
			if binding.Describe != nil {
				action.Subject = binding.Describe(element)
			} else {
				action.Subject = CollapseText(element.Text())
			}
			if binding.Prompt != nil {
				action.Prompt = binding.Prompt(element)
			}
			actions = append(actions, action)
		})
	}
	return actions
}

// Dispatch runs an action's handler. The action must come from this
// panel's current fragment; an action listed before the fragment
// changed returns ErrSuperseded without running. Dispatch does not
// ask for confirmation; callers handle Prompt first.
func (panel *Panel) Dispatch(ctx context.Context, action Action) error {
	if action.Panel != panel.id || action.binding == nil {
		return fmt.Errorf("panel %s: action belongs to panel %q", panel.id, action.Panel)
	}
	if panel.Generation() != action.generation {
		return ErrSuperseded
	}
	return action.binding.Handle(ctx, action.element)
}
