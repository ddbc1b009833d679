// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"net/url"
	"sync"

	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

// Modal modes.
const (
	ModalAdd  = "add"
	ModalEdit = "edit"
)

// canonicalVariable is the modal variable for the canonical event's
// own metadata.
const canonicalVariable = "canonical"

// canonicalKeyField is the modal form field holding the canonical
// event key.
const canonicalKeyField = "canonical-event-key"

const deleteCanonicalPrompt = "Are you sure you want to delete the current canonical event?"

// CanonicalController drives the modal form for creating and editing
// canonical events and adding values to them, and deletes canonical
// events. The modal has its own Flash, separate from the session's.
type CanonicalController struct {
	session *Session
	panel   *Panel
	flash   *Flash

	mu       sync.Mutex
	open     bool
	variable string
	mode     string
	key      string
}

// Panel returns the modal panel.
func (canonical *CanonicalController) Panel() *Panel { return canonical.panel }

// Flash returns the modal's notification slot.
func (canonical *CanonicalController) Flash() *Flash { return canonical.flash }

// Open reports whether the modal is showing.
func (canonical *CanonicalController) Open() bool {
	canonical.mu.Lock()
	defer canonical.mu.Unlock()
	return canonical.open
}

// Mode returns the open modal's variable and mode.
func (canonical *CanonicalController) Mode() (variable, mode string) {
	canonical.mu.Lock()
	defer canonical.mu.Unlock()
	return canonical.variable, canonical.mode
}

// Close hides the modal and discards its form.
func (canonical *CanonicalController) Close() {
	canonical.mu.Lock()
	canonical.open = false
	canonical.mu.Unlock()
	canonical.panel.Clear()
	canonical.flash.Clear()
}

// New opens the form for creating a canonical event.
func (canonical *CanonicalController) New(ctx context.Context) error {
	return canonical.view(ctx, recordservice.ModalViewRequest{Variable: canonicalVariable}, ModalAdd)
}

// Edit opens the form for editing the canonical event keyed key.
func (canonical *CanonicalController) Edit(ctx context.Context, key string) error {
	return canonical.view(ctx, recordservice.ModalViewRequest{
		Variable: canonicalVariable,
		Key:      key,
		Edit:     true,
	}, ModalEdit)
}

// AddValue opens the form for adding a value of variable to the
// grid's canonical event, offering the articles of the grid's
// candidates.
func (canonical *CanonicalController) AddValue(ctx context.Context, variable string) error {
	selection := canonical.session.Selection()
	_, key := GridCanonical(canonical.session.grid.panel.Fragment())
	if key == "" {
		key = selection.CanonicalKey
	}
	if key == "" {
		return canonical.session.flash.Error(validationf("Please select a canonical event first."))
	}
	return canonical.view(ctx, recordservice.ModalViewRequest{
		Variable:          variable,
		Key:               key,
		CandidateEventIDs: selection.Candidates.IDs(),
	}, ModalAdd)
}

func (canonical *CanonicalController) view(ctx context.Context, request recordservice.ModalViewRequest, mode string) error {
	canonical.flash.Clear()
	token := canonical.panel.Issue()
	html, err := canonical.session.service.ModalView(ctx, request)
	if err != nil {
		if !canonical.panel.Latest(token) {
			return ErrSuperseded
		}
		canonical.session.logger.Warn("loading modal failed", "variable", request.Variable, "error", err)
		canonical.session.flash.Show(FlashError, "Could not load modal.")
		return err
	}
	fragment, err := ParseFragment(html)
	if err != nil {
		return canonical.session.flash.Error(err)
	}
	applied := canonical.panel.replaceCommit(token, fragment, func() {
		canonical.mu.Lock()
		canonical.open = true
		canonical.variable = request.Variable
		canonical.mode = mode
		canonical.key = request.Key
		canonical.mu.Unlock()
	})
	if !applied {
		return ErrSuperseded
	}
	return nil
}

// Fields returns the open form's fields with their current values.
func (canonical *CanonicalController) Fields() []FormField {
	return FormFields(canonical.panel.Fragment())
}

// Submit sends the open form with values. On failure the service's
// text is shown in the modal's Flash and the modal stays open. On
// success the modal closes, the grid reloads (on the submitted key
// when the form has one, so a new or renamed canonical event is
// selected), and the recent canonical events reload.
func (canonical *CanonicalController) Submit(ctx context.Context, values url.Values) error {
	canonical.mu.Lock()
	open, variable, mode := canonical.open, canonical.variable, canonical.mode
	canonical.mu.Unlock()
	if !open {
		return canonical.session.flash.Error(validationf("No form is open."))
	}

	text, err := canonical.session.service.ModalEdit(ctx, variable, mode, values)
	if err != nil {
		return canonical.flash.Error(err)
	}
	canonical.flash.Success("Added successfully.")
	canonical.session.logger.Info("modal submitted", "variable", variable, "mode", mode, "response", text)

	canonical.mu.Lock()
	canonical.open = false
	canonical.mu.Unlock()
	canonical.panel.Clear()

	selection := canonical.session.Selection()
	if _, ok := values[canonicalKeyField]; ok {
		selection.CanonicalKey = values.Get(canonicalKeyField)
	} else if _, key := GridCanonical(canonical.session.grid.panel.Fragment()); key != "" {
		selection.CanonicalKey = key
	}
	if err := canonical.session.grid.Refresh(ctx, selection); err != nil {
		return err
	}
	return canonical.session.recent.ReloadCanonicals(ctx)
}

// DeletePrompt returns the question to confirm before deleting a
// canonical event.
func (canonical *CanonicalController) DeletePrompt() string {
	return deleteCanonicalPrompt
}

// Delete deletes the canonical event keyed key, closes the modal,
// clears the grid's canonical event, and reloads the recent canonical
// events. It does not ask for confirmation; see ConfirmDelete.
func (canonical *CanonicalController) Delete(ctx context.Context, key string) error {
	if key == "" {
		return canonical.session.flash.Error(validationf("Please select a canonical event first."))
	}
	text, err := canonical.session.service.DeleteCanonical(ctx, key)
	if err != nil {
		return canonical.session.flash.Error(err)
	}
	canonical.session.logger.Info("canonical event deleted", "key", key)
	canonical.Close()

	selection := canonical.session.Selection()
	if err := canonical.session.grid.Refresh(ctx, Selection{Candidates: selection.Candidates}); err != nil {
		return err
	}
	if err := canonical.session.recent.ReloadCanonicals(ctx); err != nil {
		return err
	}
	canonical.session.flash.Success(CollapseText(text))
	return nil
}

// ConfirmDelete asks confirmer and deletes only on a yes. Declining
// returns ErrDeclined and sends nothing.
func (canonical *CanonicalController) ConfirmDelete(ctx context.Context, confirmer Confirmer, key string) error {
	if !confirmer.Confirm(canonical.DeletePrompt()) {
		return ErrDeclined
	}
	return canonical.Delete(ctx, key)
}

// EditingKey returns the key the open modal was loaded for, empty for
// a new canonical event.
func (canonical *CanonicalController) EditingKey() string {
	canonical.mu.Lock()
	defer canonical.mu.Unlock()
	return canonical.key
}
