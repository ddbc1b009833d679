// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/adjudicator/lib/adjudication"
)

// promptPurpose says what a single-line prompt's value is for.
type promptPurpose int

const (
	promptAddCandidate promptPurpose = iota
	promptSelectCanonical
	promptSearchTerm
	promptHierarchy
	promptExportDirectory
)

// prompt is a one-line input overlay. Prompts that take a canonical
// event key offer the record service's autocompletions as suggestions
// (Tab accepts).
type prompt struct {
	title        string
	purpose      promptPurpose
	population   adjudication.Population
	autocomplete bool
	input        textinput.Model
}

func newPrompt(title string, purpose promptPurpose, initial string) *prompt {
	input := textinput.New()
	input.Prompt = "> "
	input.Width = 48
	input.SetValue(initial)
	input.CursorEnd()
	input.Focus()
	return &prompt{
		title:        title,
		purpose:      purpose,
		autocomplete: purpose == promptSelectCanonical || purpose == promptHierarchy,
		input:        input,
	}
}

// Update forwards a key to the input and reports whether the value
// changed.
func (prompt *prompt) Update(message tea.Msg) (tea.Cmd, bool) {
	before := prompt.input.Value()
	var command tea.Cmd
	prompt.input, command = prompt.input.Update(message)
	return command, prompt.input.Value() != before
}

// Value returns the entered text.
func (prompt *prompt) Value() string { return prompt.input.Value() }

// suggest installs autocompletions for term if the input still holds
// term.
func (prompt *prompt) suggest(term string, keys []string) {
	if prompt.input.Value() != term {
		return
	}
	prompt.input.ShowSuggestions = len(keys) > 0
	prompt.input.SetSuggestions(keys)
}

func (prompt *prompt) box(keys KeyMap) overlayBox {
	body := []string{prompt.input.View()}
	if prompt.autocomplete {
		body = append(body, "", "Tab completes a suggested key.")
	}
	return overlayBox{
		Title:  prompt.title,
		Body:   body,
		Footer: "Enter accept  " + keys.Cancel.Help().Key + " cancel",
	}
}
