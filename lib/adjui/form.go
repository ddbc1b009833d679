// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/adjudicator/lib/adjudication"
)

// formPurpose says what submitting a form does.
type formPurpose int

const (
	// formCanonical submits the record service's modal form.
	formCanonical formPurpose = iota
	// formSearch runs a search with the edited form.
	formSearch
	// formRelationship adds a relationship edge.
	formRelationship
)

// formEditor edits a list of fields one at a time. Text fields use a
// textinput; select fields cycle through their options with left and
// right. Hidden fields are carried through to Values but never shown.
type formEditor struct {
	title      string
	purpose    formPurpose
	population adjudication.Population

	// generation is the modal panel generation the form was built
	// from, for formCanonical.
	generation uint64

	fields   []adjudication.FormField
	inputs   []textinput.Model
	choices  []int
	editable []int
	focus    int
}

func newFormEditor(title string, purpose formPurpose, fields []adjudication.FormField) *formEditor {
	editor := &formEditor{
		title:   title,
		purpose: purpose,
		fields:  fields,
		inputs:  make([]textinput.Model, len(fields)),
		choices: make([]int, len(fields)),
	}
	for index, field := range fields {
		if field.Hidden {
			continue
		}
		editor.editable = append(editor.editable, index)
		if len(field.Options) > 0 {
			editor.choices[index] = max(slices.Index(field.Options, field.Value), 0)
			continue
		}
		input := textinput.New()
		input.Prompt = ""
		input.Width = 40
		input.SetValue(field.Value)
		editor.inputs[index] = input
	}
	editor.focusField(0)
	return editor
}

// relationshipFields are the inputs of the add-relationship form.
func relationshipFields() []adjudication.FormField {
	return []adjudication.FormField{
		{Name: "child", Label: "Child key"},
		{Name: "parent", Label: "Parent key"},
		{Name: "type", Label: "Relationship", Value: "part-of"},
	}
}

// current returns the field index that has focus, -1 when the form
// has no editable fields.
func (editor *formEditor) current() int {
	if len(editor.editable) == 0 {
		return -1
	}
	return editor.editable[editor.focus]
}

func (editor *formEditor) focusField(position int) tea.Cmd {
	if len(editor.editable) == 0 {
		return nil
	}
	if index := editor.current(); len(editor.fields[index].Options) == 0 {
		editor.inputs[index].Blur()
	}
	editor.focus = (position + len(editor.editable)) % len(editor.editable)
	if index := editor.current(); len(editor.fields[index].Options) == 0 {
		return editor.inputs[index].Focus()
	}
	return nil
}

// Update handles a key while the form has focus. Submission and
// cancellation are the caller's concern.
func (editor *formEditor) Update(message tea.KeyMsg, keys KeyMap) tea.Cmd {
	switch {
	case key.Matches(message, keys.NextField):
		return editor.focusField(editor.focus + 1)
	case key.Matches(message, keys.PrevField):
		return editor.focusField(editor.focus - 1)
	}

	index := editor.current()
	if index < 0 {
		return nil
	}
	if options := editor.fields[index].Options; len(options) > 0 {
		switch message.Type {
		case tea.KeyLeft:
			editor.choices[index] = (editor.choices[index] - 1 + len(options)) % len(options)
		case tea.KeyRight, tea.KeySpace:
			editor.choices[index] = (editor.choices[index] + 1) % len(options)
		}
		return nil
	}

	var command tea.Cmd
	editor.inputs[index], command = editor.inputs[index].Update(message)
	return command
}

// forward passes a non-key message (cursor blink) to the focused text
// input.
func (editor *formEditor) forward(message tea.Msg) tea.Cmd {
	index := editor.current()
	if index < 0 || len(editor.fields[index].Options) > 0 {
		return nil
	}
	var command tea.Cmd
	editor.inputs[index], command = editor.inputs[index].Update(message)
	return command
}

// Value returns the current value of the field named name.
func (editor *formEditor) Value(name string) string {
	for index, field := range editor.fields {
		if field.Name == name {
			return editor.value(index)
		}
	}
	return ""
}

func (editor *formEditor) value(index int) string {
	field := editor.fields[index]
	switch {
	case field.Hidden:
		return field.Value
	case len(field.Options) > 0:
		return field.Options[editor.choices[index]]
	default:
		return editor.inputs[index].Value()
	}
}

// Values returns every field, hidden ones included, as a form body.
func (editor *formEditor) Values() url.Values {
	values := url.Values{}
	for index, field := range editor.fields {
		values.Add(field.Name, editor.value(index))
	}
	return values
}

// box renders the form. status, when set, is shown under the fields
// in its own color (the modal's flash).
func (editor *formEditor) box(theme Theme, keys KeyMap, status string, statusColor lipgloss.Color) overlayBox {
	labelWidth := 0
	for _, index := range editor.editable {
		labelWidth = max(labelWidth, len(editor.fields[index].Label))
	}

	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText).Background(theme.OverlayBackground)
	focusStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ActiveTab).Background(theme.OverlayBackground)

	var body []string
	for position, index := range editor.editable {
		field := editor.fields[index]
		label := labelStyle.Render(fmt.Sprintf("%-*s  ", labelWidth, field.Label))
		marker := "  "
		if position == editor.focus {
			label = focusStyle.Render(fmt.Sprintf("%-*s  ", labelWidth, field.Label))
			marker = focusStyle.Render("> ")
		}
		var value string
		if len(field.Options) > 0 {
			choice := field.Options[editor.choices[index]]
			if choice == "" {
				choice = "(none)"
			}
			value = "‹ " + choice + " ›"
		} else {
			value = editor.inputs[index].View()
		}
		body = append(body, marker+label+value)
	}
	if len(editor.editable) == 0 {
		body = append(body, "(no editable fields)")
	}
	if status != "" {
		body = append(body, "", lipgloss.NewStyle().Foreground(statusColor).Background(theme.OverlayBackground).Render(status))
	}

	return overlayBox{
		Title: editor.title,
		Body:  body,
		Footer: keys.Submit.Help().Key + " submit  " +
			keys.NextField.Help().Key + " next field  " +
			keys.Cancel.Help().Key + " cancel",
	}
}
