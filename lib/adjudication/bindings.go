// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// subjectLimit bounds the length of an action's subject text.
const subjectLimit = 60

// bind registers the delegated bindings of every panel. Selectors are
// the class names the record service's templates use.
func (session *Session) bind() {
	grid := session.grid
	flags := session.flags

	gridPanel := session.panels[PanelGrid]
	gridPanel.Bind(Binding{
		Selector: ".remove-candidate",
		Verb:     "Remove candidate",
		Describe: describeCandidateColumn,
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.RemoveCandidate(ctx, candidateColumnID(element))
		},
	})
	for _, toggle := range []struct {
		selector  string
		verb      string
		operation FlagOperation
		flag      Flag
	}{
		{".add-completed", "Mark completed", FlagAdd, FlagCompleted},
		{".add-flag", "Flag for review", FlagAdd, FlagForReview},
		{".remove-completed", "Unmark completed", FlagDelete, FlagCompleted},
		{".remove-flag", "Clear review flag", FlagDelete, FlagForReview},
	} {
		gridPanel.Bind(Binding{
			Selector: toggle.selector,
			Verb:     toggle.verb,
			Describe: describeCandidateColumn,
			Handle: func(ctx context.Context, element *goquery.Selection) error {
				return flags.Toggle(ctx, candidateColumnID(element), toggle.operation, toggle.flag)
			},
		})
	}
	gridPanel.Bind(Binding{
		Selector: ".add-val",
		Verb:     "Add value",
		Describe: func(element *goquery.Selection) string {
			return gridVariable(element) + ": " + summarize(element.Closest(".expanded-event-variable"))
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.AddRecord(ctx, gridVariable(element), element.AttrOr("data-key", ""))
		},
	})
	gridPanel.Bind(Binding{
		Selector: ".add-link",
		Verb:     "Link article",
		Describe: func(element *goquery.Selection) string {
			return "article " + element.Closest(".candidate-event").AttrOr("data-article", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.AddLink(ctx, element.Closest(".candidate-event").AttrOr("data-article", ""))
		},
	})
	gridPanel.Bind(Binding{
		Selector: ".remove-canonical",
		Verb:     "Remove value",
		Describe: func(element *goquery.Selection) string {
			cell := element.Closest(".expanded-event-variable")
			return cell.AttrOr("data-var", "") + ": " + summarize(cell)
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			cell := element.Closest(".expanded-event-variable")
			return grid.RemoveRecord(ctx, cell.AttrOr("data-var", ""), cell.AttrOr("data-key", ""))
		},
	})
	gridPanel.Bind(Binding{
		Selector: ".remove-link",
		Verb:     "Unlink article",
		Describe: func(element *goquery.Selection) string {
			return "article " + element.AttrOr("data-article", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.RemoveLink(ctx, element.AttrOr("data-article", ""))
		},
	})
	gridPanel.Bind(Binding{
		Selector: "div.canonical-event-metadata a.glyphicon-remove-sign",
		Verb:     "Clear canonical event",
		Describe: func(element *goquery.Selection) string {
			return element.Closest(".canonical-event-metadata").AttrOr("data-key", "")
		},
		Handle: func(ctx context.Context, _ *goquery.Selection) error {
			return grid.ClearCanonical(ctx)
		},
	})
	gridPanel.Bind(Binding{
		Selector: ".edit-canonical",
		Verb:     "Edit canonical event",
		Describe: func(element *goquery.Selection) string {
			return element.Closest(".canonical-event-metadata").AttrOr("data-key", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return session.canonical.Edit(ctx, element.Closest(".canonical-event-metadata").AttrOr("data-key", ""))
		},
	})
	gridPanel.Bind(Binding{
		Selector: ".add-dummy",
		Verb:     "Add new value",
		Describe: func(element *goquery.Selection) string {
			return element.Closest(".expanded-event-variable-name").AttrOr("data-var", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return session.canonical.AddValue(ctx, element.Closest(".expanded-event-variable-name").AttrOr("data-var", ""))
		},
	})

	addCandidate := Binding{
		Selector: ".cand-makeactive",
		Verb:     "Add to grid",
		Describe: describeEventDesc,
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.AddCandidate(ctx, element.Closest(".event-desc").AttrOr("data-event", ""))
		},
	}
	session.panels[PanelCandidateSearch].Bind(addCandidate)
	session.panels[PanelRecentCandidates].Bind(addCandidate)

	selectCanonical := Binding{
		Selector: ".canonical-makeactive",
		Verb:     "Select canonical event",
		Describe: describeEventDesc,
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.SelectCanonical(ctx, element.Closest(".event-desc").AttrOr("data-key", ""))
		},
	}
	addLinkedCandidate := Binding{
		Selector: ".canonical-cand-makeactive",
		Verb:     "Add candidate to grid",
		Describe: func(element *goquery.Selection) string {
			return "event " + element.AttrOr("data-event", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.AddCandidate(ctx, element.AttrOr("data-event", ""))
		},
	}
	for _, id := range []PanelID{PanelCanonicalSearch, PanelRecentCanonicals} {
		session.panels[id].Bind(selectCanonical)
		session.panels[id].Bind(addLinkedCandidate)
	}

	canonicalSearch := session.canonicalSearch
	session.panels[PanelCanonicalSearch].Bind(Binding{
		Selector: ".export-checkbox",
		Verb:     "Toggle export",
		Describe: func(element *goquery.Selection) string {
			id := element.AttrOr("value", "")
			mark := "[ ]"
			if canonicalSearch.Exporting(id) {
				mark = "[x]"
			}
			return mark + " " + describeEventDesc(element)
		},
		Handle: func(_ context.Context, element *goquery.Selection) error {
			canonicalSearch.ToggleExport(element.AttrOr("value", ""))
			return nil
		},
	})

	relationships := session.relationships
	hierarchy := session.panels[PanelHierarchy]
	hierarchy.Bind(Binding{
		Selector: ".hierarchy-wrapper .glyphicon-export",
		Verb:     "Open in grid",
		Describe: func(element *goquery.Selection) string {
			return element.Parent().AttrOr("data-key", "")
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			return grid.SelectCanonical(ctx, element.Parent().AttrOr("data-key", ""))
		},
	})
	hierarchy.Bind(Binding{
		Selector: ".hierarchy-parent .glyphicon-trash, .hierarchy-child .glyphicon-trash",
		Verb:     "Delete relationship",
		Describe: func(element *goquery.Selection) string {
			edge, _ := hierarchyEdgeOf(element)
			return fmt.Sprintf("%s %s (%s)", edge.Role, edge.NodeKey, edge.Type)
		},
		Prompt: func(element *goquery.Selection) string {
			edge, _ := hierarchyEdgeOf(element)
			return relationships.DeletePrompt(edge)
		},
		Handle: func(ctx context.Context, element *goquery.Selection) error {
			edge, ok := hierarchyEdgeOf(element)
			if !ok {
				return session.flash.Error(validationf("Relationship is missing its ids."))
			}
			return relationships.DeleteEdge(ctx, edge)
		},
	})
}

// gridVariable returns the variable name of the grid cell containing
// element.
func gridVariable(element *goquery.Selection) string {
	variable, _, _ := strings.Cut(element.Closest(".expanded-event-variable").AttrOr("data-var", ""), "_")
	return variable
}

func describeCandidateColumn(element *goquery.Selection) string {
	return "event " + candidateColumnID(element)
}

func describeEventDesc(element *goquery.Selection) string {
	description := element.Closest(".event-desc")
	if description.Length() == 0 {
		return summarize(element)
	}
	return summarize(description)
}

// summarize returns the element's collapsed text cut to subjectLimit
// runes.
func summarize(element *goquery.Selection) string {
	text := CollapseText(element.Text())
	if utf8.RuneCountInString(text) <= subjectLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:subjectLimit-1]) + "…"
}
