// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fragment is an immutable parsed HTML fragment as returned by the
// record service. Panels never edit a Fragment in place; local edits
// produce a new one (see Panel.Mutate).
type Fragment struct {
	html     string
	document *goquery.Document
}

// ParseFragment parses an HTML fragment.
func ParseFragment(html string) (*Fragment, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return &Fragment{html: html, document: document}, nil
}

// HTML returns the fragment source.
func (fragment *Fragment) HTML() string {
	if fragment == nil {
		return ""
	}
	return fragment.html
}

// Find returns the elements matching a CSS selector. A nil Fragment
// matches nothing.
func (fragment *Fragment) Find(selector string) *goquery.Selection {
	if fragment == nil {
		return (&goquery.Selection{}).Find(selector)
	}
	return fragment.document.Find(selector)
}

// Text returns the fragment's readable text: one line per block of
// text, whitespace collapsed, blank lines dropped.
func (fragment *Fragment) Text() string {
	if fragment == nil {
		return ""
	}
	var lines []string
	fragment.document.Find("body").Each(func(_ int, body *goquery.Selection) {
		collectText(body, &lines)
	})
	return strings.Join(lines, "\n")
}

// blockElements start a new line in Text output.
var blockElements = map[string]bool{
	"div": true, "p": true, "li": true, "tr": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "table": true, "ul": true,
	"ol": true, "form": true, "br": true, "section": true,
}

func collectText(selection *goquery.Selection, lines *[]string) {
	var current strings.Builder
	flush := func() {
		if text := CollapseText(current.String()); text != "" {
			*lines = append(*lines, text)
		}
		current.Reset()
	}
	selection.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		switch {
		case name == "#text":
			current.WriteString(child.Text())
			current.WriteString(" ")
		case name == "script" || name == "style":
		case blockElements[name]:
			flush()
			collectText(child, lines)
		default:
			current.WriteString(child.Text())
			current.WriteString(" ")
		}
	})
	flush()
}

// CollapseText trims s and collapses internal runs of whitespace to a
// single space.
func CollapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// idSuffix returns the part of an element's id after the first
// underscore ("candidate-event_42" yields "42").
func idSuffix(selection *goquery.Selection) string {
	_, suffix, _ := strings.Cut(selection.AttrOr("id", ""), "_")
	return suffix
}

// GridCanonical returns the id and key of the canonical event shown in
// a grid fragment. Both are empty when the grid has none.
func GridCanonical(fragment *Fragment) (id, key string) {
	metadata := fragment.Find("div.canonical-event-metadata").First()
	if metadata.Length() == 0 {
		return "", ""
	}
	return idSuffix(metadata), metadata.AttrOr("data-key", "")
}

// GridCandidates returns the candidate event ids shown in a grid
// fragment, in column order.
func GridCandidates(fragment *Fragment) []string {
	var ids []string
	fragment.Find(".candidate-event").Each(func(_ int, column *goquery.Selection) {
		id := column.AttrOr("data-event", "")
		if id == "" {
			id = idSuffix(column)
		}
		if id != "" {
			ids = append(ids, id)
		}
	})
	return ids
}

// candidateColumnID returns the candidate event id of the grid column
// containing element.
func candidateColumnID(element *goquery.Selection) string {
	column := element.Closest(".candidate-event")
	if id := column.AttrOr("data-event", ""); id != "" {
		return id
	}
	return idSuffix(column)
}

// HierarchyRole is a node's position relative to the hierarchy root.
type HierarchyRole string

const (
	HierarchyParent HierarchyRole = "parent"
	HierarchyChild  HierarchyRole = "child"
)

// HierarchyEdge is one edge as rendered in a hierarchy fragment. Every
// node carries the ids of both ends and the edge type, so deleting an
// edge needs no further lookup.
type HierarchyEdge struct {
	// Role is the node's position relative to the root.
	Role HierarchyRole

	// NodeID and NodeKey identify the rendered node.
	NodeID  string
	NodeKey string

	// ChildID and ParentID are the canonical event ids at each end of
	// the edge, in the order the service expects for deletion.
	ChildID  string
	ParentID string

	Type string
}

// HierarchyEdges returns every deletable edge in a hierarchy fragment.
func HierarchyEdges(fragment *Fragment) []HierarchyEdge {
	var edges []HierarchyEdge
	fragment.Find(".hierarchy-parent, .hierarchy-child").Each(func(_ int, node *goquery.Selection) {
		if edge, ok := hierarchyEdgeOf(node); ok {
			edges = append(edges, edge)
		}
	})
	return edges
}

// hierarchyEdgeOf reads the edge for a node element, or for the node
// enclosing element. The wrapper holds the id of the node the
// hierarchy is drawn around.
func hierarchyEdgeOf(element *goquery.Selection) (HierarchyEdge, bool) {
	node := element.Closest(".hierarchy-parent, .hierarchy-child")
	if node.Length() == 0 {
		return HierarchyEdge{}, false
	}
	wrapperID := node.Closest(".hierarchy-wrapper").AttrOr("data-id", "")
	edge := HierarchyEdge{
		NodeID:  node.AttrOr("data-id", ""),
		NodeKey: node.AttrOr("data-key", ""),
		Type:    node.AttrOr("data-type", ""),
	}
	if node.HasClass("hierarchy-parent") {
		edge.Role = HierarchyParent
		edge.ChildID, edge.ParentID = wrapperID, edge.NodeID
	} else {
		edge.Role = HierarchyChild
		edge.ChildID, edge.ParentID = edge.NodeID, wrapperID
	}
	return edge, edge.ChildID != "" && edge.ParentID != ""
}

// matchesEdge reports whether node renders edge.
func matchesEdge(node *goquery.Selection, edge HierarchyEdge) bool {
	current, ok := hierarchyEdgeOf(node)
	return ok && current.Role == edge.Role &&
		current.ChildID == edge.ChildID &&
		current.ParentID == edge.ParentID &&
		current.Type == edge.Type
}

// ExportIDs returns the canonical event ids offered for export in a
// canonical search fragment.
func ExportIDs(fragment *Fragment) []string {
	var ids []string
	fragment.Find(".export-checkbox").Each(func(_ int, checkbox *goquery.Selection) {
		if value := checkbox.AttrOr("value", ""); value != "" {
			ids = append(ids, value)
		}
	})
	return ids
}

// FormField is one named input of a form fragment.
type FormField struct {
	Name  string
	Label string
	Value string

	// Options holds the choices of a select element, in order.
	Options []string

	// Hidden marks an <input type="hidden">: submitted, never edited.
	Hidden bool
}

// FormFields returns the named inputs, textareas, and selects of a
// fragment in document order. Submit buttons and unnamed inputs are
// skipped. A field's label comes from a <label for=...> when present.
func FormFields(fragment *Fragment) []FormField {
	labels := make(map[string]string)
	fragment.Find("label[for]").Each(func(_ int, label *goquery.Selection) {
		labels[label.AttrOr("for", "")] = CollapseText(label.Text())
	})

	var fields []FormField
	fragment.Find("input[name], textarea[name], select[name]").Each(func(_ int, element *goquery.Selection) {
		inputType := strings.ToLower(element.AttrOr("type", "text"))
		if inputType == "submit" || inputType == "button" {
			return
		}
		if (inputType == "checkbox" || inputType == "radio") && !element.Is("[checked]") {
			return
		}
		field := FormField{Name: element.AttrOr("name", ""), Hidden: inputType == "hidden"}
		field.Label = labels[element.AttrOr("id", "")]
		if field.Label == "" {
			field.Label = field.Name
		}
		switch goquery.NodeName(element) {
		case "textarea":
			field.Value = element.Text()
		case "select":
			element.Find("option").Each(func(_ int, option *goquery.Selection) {
				value := option.AttrOr("value", CollapseText(option.Text()))
				field.Options = append(field.Options, value)
				if option.Is("[selected]") {
					field.Value = value
				}
			})
			if field.Value == "" && len(field.Options) > 0 {
				field.Value = field.Options[0]
			}
		default:
			field.Value = element.AttrOr("value", "")
		}
		fields = append(fields, field)
	})
	return fields
}
