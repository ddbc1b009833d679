// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// AutocompleteMinLength is the shortest term sent for autocompletion.
const AutocompleteMinLength = 2

// deleteEdgePrompt is the confirmation question for edge deletion.
const deleteEdgePrompt = "Are you sure you want to delete this relationship?"

// RelationshipController edits the typed parent/child graph between
// canonical events and owns the hierarchy panel.
type RelationshipController struct {
	session *Session
	panel   *Panel

	mu   sync.Mutex
	root string
}

// Panel returns the hierarchy panel.
func (relationships *RelationshipController) Panel() *Panel { return relationships.panel }

// Root returns the key of the canonical event the hierarchy panel is
// drawn around, empty before the first view.
func (relationships *RelationshipController) Root() string {
	relationships.mu.Lock()
	defer relationships.mu.Unlock()
	return relationships.root
}

// AddEdge creates an edge of relationshipType from the canonical event
// keyed childKey to the one keyed parentKey. Missing or identical keys
// are rejected locally; anything the service rejects (unknown key,
// duplicate edge) is shown in the Flash. No panel changes either way.
func (relationships *RelationshipController) AddEdge(ctx context.Context, childKey, parentKey, relationshipType string) error {
	childKey, parentKey = strings.TrimSpace(childKey), strings.TrimSpace(parentKey)
	flash := relationships.session.flash
	if childKey == "" || parentKey == "" {
		return flash.Error(validationf("Please enter a key for both values."))
	}
	if childKey == parentKey {
		return flash.Error(validationf("Please enter two different keys."))
	}
	if err := relationships.session.service.AddCanonicalRelationship(ctx, childKey, parentKey, relationshipType); err != nil {
		return flash.Error(err)
	}
	relationships.session.logger.Info("relationship added",
		"child", childKey,
		"parent", parentKey,
		"type", relationshipType,
	)
	flash.Success("Relationship added.")
	return nil
}

// ViewHierarchy loads the hierarchy around the canonical event keyed
// rootKey into the hierarchy panel.
func (relationships *RelationshipController) ViewHierarchy(ctx context.Context, rootKey string) error {
	rootKey = strings.TrimSpace(rootKey)
	if rootKey == "" {
		return relationships.session.flash.Error(validationf("Please enter a key."))
	}
	session := relationships.session
	return session.fetch(ctx, relationships.panel, true,
		func(ctx context.Context) (string, error) {
			return session.service.LoadCanonicalHierarchy(ctx, rootKey)
		},
		func() {
			relationships.mu.Lock()
			relationships.root = rootKey
			relationships.mu.Unlock()
		},
	)
}

// Edges returns the deletable edges of the current hierarchy.
func (relationships *RelationshipController) Edges() []HierarchyEdge {
	return HierarchyEdges(relationships.panel.Fragment())
}

// DeletePrompt returns the question to confirm before deleting edge.
func (relationships *RelationshipController) DeletePrompt(edge HierarchyEdge) string {
	return deleteEdgePrompt
}

// DeleteEdge deletes edge on the service and then removes only that
// edge's node (with anything nested under it) from the hierarchy
// panel. It does not ask for confirmation; see ConfirmDeleteEdge.
func (relationships *RelationshipController) DeleteEdge(ctx context.Context, edge HierarchyEdge) error {
	session := relationships.session
	if err := session.service.DeleteCanonicalRelationship(ctx, edge.ChildID, edge.ParentID, edge.Type); err != nil {
		return session.flash.Error(err)
	}

	err := relationships.panel.Mutate(func(document *goquery.Document) error {
		document.Find(".hierarchy-parent, .hierarchy-child").FilterFunction(func(_ int, node *goquery.Selection) bool {
			return matchesEdge(node, edge)
		}).Remove()
		return nil
	})
	if err != nil && !errors.Is(err, ErrSuperseded) {
		session.logger.Warn("removing deleted edge from hierarchy", "error", err)
	}
	session.logger.Info("relationship deleted",
		"child_id", edge.ChildID,
		"parent_id", edge.ParentID,
		"type", edge.Type,
	)
	session.flash.Success("Relationship deleted.")
	return nil
}

// ConfirmDeleteEdge asks confirmer and deletes edge only on a yes.
// Declining returns ErrDeclined and sends nothing.
func (relationships *RelationshipController) ConfirmDeleteEdge(ctx context.Context, confirmer Confirmer, edge HierarchyEdge) error {
	if !confirmer.Confirm(relationships.DeletePrompt(edge)) {
		return ErrDeclined
	}
	return relationships.DeleteEdge(ctx, edge)
}

// Autocomplete returns canonical event keys matching term, best fuzzy
// match first. Terms shorter than AutocompleteMinLength return nothing
// without a request. Failures are returned but not flashed.
func (relationships *RelationshipController) Autocomplete(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < AutocompleteMinLength {
		return nil, nil
	}
	keys, err := relationships.session.service.SearchCanonicalAutocomplete(ctx, term)
	if err != nil {
		relationships.session.logger.Debug("autocomplete failed", "term", term, "error", err)
		return nil, err
	}
	return rankKeys(keys, term), nil
}

// rankKeys orders keys by fzf score against term. Keys the matcher
// rejects keep their service order after every match.
func rankKeys(keys []string, term string) []string {
	pattern := []rune(strings.ToLower(term))
	slab := util.MakeSlab(100*1024, 2048)

	type scored struct {
		key   string
		score int
	}
	ranked := make([]scored, 0, len(keys))
	for _, key := range keys {
		chars := util.ToChars([]byte(key))
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		score := -1
		if result.Start >= 0 {
			score = result.Score
		}
		ranked = append(ranked, scored{key: key, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, len(ranked))
	for index, entry := range ranked {
		out[index] = entry.key
	}
	return out
}
