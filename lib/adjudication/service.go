// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"net/url"

	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

// RecordService is the subset of the record service a Session uses.
// *recordservice.Client implements it; tests substitute fakes.
type RecordService interface {
	LoadGrid(ctx context.Context, canonicalKey, candidates string) (string, error)
	LoadRecentCandidateEvents(ctx context.Context) (string, error)
	LoadRecentCanonicalEvents(ctx context.Context) (string, error)

	Search(ctx context.Context, population string, form url.Values) (*recordservice.SearchResult, error)
	SearchCanonicalAutocomplete(ctx context.Context, term string) ([]string, error)

	AddCanonicalRelationship(ctx context.Context, key1, key2, relationshipType string) error
	DeleteCanonicalRelationship(ctx context.Context, id1, id2, relationshipType string) error
	LoadCanonicalHierarchy(ctx context.Context, key string) (string, error)

	AddEventFlag(ctx context.Context, eventID, flag string) error
	DeleteEventFlag(ctx context.Context, eventID, flag string) error

	ModalView(ctx context.Context, request recordservice.ModalViewRequest) (string, error)
	ModalEdit(ctx context.Context, variable, mode string, form url.Values) (string, error)
	AddCanonicalRecord(ctx context.Context, canonicalEventID, cecID string) (string, error)
	DeleteCanonicalRecord(ctx context.Context, celID string) error
	AddCanonicalLink(ctx context.Context, canonicalEventID, articleID string) error
	DeleteCanonicalLink(ctx context.Context, articleID string) error
	DeleteCanonical(ctx context.Context, key string) (string, error)

	DownloadCanonical(ctx context.Context, ids []string) (*recordservice.Download, error)
}

var _ RecordService = (*recordservice.Client)(nil)

// Confirmer answers a yes/no question before a destructive operation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls the function.
func (confirm ConfirmFunc) Confirm(prompt string) bool { return confirm(prompt) }
