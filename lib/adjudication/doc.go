// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package adjudication keeps an adjudication session consistent: the
// selected canonical event, the bounded set of candidate events
// attached to it, the location that mirrors both, and the panels
// fetched from the record service.
//
// A Session is the unit of ownership. It holds the current Selection,
// the Location (query parameters plus navigable history), the Flash
// notification slot, a loading Indicator, and one Panel per region of
// the screen: grid, candidate search, canonical search, recent
// candidates, recent canonicals, hierarchy, and modal. Controllers
// hanging off the Session implement every user operation:
//
//   - GridController refreshes the grid for a Selection and is the only
//     place the Selection changes.
//   - SearchController (one per Population) runs searches, keeps the
//     tab's dirty marker, and mirrors the service's echoed query.
//   - RelationshipController adds and deletes typed edges between
//     canonical events and renders the hierarchy around one of them.
//   - FlagController sets and clears review flags on candidate events
//     and refreshes the grid and candidate search afterwards.
//   - CanonicalController drives the add/edit modal and canonical
//     deletion.
//
// Every controller follows the same protocol: validate locally
// (ValidationError, no request sent), issue the request, and only on
// success replace the panel, commit state, and update the Location.
// A failed request leaves every panel and the Selection untouched and
// puts the service's text in the Flash.
//
// Each Panel hands out a monotonically increasing request token per
// fetch and accepts a response only for the latest token. Older
// responses are dropped and the controller returns ErrSuperseded.
//
// Interactive elements inside fragments are handled by delegation: a
// Panel carries selector bindings registered once, and Actions lists
// the elements of the current fragment that match them. Replacing the
// fragment therefore never requires re-binding.
package adjudication
