// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package adjui is the terminal front end for an adjudication
// session. Built on bubbletea (Elm architecture), it renders each
// panel of an [adjudication.Session] as readable text with a list of
// the actions bound to it, and routes keystrokes to the session's
// controllers.
//
// The model never holds panel content of its own. Every View reads the
// session's current fragments, so a change notification only has to
// trigger a re-render. [Attach] routes the session's panel, flash, and
// loading notifications into a running tea.Program.
//
// Destructive actions open a confirmation overlay before they are
// dispatched. Forms returned by the record service (the canonical
// event modal) and the search forms are edited in a field-by-field
// form overlay.
package adjui
