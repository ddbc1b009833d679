// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package history persists an adjudication session's location history
// between runs so that `adjudicator open --resume` picks up where the
// previous session left off.
//
// A snapshot file is a CBOR envelope holding a format version, the
// deterministic CBOR encoding of the [Snapshot], and a BLAKE3 keyed
// digest of that encoding. [Read] recomputes the digest and rejects a
// file whose payload does not match with [ErrCorrupt], so a truncated
// or hand-edited file is never restored silently.
//
// Files are written atomically (write to temporary file, fsync,
// rename) so readers never see a partial snapshot.
package history
