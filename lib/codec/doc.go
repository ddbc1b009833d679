// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the adjudicator's standard CBOR encoding
// configuration.
//
// JSON is what the record service speaks; CBOR is used only for files
// the adjudicator writes for itself, such as the session snapshot read
// by --resume. This package holds the shared encoding and decoding
// modes so every writer encodes identically. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. Same logical data
// always produces identical bytes, which is what lets a digest over
// the encoding detect corruption.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types serialized only as CBOR carry `cbor` struct tags.
// fxamacker/cbor reads `json` tags as a fallback when `cbor` tags are
// absent.
package codec
