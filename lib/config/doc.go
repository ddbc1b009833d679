// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the adjudicator.
//
// Configuration is loaded from a single file specified by either the
// ADJUDICATOR_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search: with
// neither set, [Load] returns [Default].
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas; every other extension is YAML. Both formats use
// the same field names.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Service, UI, Log, Session
//   - [Default] -- returns a Config with defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other adjudicator packages.
package config
