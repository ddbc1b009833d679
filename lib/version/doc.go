// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the
// adjudicator binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit]: short git SHA of the build
//   - [GitDirty]: "true" if there were uncommitted changes
//   - [BuildTime]: UTC timestamp of the build
//   - [Version]: semantic version string, set manually for releases
//
// They default to "unknown" / "0.1.0-dev" in development builds and
// test runs. [Info] formats them for --version and [Full] adds the Go
// toolchain and platform.
package version
