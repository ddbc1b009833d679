// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the adjudicator.
//
// The central type is [Command]: a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. The tree is assembled in cmd/adjudicator/main.go and
// dispatched via [Command.Execute], which parses flags, routes
// subcommands, and prints help with examples.
//
// Unknown subcommands and flags are matched against the known names
// by Levenshtein distance (at most 3) and the closest is suggested.
//
// Commands report failures as [ToolError] values, categorized so that
// main can pick an exit code, or as [ExitError] when the command has
// already written its own output.
package cli
