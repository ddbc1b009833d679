// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// adjudicator is the terminal client for adjudicating candidate events
// against canonical events held by a record service.
//
// "adjudicator open" runs the interactive UI: the comparison grid,
// the candidate and canonical searches, the relationship hierarchy
// and the recent-event lists, all kept in step with a navigable
// location that can be saved on quit and resumed later.
// "adjudicator export" downloads canonical events without the UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/bureau-foundation/adjudicator/cmd/adjudicator/cli"
	"github.com/bureau-foundation/adjudicator/lib/config"
	"github.com/bureau-foundation/adjudicator/lib/recordservice"
	"github.com/bureau-foundation/adjudicator/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		if !cli.Silent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCodeFor(err))
	}
}

func run(ctx context.Context, args []string) error {
	// Handle --version before dispatch to match the other binaries.
	if len(args) > 0 && args[0] == "--version" {
		version.Print(os.Stdout, "adjudicator")
		return nil
	}
	return rootCommand(ctx).Execute(args)
}

func rootCommand(ctx context.Context) *cli.Command {
	return &cli.Command{
		Name:    "adjudicator",
		Summary: "Adjudicate candidate events against canonical events",
		Description: `Adjudicate candidate events against canonical events.

The record service holds the events; the adjudicator keeps its grid,
searches and relationship views in step with a navigable location.
Configuration is read from --config or $` + config.EnvironmentVariable + `.`,
		Subcommands: []*cli.Command{
			openCommand(ctx),
			exportCommand(ctx),
			sessionCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					version.Print(os.Stdout, "adjudicator")
					return nil
				},
			},
		},
	}
}

// loadConfig reads the file named by path, or by the environment when
// path is empty, and validates it.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cli.NotFound("%w", err).
				WithHint("Pass --config with an existing file, or unset " + config.EnvironmentVariable + " to use defaults.")
		}
		return nil, cli.Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newClient builds the record service client described by cfg.
func newClient(cfg *config.Config, logger *slog.Logger) (*recordservice.Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	client, err := recordservice.NewClient(recordservice.Config{
		BaseURL:          cfg.Service.BaseURL,
		HTTPClient:       &http.Client{Timeout: timeout},
		Compression:      cfg.Service.Compression,
		MaxResponseBytes: cfg.Service.MaxResponseBytes,
		Logger:           logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return client, nil
}
