// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/adjudicator/cmd/adjudicator/cli"
	"github.com/bureau-foundation/adjudicator/lib/config"
	"github.com/bureau-foundation/adjudicator/lib/history"
)

func sessionCommand() *cli.Command {
	var configPath string
	configFlags := func(name string) func() *pflag.FlagSet {
		return func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
			return flagSet
		}
	}

	return &cli.Command{
		Name:    "session",
		Summary: "Inspect or discard the saved session",
		Subcommands: []*cli.Command{
			{
				Name:    "show",
				Summary: "Print the saved location and when it was saved",
				Flags:   configFlags("show"),
				Run: func(args []string) error {
					return runSessionShow(configPath, os.Stdout)
				},
			},
			{
				Name:    "clear",
				Summary: "Delete the saved session",
				Flags:   configFlags("clear"),
				Run: func(args []string) error {
					return runSessionClear(configPath)
				},
			},
		},
	}
}

func runSessionShow(configPath string, stdout io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	path := cfg.Session.SnapshotPath
	snapshot, err := history.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return cli.NotFound("no saved session at %s", path)
	}
	if err != nil {
		return cli.Validation("reading saved session: %w", err).
			WithHint("Run 'adjudicator session clear' to discard it.")
	}
	location, err := snapshot.Restore()
	if err != nil {
		return cli.Validation("restoring saved session: %w", err)
	}

	fmt.Fprintf(stdout, "service:  %s\n", snapshot.BaseURL)
	fmt.Fprintf(stdout, "saved:    %s\n", snapshot.SavedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(stdout, "location: %s\n", location.String())
	fmt.Fprintf(stdout, "history:  %d entries\n", location.Len())
	return nil
}

func runSessionClear(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := history.Clear(cfg.Session.SnapshotPath); err != nil {
		return cli.Internal("%w", err)
	}
	return nil
}
