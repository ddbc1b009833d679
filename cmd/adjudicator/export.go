// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/adjudicator/cmd/adjudicator/cli"
	"github.com/bureau-foundation/adjudicator/lib/adjudication"
	"github.com/bureau-foundation/adjudicator/lib/config"
	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

type exportParams struct {
	ids        string
	outputDir  string
	configPath string
}

func exportCommand(ctx context.Context) *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Download canonical events without opening the UI",
		Description: `Download canonical events as a single file.

The file is named as the record service suggests and written into
--out, or ui.export_dir when --out is not given. The written path is
printed on stdout.`,
		Usage: "adjudicator export --ids ID[,ID...] [flags]",
		Examples: []cli.Example{
			{Description: "Export two canonical events into the current directory", Command: "adjudicator export --ids 101,102 --out ."},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVar(&params.ids, "ids", "", "comma-separated canonical event ids (required)")
			flagSet.StringVarP(&params.outputDir, "out", "o", "", "output directory (default: ui.export_dir)")
			flagSet.StringVar(&params.configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0]).
					WithHint("Pass ids as a comma-separated list: --ids 101,102.")
			}
			return runExport(ctx, params, os.Stdout)
		},
	}
}

func runExport(ctx context.Context, params exportParams, stdout io.Writer) error {
	ids := splitIDs(params.ids)
	if len(ids) == 0 {
		return cli.Validation("--ids is required").
			WithHint("Pass ids as a comma-separated list: --ids 101,102.")
	}

	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.LogLevel()
	logger := cli.NewCommandLogger(level).With("command", "export")

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	directory := params.outputDir
	if directory == "" {
		directory = cfg.UI.ExportDir
	}

	path, err := adjudication.DownloadCanonical(ctx, client, ids, directory)
	if err != nil {
		return classifyError(err)
	}
	logger.Debug("export written", "path", path, "events", len(ids))

	if file, ok := stdout.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprintf(stdout, "Exported %d canonical events to %s\n", len(ids), path)
	} else {
		fmt.Fprintln(stdout, path)
	}
	return nil
}

// splitIDs parses a comma-separated id list, dropping blanks.
func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// classifyError maps a failure from the record service or the local
// filesystem onto a categorized CLI error.
func classifyError(err error) error {
	var serviceError *recordservice.ServiceError
	var netError net.Error
	switch {
	case adjudication.IsValidation(err):
		return cli.Validation("%w", err)
	case recordservice.IsNotFound(err):
		return cli.NotFound("%w", err)
	case errors.As(err, &serviceError):
		return cli.Unavailable("%s", serviceError.Text()).
			WithHint(fmt.Sprintf("The record service answered HTTP %d.", serviceError.StatusCode))
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netError):
		return cli.Transient("%w", err)
	case errors.Is(err, os.ErrPermission):
		return cli.Forbidden("%w", err)
	default:
		return cli.Internal("%w", err)
	}
}
