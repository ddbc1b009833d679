// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/adjudicator/cmd/adjudicator/cli"
	"github.com/bureau-foundation/adjudicator/lib/adjudication"
	"github.com/bureau-foundation/adjudicator/lib/adjui"
	"github.com/bureau-foundation/adjudicator/lib/clock"
	"github.com/bureau-foundation/adjudicator/lib/config"
	"github.com/bureau-foundation/adjudicator/lib/history"
)

type openParams struct {
	location   string
	configPath string
	logFile    string
	resume     bool
}

func openCommand(ctx context.Context) *cli.Command {
	var params openParams
	return &cli.Command{
		Name:    "open",
		Summary: "Open the adjudication UI",
		Description: `Open the interactive adjudication UI.

The starting location comes from --url, from the session saved on the
last quit (--resume), or from ui.start_location. The location and its
back/forward history are saved to session.snapshot_path on quit.

Log records at warn and above appear in the status line; everything
at log.level goes to log.file when one is configured.`,
		Usage: "adjudicator open [--url LOCATION | --resume] [flags]",
		Examples: []cli.Example{
			{Description: "Compare two candidates against a canonical event", Command: "adjudicator open --url 'adj?canonical_event_key=K1&candidates=10,11'"},
			{Description: "Pick up where the last session left off", Command: "adjudicator open --resume"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("open", pflag.ContinueOnError)
			flagSet.StringVar(&params.location, "url", "", "location to open: a full URL, path?query, or a bare query")
			flagSet.StringVar(&params.configPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
			flagSet.StringVar(&params.logFile, "log-file", "", "write JSON log records to this file (overrides log.file)")
			flagSet.BoolVar(&params.resume, "resume", false, "restore the location saved on the last quit")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0]).
					WithHint("Pass the starting location with --url.")
			}
			return runOpen(ctx, params)
		},
	}
}

func runOpen(ctx context.Context, params openParams) error {
	if params.location != "" && params.resume {
		return cli.Validation("--url and --resume cannot be combined")
	}

	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return err
	}
	if params.logFile != "" {
		cfg.Log.File = params.logFile
	}
	if err := cfg.EnsurePaths(); err != nil {
		return cli.Forbidden("%w", err)
	}
	level, _ := cfg.LogLevel()

	// Warnings go to the status line; stderr would corrupt the alt
	// screen.
	statusHandler := adjui.NewLogHandler(slog.LevelWarn)
	handlers := fanoutHandler{statusHandler}
	if cfg.Log.File != "" {
		fileHandler, closeFile, err := cli.OpenFileLogHandler(cfg.Log.File, level)
		if err != nil {
			return cli.Forbidden("%w", err)
		}
		defer closeFile()
		handlers = append(handlers, fileHandler)
	}
	logger := slog.New(handlers)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	location, err := startLocation(params, cfg, client.BaseURL(), logger)
	if err != nil {
		return err
	}

	session, err := adjudication.NewSession(adjudication.Config{
		Service:  client,
		Location: location,
		Logger:   logger,
	})
	if err != nil {
		return cli.Internal("%w", err)
	}

	programContext, cancel := context.WithCancel(ctx)
	defer cancel()

	adjui.ApplyColorProfile()
	model := adjui.NewModel(programContext, session, adjui.Options{
		ExportDirectory: cfg.UI.ExportDir,
		Logger:          logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(programContext))
	adjui.Attach(session, program)
	statusHandler.SetProgram(program)

	_, runErr := program.Run()
	statusHandler.SetProgram(nil)
	cancel()
	// An interrupt is a normal quit: the session is still saved.
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	if err := saveSession(cfg.Session.SnapshotPath, session.Location(), client.BaseURL(), clock.Real()); err != nil {
		logger.Warn("saving session failed", "path", cfg.Session.SnapshotPath, "error", err)
		if runErr == nil {
			return cli.Internal("saving session: %w", err)
		}
	}
	return runErr
}

// startLocation picks the location the UI opens on.
func startLocation(params openParams, cfg *config.Config, baseURL string, logger *slog.Logger) (*adjudication.Location, error) {
	if params.location != "" {
		location, err := adjudication.ParseLocation(params.location)
		if err != nil {
			return nil, cli.Validation("--url: %w", err)
		}
		return location, nil
	}

	if params.resume {
		location, err := resumeLocation(cfg.Session.SnapshotPath, baseURL, logger)
		if err != nil || location != nil {
			return location, err
		}
	}

	location, err := adjudication.ParseLocation(cfg.UI.StartLocation)
	if err != nil {
		return nil, cli.Validation("ui.start_location: %w", err)
	}
	return location, nil
}

// resumeLocation restores the saved location. A missing snapshot, or
// one saved against another service, yields nil so the caller falls
// back to the configured start.
func resumeLocation(path, baseURL string, logger *slog.Logger) (*adjudication.Location, error) {
	if path == "" {
		return nil, cli.Validation("--resume requires session.snapshot_path")
	}
	snapshot, err := history.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("no saved session, starting fresh", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, cli.Validation("reading saved session: %w", err).
			WithHint("Run 'adjudicator session clear' to discard it.")
	}
	if snapshot.BaseURL != baseURL {
		logger.Warn("saved session belongs to another service, starting fresh",
			"saved_base_url", snapshot.BaseURL, "base_url", baseURL)
		return nil, nil
	}
	location, err := snapshot.Restore()
	if err != nil {
		return nil, cli.Validation("restoring saved session: %w", err).
			WithHint("Run 'adjudicator session clear' to discard it.")
	}
	return location, nil
}

// saveSession writes the location's snapshot. An empty path disables
// persistence.
func saveSession(path string, location *adjudication.Location, baseURL string, clk clock.Clock) error {
	if path == "" {
		return nil
	}
	return history.Write(path, history.Capture(location, baseURL, clk.Now()))
}
