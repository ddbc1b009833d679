// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name: "adjudicator",
		Subcommands: []*Command{
			{Name: "open", Run: func(args []string) error { called = "open"; return nil }},
			{Name: "export", Run: func(args []string) error { called = "export"; return nil }},
		},
	}

	if err := root.Execute([]string{"export"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "export" {
		t.Errorf("dispatched to %q, want %q", called, "export")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string
	root := &Command{
		Name: "adjudicator",
		Subcommands: []*Command{
			{
				Name: "session",
				Subcommands: []*Command{
					{Name: "clear", Run: func(args []string) error { receivedArgs = args; return nil }},
				},
			},
		},
	}

	if err := root.Execute([]string{"session", "clear", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra" {
		t.Errorf("args = %v, want [extra]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var ids string
	var remaining []string
	command := &Command{
		Name: "export",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flagSet.StringVar(&ids, "ids", "", "ids to export")
			return flagSet
		},
		Run: func(args []string) error { remaining = args; return nil },
	}

	if err := command.Execute([]string{"--ids", "A,B", "rest"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if ids != "A,B" {
		t.Errorf("ids = %q, want A,B", ids)
	}
	if len(remaining) != 1 || remaining[0] != "rest" {
		t.Errorf("remaining = %v, want [rest]", remaining)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "adjudicator",
		Subcommands: []*Command{
			{Name: "open", Run: func([]string) error { return nil }},
			{Name: "export", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"exprot"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "export"`) {
		t.Errorf("error = %q, want suggestion of export", err)
	}
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Errorf("error should be a validation ToolError, got %T", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "open",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("open", pflag.ContinueOnError)
			flagSet.Bool("resume", false, "")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--resme"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --resume?") {
		t.Errorf("error = %q, want suggestion of --resume", err)
	}
	if !strings.Contains(err.Error(), "Run 'open --help' for usage.") {
		t.Errorf("error = %q, want help hint", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "adjudicator",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "open", Summary: "Open the adjudication UI"}},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "Open the adjudication UI") {
		t.Errorf("help output missing subcommand summary:\n%s", help.String())
	}
}

func TestCommand_HelpFlag(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "adjudicator",
		HelpOutput: &help,
		Subcommands: []*Command{
			{
				Name:        "export",
				Summary:     "Download canonical events",
				Description: "Download canonical events as one file.",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)
					flagSet.String("out", ".", "output directory")
					return flagSet
				},
				Examples: []Example{{Description: "Export two events", Command: "adjudicator export --ids 1,2"}},
				Run:      func([]string) error { t.Error("Run should not be called for --help"); return nil },
			},
		},
	}

	if err := root.Execute([]string{"export", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	output := help.String()
	for _, want := range []string{
		"Download canonical events as one file.",
		"Usage:\n  adjudicator export [flags]",
		"--out",
		"# Export two events",
		"adjudicator export --ids 1,2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_ListsCommands(t *testing.T) {
	root := &Command{
		Name: "adjudicator",
		Subcommands: []*Command{
			{Name: "open", Summary: "Open the adjudication UI"},
			{Name: "export", Summary: "Download canonical events"},
		},
	}
	var help bytes.Buffer
	root.PrintHelp(&help)
	output := help.String()
	if !strings.Contains(output, "Usage:\n  adjudicator <command> [flags]") {
		t.Errorf("missing synthesized usage:\n%s", output)
	}
	if !strings.Contains(output, "Run 'adjudicator <command> --help'") {
		t.Errorf("missing footer:\n%s", output)
	}
	if strings.Index(output, "open") > strings.Index(output, "export") {
		t.Errorf("commands should be listed in declaration order:\n%s", output)
	}
}
