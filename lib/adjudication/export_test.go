// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestExportSelection(t *testing.T) {
	service := newFakeService()
	service.download = "id,key\n102,CK2\n"
	session, _ := openTestSession(t, service, "adj")
	search := session.Search(PopulationCanonical)
	ctx := context.Background()
	if err := search.Run(ctx, SearchForm{Term: "march"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	search.SelectAllExports()
	if got := search.ExportSelection(); !slices.Equal(got, []string{"101", "102"}) {
		t.Errorf("all = %v", got)
	}
	search.ToggleExport("101")
	search.ToggleExport("999")
	if got := search.ExportSelection(); !slices.Equal(got, []string{"102"}) {
		t.Errorf("after toggles = %v, want [102]", got)
	}

	directory := filepath.Join(t.TempDir(), "exports")
	path, err := search.Export(ctx, directory)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if path != filepath.Join(directory, "canonical-events_test.csv") {
		t.Errorf("path = %q", path)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if string(contents) != service.download {
		t.Errorf("export contents = %q", contents)
	}
	if got := service.callsWithPrefix("download"); !slices.Equal(got, []string{"download 102"}) {
		t.Errorf("download calls = %q", got)
	}
	if kind, text := flashText(t, session.Flash()); kind != FlashSuccess || text != "Exported 1 events to "+path+"." {
		t.Errorf("flash = %v %q", kind, text)
	}
}

func TestExportToggleActionAndReset(t *testing.T) {
	service := newFakeService()
	session, _ := openTestSession(t, service, "adj")
	search := session.Search(PopulationCanonical)
	ctx := context.Background()
	if err := search.Run(ctx, SearchForm{Term: "march"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	action := findAction(t, search.Panel(), "Toggle export: [ ] Second result")
	if err := search.Panel().Dispatch(ctx, action); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !search.Exporting("102") {
		t.Error("toggle action did not select 102")
	}
	findAction(t, search.Panel(), "Toggle export: [x] Second result")

	if err := search.Rerun(ctx); err != nil {
		t.Fatalf("Rerun: %v", err)
	}
	if got := search.ExportSelection(); len(got) != 0 {
		t.Errorf("new results kept export selection %v", got)
	}

	if _, err := search.Export(ctx, t.TempDir()); !IsValidation(err) {
		t.Errorf("Export with nothing selected = %v, want ValidationError", err)
	}
	if _, text := flashText(t, session.Flash()); text != "Please select at least one event to export." {
		t.Errorf("flash = %q", text)
	}
	if got := service.callsWithPrefix("download"); len(got) != 0 {
		t.Errorf("empty export downloaded: %q", got)
	}
}
