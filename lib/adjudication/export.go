// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// ToggleExport flips whether a canonical event id is selected for
// export. Ids not offered by the current results are ignored.
func (search *SearchController) ToggleExport(id string) {
	if !slices.Contains(ExportIDs(search.panel.Fragment()), id) {
		return
	}
	search.mu.Lock()
	defer search.mu.Unlock()
	if search.exports[id] {
		delete(search.exports, id)
	} else {
		search.exports[id] = true
	}
}

// Exporting reports whether id is selected for export.
func (search *SearchController) Exporting(id string) bool {
	search.mu.Lock()
	defer search.mu.Unlock()
	return search.exports[id]
}

// SelectAllExports selects every id offered by the current results.
func (search *SearchController) SelectAllExports() {
	ids := ExportIDs(search.panel.Fragment())
	search.mu.Lock()
	defer search.mu.Unlock()
	for _, id := range ids {
		search.exports[id] = true
	}
}

// SelectNoExports clears the export selection.
func (search *SearchController) SelectNoExports() {
	search.mu.Lock()
	defer search.mu.Unlock()
	clear(search.exports)
}

// ExportSelection returns the selected ids in result order.
func (search *SearchController) ExportSelection() []string {
	ids := ExportIDs(search.panel.Fragment())
	search.mu.Lock()
	defer search.mu.Unlock()
	var selected []string
	for _, id := range ids {
		if search.exports[id] {
			selected = append(selected, id)
		}
	}
	return selected
}

// Export downloads the selected canonical events into directory,
// naming the file as the service suggests, and returns the file's
// path. An empty selection is a ValidationError.
func (search *SearchController) Export(ctx context.Context, directory string) (string, error) {
	ids := search.ExportSelection()
	if len(ids) == 0 {
		return "", search.session.flash.Error(validationf("Please select at least one event to export."))
	}
	path, err := DownloadCanonical(ctx, search.session.service, ids, directory)
	if err != nil {
		return "", search.session.flash.Error(err)
	}
	search.session.flash.Success(fmt.Sprintf("Exported %d events to %s.", len(ids), path))
	return path, nil
}

// DownloadCanonical writes the export of ids into directory and
// returns the written file's path.
func DownloadCanonical(ctx context.Context, service RecordService, ids []string, directory string) (string, error) {
	download, err := service.DownloadCanonical(ctx, ids)
	if err != nil {
		return "", err
	}
	defer download.Body.Close()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(directory, download.Filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if _, err := io.Copy(file, download.Body); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing export file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
