// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay box chrome: 2 columns of border plus 2 of padding, and 2
// lines of border plus a title and a footer line.
const (
	overlayChromeWidth  = 4
	overlayChromeHeight = 4
	overlayMinWidth     = 30
	overlayMargin       = 2
)

// overlayBox is the content of a centered overlay: a title, body
// lines, and a footer of key hints.
type overlayBox struct {
	Title  string
	Body   []string
	Footer string
}

// render draws the box centered on a screen of the given size and
// returns its lines and top-left anchor. The box is as wide as its
// widest line, at least overlayMinWidth, and never wider than the
// screen minus a margin. Body lines beyond the screen height are cut.
func (box overlayBox) render(theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	innerWidth := overlayMinWidth
	for _, line := range append([]string{box.Title, box.Footer}, box.Body...) {
		innerWidth = max(innerWidth, ansi.StringWidth(line))
	}
	innerWidth = min(innerWidth, screenWidth-overlayMargin*2-overlayChromeWidth)
	if innerWidth < 1 {
		innerWidth = 1
	}

	body := box.Body
	if maxBody := screenHeight - overlayMargin*2 - overlayChromeHeight; maxBody > 0 && len(body) > maxBody {
		body = body[:maxBody]
	}

	background := lipgloss.NewStyle().Background(theme.OverlayBackground)
	titleStyle := background.Bold(true).Foreground(theme.HeaderForeground)
	textStyle := background.Foreground(theme.OverlayForeground)
	footerStyle := background.Foreground(theme.FaintText)

	lines := []string{padLine(titleStyle.Render(fit(box.Title, innerWidth)), innerWidth, background)}
	for _, line := range body {
		if ansi.StringWidth(line) > innerWidth {
			line = ansi.Truncate(line, innerWidth-1, "…")
		}
		if !strings.Contains(line, "\x1b[") {
			line = textStyle.Render(line)
		}
		lines = append(lines, padLine(line, innerWidth, background))
	}
	lines = append(lines, padLine(footerStyle.Render(fit(box.Footer, innerWidth)), innerWidth, background))

	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Background(theme.OverlayBackground).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	result := strings.Split(rendered, "\n")
	renderedWidth := 0
	if len(result) > 0 {
		renderedWidth = ansi.StringWidth(result[0])
	}
	anchorX := max((screenWidth-renderedWidth)/2, 0)
	anchorY := max((screenHeight-len(result))/2, 0)
	return result, anchorX, anchorY
}

// fit truncates plain text to width columns.
func fit(text string, width int) string {
	if ansi.StringWidth(text) <= width {
		return text
	}
	return ansi.Truncate(text, width-1, "…")
}

// padLine pads styled content to width with background-colored
// spaces.
func padLine(styled string, width int, background lipgloss.Style) string {
	if gap := width - ansi.StringWidth(styled); gap > 0 {
		return styled + background.Render(strings.Repeat(" ", gap))
	}
	return styled
}

// spliceOverlay replaces a rectangular region of a rendered view with
// overlay lines placed at (anchorX, anchorY). Truncation is ANSI-aware
// so escape sequences on either side of the overlay survive.
func spliceOverlay(view string, overlay []string, anchorX, anchorY int) string {
	if len(overlay) == 0 {
		return view
	}
	viewLines := strings.Split(view, "\n")
	for len(viewLines) < anchorY+len(overlay) {
		viewLines = append(viewLines, "")
	}
	overlayWidth := ansi.StringWidth(overlay[0])

	for index, overlayLine := range overlay {
		row := anchorY + index
		if row < 0 {
			continue
		}
		line := viewLines[row]
		lineWidth := ansi.StringWidth(line)

		var builder strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(line, anchorX, "")
			builder.WriteString(prefix)
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				builder.WriteString(strings.Repeat(" ", gap))
			}
		}
		builder.WriteString("\x1b[0m")
		builder.WriteString(overlayLine)
		builder.WriteString("\x1b[0m")
		if suffixStart := anchorX + overlayWidth; suffixStart < lineWidth {
			builder.WriteString(ansi.TruncateLeft(line, suffixStart, ""))
		}
		viewLines[row] = builder.String()
	}
	return strings.Join(viewLines, "\n")
}
