// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/adjudicator/lib/adjudication"
)

// Theme defines the color palette for the adjudication UI. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Flash colors by kind.
	FlashInfo    lipgloss.Color
	FlashSuccess lipgloss.Color
	FlashError   lipgloss.Color

	// Tabs. DirtyTab marks a search tab with unseen results.
	ActiveTab lipgloss.Color
	DirtyTab  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Overlays (forms, prompts, confirmations).
	OverlayForeground lipgloss.Color
	OverlayBackground lipgloss.Color
}

// FlashColor returns the color for a flash message kind.
func (theme Theme) FlashColor(kind adjudication.FlashKind) lipgloss.Color {
	switch kind {
	case adjudication.FlashSuccess:
		return theme.FlashSuccess
	case adjudication.FlashError:
		return theme.FlashError
	default:
		return theme.FlashInfo
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	FlashInfo:    lipgloss.Color("75"),  // blue
	FlashSuccess: lipgloss.Color("114"), // green
	FlashError:   lipgloss.Color("196"), // red

	ActiveTab: lipgloss.Color("220"), // amber
	DirtyTab:  lipgloss.Color("141"), // light purple

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	OverlayForeground: lipgloss.Color("252"),
	OverlayBackground: lipgloss.Color("237"),
}

// ColorProfile picks the color profile for the UI. NO_COLOR disables
// color; a 256-color TERM or a truecolor COLORTERM upgrades a detector
// that under-reports. CLICOLOR is ignored: it targets piped output,
// and the UI always owns a terminal.
func ColorProfile(getenv func(string) string, detected termenv.Profile) termenv.Profile {
	if strings.TrimSpace(getenv("NO_COLOR")) != "" {
		return termenv.Ascii
	}
	colorterm := strings.ToLower(getenv("COLORTERM"))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if detected != termenv.Ascii {
			return termenv.TrueColor
		}
		return detected
	}
	if strings.Contains(strings.ToLower(getenv("TERM")), "256color") && (detected == termenv.Ascii || detected == termenv.ANSI) {
		return termenv.ANSI256
	}
	return detected
}

// ApplyColorProfile sets lipgloss's profile from the environment.
func ApplyColorProfile() {
	lipgloss.SetColorProfile(ColorProfile(os.Getenv, termenv.ColorProfile()))
}
