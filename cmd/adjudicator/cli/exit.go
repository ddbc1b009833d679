// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without an extra error
// message. The command is expected to have written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit codes by error category, following sysexits(3) where one fits.
const (
	ExitFailure     = 1
	ExitUsage       = 64
	ExitUnavailable = 69
	ExitInternal    = 70
	ExitNoInput     = 66
	ExitTempFail    = 75
	ExitNoPerm      = 77
)

// ExitCodeFor maps err to a process exit code: ExitError carries its
// own code, a ToolError maps by category, anything else is 1.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		switch toolError.Category {
		case CategoryValidation:
			return ExitUsage
		case CategoryNotFound:
			return ExitNoInput
		case CategoryForbidden:
			return ExitNoPerm
		case CategoryTransient:
			return ExitTempFail
		case CategoryUnavailable:
			return ExitUnavailable
		case CategoryInternal:
			return ExitInternal
		}
	}
	return ExitFailure
}

// Silent reports whether err should exit without printing, because the
// command already wrote its output.
func Silent(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError)
}
