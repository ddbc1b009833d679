// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"errors"

	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

// ErrSuperseded is returned when a response arrives for a request
// that is no longer the latest for its panel. The response is
// discarded and nothing is changed.
var ErrSuperseded = errors.New("adjudication: response superseded by a newer request")

// ErrDeclined is returned by confirmed operations when the user
// declines the confirmation. No request is sent.
var ErrDeclined = errors.New("adjudication: declined")

// ValidationError is a failure detected before any request is sent.
// Message is shown to the user as-is.
type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string { return err.Message }

func validationf(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// FlashText returns the text to show the user for err. Validation
// messages and service response bodies are returned verbatim; any
// other error (transport failures) is returned as err.Error().
func FlashText(err error) string {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return validationError.Message
	}
	var serviceError *recordservice.ServiceError
	if errors.As(err, &serviceError) {
		return serviceError.Text()
	}
	return err.Error()
}
