// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordservice

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ServiceError is a non-2xx response from the record service. The
// service reports failures as plain text meant for the user, so Body
// is kept verbatim.
type ServiceError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Method and Path identify the failed request.
	Method string
	Path   string

	// Body is the response body, bounded by the client's response
	// limit.
	Body string
}

func (err *ServiceError) Error() string {
	return fmt.Sprintf("recordservice: %s %s: HTTP %d: %s", err.Method, err.Path, err.StatusCode, err.Text())
}

// Text returns the text to show the user: the trimmed body, or the
// standard status text when the body is empty.
func (err *ServiceError) Text() string {
	if text := strings.TrimSpace(err.Body); text != "" {
		return text
	}
	if text := http.StatusText(err.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", err.StatusCode)
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) bool {
	var serviceError *ServiceError
	return errors.As(err, &serviceError)
}

// IsNotFound reports whether err is a 404 from the record service.
func IsNotFound(err error) bool {
	var serviceError *ServiceError
	return errors.As(err, &serviceError) && serviceError.StatusCode == http.StatusNotFound
}

// IsBadRequest reports whether err is a 400 from the record service,
// which is how it rejects invalid input.
func IsBadRequest(err error) bool {
	var serviceError *ServiceError
	return errors.As(err, &serviceError) && serviceError.StatusCode == http.StatusBadRequest
}
