// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when no valid request URL can be built from the user input
	ErrInvalidURL = errors.New("invalid forecast request URL")
	// ErrConnection is returned when the forecast API could not be reached
	ErrConnection = errors.New("failed to connect to forecast API")
	// ErrHTTPStatus is returned when the forecast API answered with a non-OK status
	ErrHTTPStatus = errors.New("forecast API returned non-OK status")
	// ErrRead is returned when the forecast response could not be read completely
	ErrRead = errors.New("failed to read forecast response")
	// ErrParse is returned when the forecast payload does not match the expected schema
	ErrParse = errors.New("malformed forecast payload")
)

// StatusError carries the status code of a non-OK forecast API response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrHTTPStatus, e.StatusCode)
}

// Is reports a StatusError as ErrHTTPStatus
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
