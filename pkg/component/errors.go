// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package component

import (
	"errors"
	"fmt"
)

// ValidationError reports a declaration that violates an invariant. Nothing
// is created and the resource phase becomes Failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TransientError reports a timeout, connection reset or API conflict. The
// component state is set to error and the next reconciliation retries.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient failure"
	}
	return "transient failure: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as retriable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// ExternalSystemError reports a management operation refused by a backing
// subsystem. It is logged, the component is marked error, and the remaining
// components continue.
type ExternalSystemError struct {
	System string
	Err    error
}

func (e *ExternalSystemError) Error() string {
	return e.System + ": " + e.Err.Error()
}

func (e *ExternalSystemError) Unwrap() error {
	return e.Err
}

// NewExternalSystemError wraps err as an error of the named subsystem.
func NewExternalSystemError(system string, err error) *ExternalSystemError {
	return &ExternalSystemError{System: system, Err: err}
}

// FatalConfigError reports a required configuration key without a usable
// value. The whole reconciliation aborts and is not retried.
type FatalConfigError struct {
	Key    string
	Reason string
}

func (e *FatalConfigError) Error() string {
	return fmt.Sprintf("fatal configuration error on %q: %s", e.Key, e.Reason)
}

// NewFatalConfigError reports the named key as unusable.
func NewFatalConfigError(key, format string, args ...any) *FatalConfigError {
	return &FatalConfigError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// IsTransientError reports whether err carries a TransientError.
func IsTransientError(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsFatalConfigError reports whether err carries a FatalConfigError.
func IsFatalConfigError(err error) bool {
	var f *FatalConfigError
	return errors.As(err, &f)
}
