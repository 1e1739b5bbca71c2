// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Metis.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Metis errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidConfig indicates a malformed or incomplete configuration table.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// CodeStructural indicates plan construction was impossible. This is the
	// only error class that escapes Orchestrate.
	CodeStructural ErrorCode = "STRUCTURAL_FAILURE"

	// CodeSkillFailure indicates a skill execution failed. Always recoverable:
	// it is recorded in result fields, never raised.
	CodeSkillFailure ErrorCode = "SKILL_FAILURE"

	// CodeTimeout indicates a skill or phase exceeded its time budget.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCancelled indicates task-level cancellation stopped further dispatch.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeNotFound indicates a referenced skill or resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// MetisError is a typed error with context for observability. It implements
// the error interface and can be unwrapped with errors.As().
type MetisError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *MetisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *MetisError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *MetisError) MarshalJSON() ([]byte, error) {
	type Alias MetisError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a MetisError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *MetisError {
	return &MetisError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]any),
		Attributes: make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *MetisError) WithContext(key string, value any) *MetisError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *MetisError) WithAttribute(key, value string) *MetisError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *MetisError) WithRecoverable(recoverable bool) *MetisError {
	e.Recoverable = recoverable
	return e
}

// AsMetisError converts an error to a *MetisError, wrapping unknown errors
// as internal.
func AsMetisError(err error) *MetisError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MetisError); ok {
		return me
	}
	return New(CodeInternal, "wrapped error", err)
}

// IsStructural reports whether err is a structural failure, the only fatal
// class in the orchestration error taxonomy.
func IsStructural(err error) bool {
	me := AsMetisError(err)
	return me != nil && (me.Code == CodeStructural || me.Code == CodeInvalidConfig)
}

// RecoverableString returns "true" or "false" for observability attributes.
func (e *MetisError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
