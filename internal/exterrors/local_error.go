// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import "fmt"

// LocalErrorCategory classifies a locally detected failure.
type LocalErrorCategory string

const (
	LocalErrorCategoryConfiguration LocalErrorCategory = "configuration"
	LocalErrorCategoryTool          LocalErrorCategory = "tool"
	LocalErrorCategoryRun           LocalErrorCategory = "run"
	LocalErrorCategoryProtocol      LocalErrorCategory = "protocol"
	LocalErrorCategoryTimeout       LocalErrorCategory = "timeout"
	LocalErrorCategoryInput         LocalErrorCategory = "input"
	LocalErrorCategoryCancelled     LocalErrorCategory = "cancelled"
	LocalErrorCategoryInternal      LocalErrorCategory = "internal"
)

// LocalError is a categorized error raised by this process, as opposed to a raw service response.
type LocalError struct {
	// Message is the human-readable error message
	Message string
	// Code is a stable, machine-readable identifier (e.g. "missing_github_token")
	Code string
	// Category groups related codes for propagation decisions
	Category LocalErrorCategory
	// Suggestion is an optional hint shown to the user
	Suggestion string
	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface
func (e *LocalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LocalError) Unwrap() error {
	return e.Cause
}

// ServiceError describes a non-success response from a remote service.
type ServiceError struct {
	Message     string
	ErrorCode   string
	StatusCode  int
	ServiceName string
	// Cause is the original response error
	Cause error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
