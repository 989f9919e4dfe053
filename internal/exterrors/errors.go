// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

func Configuration(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryConfiguration,
		Suggestion: suggestion,
	}
}

// Input reports a value supplied by the user that cannot be acted on.
func Input(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryInput,
		Suggestion: suggestion,
	}
}

// ToolExecution reports a tool whose callable failed. It is converted to data by the executor.
func ToolExecution(code, message string, cause error) error {
	return &LocalError{
		Message:  message,
		Code:     code,
		Category: LocalErrorCategoryTool,
		Cause:    cause,
	}
}

// UnknownTool reports a tool name with no registered implementation.
// The message is the exact text surfaced to the remote run.
func UnknownTool(name string) error {
	return &LocalError{
		Message:  fmt.Sprintf("Unknown function: %s", name),
		Code:     CodeUnknownTool,
		Category: LocalErrorCategoryTool,
	}
}

func RunFailure(message string) error {
	return &LocalError{
		Message:  message,
		Code:     CodeRunFailed,
		Category: LocalErrorCategoryRun,
	}
}

func ProtocolViolation(code, message string) error {
	return &LocalError{
		Message:  message,
		Code:     code,
		Category: LocalErrorCategoryProtocol,
	}
}

func Timeout(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryTimeout,
		Suggestion: suggestion,
	}
}

func Internal(code, message string) error {
	return &LocalError{
		Message:  message,
		Code:     code,
		Category: LocalErrorCategoryInternal,
	}
}

// Cancelled returns a user cancellation error.
func Cancelled(message string) error {
	return &LocalError{
		Message:  message,
		Code:     CodeCancelled,
		Category: LocalErrorCategoryCancelled,
	}
}

// ServiceFromAzure wraps an azcore.ResponseError into a ServiceError with operation context.
// If the error is not an azcore.ResponseError, it returns a generic internal LocalError.
func ServiceFromAzure(err error, operation string) error {
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		serviceName := ""
		if respErr.RawResponse != nil && respErr.RawResponse.Request != nil {
			serviceName = respErr.RawResponse.Request.Host
		}
		code := respErr.ErrorCode
		if code == "" {
			code = fmt.Sprintf("%d", respErr.StatusCode)
		}
		return &ServiceError{
			Message:     fmt.Sprintf("%s: %s", operation, respErr.Error()),
			ErrorCode:   fmt.Sprintf("%s.%s", operation, code),
			StatusCode:  respErr.StatusCode,
			ServiceName: serviceName,
			Cause:       err,
		}
	}
	if IsCancellation(err) {
		return &LocalError{
			Message:  fmt.Sprintf("%s was cancelled", operation),
			Code:     CodeCancelled,
			Category: LocalErrorCategoryCancelled,
			Cause:    err,
		}
	}
	return &LocalError{
		Message:  operation,
		Code:     operation,
		Category: LocalErrorCategoryInternal,
		Cause:    err,
	}
}

// IsCancellation checks if an error represents user cancellation.
func IsCancellation(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var localErr *LocalError
	return errors.As(err, &localErr) && localErr.Category == LocalErrorCategoryCancelled
}

// IsCategory reports whether err, or any error it wraps, is a LocalError of the given category.
func IsCategory(err error, category LocalErrorCategory) bool {
	var localErr *LocalError
	if !errors.As(err, &localErr) {
		return false
	}
	return localErr.Category == category
}

// CodeOf returns the LocalError code carried by err, or "" when there is none.
func CodeOf(err error) string {
	var localErr *LocalError
	if errors.As(err, &localErr) {
		return localErr.Code
	}
	return ""
}
