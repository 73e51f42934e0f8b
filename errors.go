// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
)

// JSON-RPC error codes used by the A2A protocol.
const (
	CodeTaskNotFound                           = -32001
	CodeTaskNotCancelable                      = -32002
	CodePushNotificationNotSupported           = -32003
	CodeUnsupportedOperation                   = -32004
	CodeContentTypeNotSupported                = -32005
	CodeInvalidAgentResponse                   = -32006
	CodeAuthenticatedExtendedCardNotConfigured = -32007
	CodeJSONParse                              = -32700
	CodeInvalidRequest                         = -32600
	CodeMethodNotFound                         = -32601
	CodeInvalidParams                          = -32602
	CodeInternalError                          = -32603
)

// Error is a domain error carrying an A2A protocol error code. Transport
// layers map the code to wire-specific status or JSON-RPC error codes.
type Error struct {
	// Code is the JSON-RPC error code.
	Code int `json:"code"`

	// Message is the human-readable error description.
	Message string `json:"message"`

	// Data optionally carries structured error details.
	Data any `json:"data,omitzero"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("a2a: %s (code %d)", e.Message, e.Code)
}

// Is reports whether target is an *Error with the same code, so wrapped
// domain errors match their sentinel via errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of the error with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Data: e.Data}
}

// WithData returns a copy of the error carrying structured details.
func (e *Error) WithData(data any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Data: data}
}

// NewError returns a domain error with the given code and message.
func NewError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// A2A domain error sentinels.
var (
	// ErrTaskNotFound indicates the referenced task does not exist.
	ErrTaskNotFound = &Error{Code: CodeTaskNotFound, Message: "task not found"}

	// ErrTaskNotCancelable indicates the task is in a terminal state.
	ErrTaskNotCancelable = &Error{Code: CodeTaskNotCancelable, Message: "task cannot be canceled"}

	// ErrPushNotificationNotSupported indicates the agent does not support push notifications.
	ErrPushNotificationNotSupported = &Error{Code: CodePushNotificationNotSupported, Message: "push notification is not supported"}

	// ErrUnsupportedOperation indicates the requested operation is not available.
	ErrUnsupportedOperation = &Error{Code: CodeUnsupportedOperation, Message: "this operation is not supported"}

	// ErrContentTypeNotSupported indicates a media type mismatch.
	ErrContentTypeNotSupported = &Error{Code: CodeContentTypeNotSupported, Message: "content type not supported"}

	// ErrInvalidAgentResponse indicates the executor produced a malformed event.
	ErrInvalidAgentResponse = &Error{Code: CodeInvalidAgentResponse, Message: "invalid agent response"}

	// ErrAuthenticatedExtendedCardNotConfigured indicates no extended card is available.
	ErrAuthenticatedExtendedCardNotConfigured = &Error{Code: CodeAuthenticatedExtendedCardNotConfigured, Message: "authenticated extended card not configured"}

	// ErrInvalidRequest indicates malformed request parameters.
	ErrInvalidRequest = &Error{Code: CodeInvalidRequest, Message: "invalid request"}

	// ErrInternal indicates an unexpected runtime failure.
	ErrInternal = &Error{Code: CodeInternalError, Message: "internal error"}
)
