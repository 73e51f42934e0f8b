// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package handler binds the A2A runtime to JSON-RPC 2.0 over HTTP, with
// Server-Sent Events framing for the streaming methods, and serves the agent
// discovery documents.
package handler

import (
	"errors"

	"github.com/go-json-experiment/json/jsontext"

	a2a "github.com/go-a2a/runtime"
)

// jsonrpcVersion is the protocol version tag on every request and response.
const jsonrpcVersion = "2.0"

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      jsontext.Value `json:"id,omitzero"`
	Method  string         `json:"method"`
	Params  jsontext.Value `json:"params,omitzero"`
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      jsontext.Value `json:"id,omitzero"`
	Result  any            `json:"result,omitzero"`
	Error   *a2a.Error     `json:"error,omitzero"`
}

// resultResponse builds a success response for the request ID.
func resultResponse(id jsontext.Value, result any) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

// errorResponse builds an error response for the request ID, mapping the
// error to its A2A protocol code. Errors that are not domain errors map to
// the internal error code without leaking their text to the wire.
func errorResponse(id jsontext.Value, err error) *Response {
	var domainErr *a2a.Error
	if !errors.As(err, &domainErr) {
		domainErr = a2a.ErrInternal
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: domainErr}
}
