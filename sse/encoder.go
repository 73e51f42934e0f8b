// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package sse frames JSON payloads as Server-Sent Events text chunks and
// parses them back, as used by the A2A streaming transports.
package sse

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"
)

// EventError is the SSE event type carrying a terminal error payload.
const EventError = "error"

// Encoder writes Server-Sent Events to an underlying writer. If the writer
// implements http.Flusher, each event is flushed as it is written.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder creates an Encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		enc.flusher = f
	}
	return enc
}

// WriteEvent frames v as a data event: "data: <json>\n\n".
func (e *Encoder) WriteEvent(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}
	e.flush()
	return nil
}

// WriteError frames v as an error event: "event: error\ndata: <json>\n\n".
// Streaming responses terminate with an error event rather than a bare
// connection drop so clients can tell failure from completion.
func (e *Encoder) WriteError(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE error: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", EventError, data); err != nil {
		return fmt.Errorf("failed to write SSE error: %w", err)
	}
	e.flush()
	return nil
}

func (e *Encoder) flush() {
	if e.flusher != nil {
		e.flusher.Flush()
	}
}
