// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package sse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// EventMessage is the default SSE event type when no "event:" line appears.
const EventMessage = "message"

// Event is one decoded Server-Sent Event. Data holds the raw JSON payload.
type Event struct {
	// Type is the event type, EventMessage unless an "event:" line set it.
	Type string

	// Data is the JSON payload accumulated from "data:" lines.
	Data jsontext.Value
}

// Decoder incrementally parses Server-Sent Events from a byte stream. A
// blank line terminates an event; an "event:" line sets the pending event
// type; "data:" content is expected to be single-line JSON (multi-line SSE
// data continuation is not supported). A pending unterminated event is still
// emitted at end of stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Decode returns the next event from the stream, or io.EOF when the stream
// is exhausted. Malformed JSON in a payload is a fatal decode error, never
// silently skipped.
func (d *Decoder) Decode() (*Event, error) {
	eventType := EventMessage
	var data string
	pending := false

	for d.scanner.Scan() {
		line := d.scanner.Text()

		// Blank line terminates the pending event.
		if line == "" {
			if pending {
				return finish(eventType, data)
			}
			continue
		}

		// Comment lines are ignored.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			eventType = value
			pending = true
		case "data":
			data = value
			pending = true
		}
	}

	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("SSE scanner error: %w", err)
	}

	// Stream ended with an unterminated event still buffered.
	if pending {
		return finish(eventType, data)
	}

	return nil, io.EOF
}

func finish(eventType, data string) (*Event, error) {
	raw := jsontext.Value(data)
	if !raw.IsValid() {
		return nil, fmt.Errorf("malformed JSON in SSE payload: %q", data)
	}
	return &Event{Type: eventType, Data: raw}, nil
}
