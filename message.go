// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
)

// Kind discriminator values used on the protocol wire.
const (
	KindTask           = "task"
	KindMessage        = "message"
	KindStatusUpdate   = "status-update"
	KindArtifactUpdate = "artifact-update"
)

// Role identifies the sender of a message.
type Role string

// Role constants for message senders.
const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part is one segment of a message or artifact: text, a file, or
// structured data. Concrete types are TextPart, FilePart and DataPart.
type Part interface {
	// PartKind returns the wire discriminator for the part.
	PartKind() string

	// Validate ensures the part is well formed.
	Validate() error
}

// TextPart is a plain text segment.
type TextPart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// PartKind returns the wire discriminator for the part.
func (p *TextPart) PartKind() string { return "text" }

// Validate ensures the TextPart is valid.
func (p *TextPart) Validate() error {
	if p.Kind != "text" {
		return fmt.Errorf("text part kind must be %q, got %q", "text", p.Kind)
	}
	return nil
}

// FileContent carries file data either inline (base64 bytes) or by URI.
// Exactly one of Bytes and URI should be set.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mimeType,omitzero"`
	Bytes    string `json:"bytes,omitzero"`
	URI      string `json:"uri,omitzero"`
}

// FilePart is a file segment.
type FilePart struct {
	Kind     string         `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// PartKind returns the wire discriminator for the part.
func (p *FilePart) PartKind() string { return "file" }

// Validate ensures the FilePart is valid.
func (p *FilePart) Validate() error {
	if p.Kind != "file" {
		return fmt.Errorf("file part kind must be %q, got %q", "file", p.Kind)
	}
	if p.File.Bytes != "" && p.File.URI != "" {
		return fmt.Errorf("file part cannot carry both bytes and uri")
	}
	if p.File.Bytes == "" && p.File.URI == "" {
		return fmt.Errorf("file part must carry either bytes or uri")
	}
	return nil
}

// DataPart is a structured data segment.
type DataPart struct {
	Kind     string         `json:"kind"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// PartKind returns the wire discriminator for the part.
func (p *DataPart) PartKind() string { return "data" }

// Validate ensures the DataPart is valid.
func (p *DataPart) Validate() error {
	if p.Kind != "data" {
		return fmt.Errorf("data part kind must be %q, got %q", "data", p.Kind)
	}
	return nil
}

// NewTextPart returns a TextPart with the given text.
func NewTextPart(text string) *TextPart {
	return &TextPart{Kind: "text", Text: text}
}

// NewDataPart returns a DataPart with the given payload.
func NewDataPart(data map[string]any) *DataPart {
	return &DataPart{Kind: "data", Data: data}
}

// NewFilePart returns a FilePart with the given file content.
func NewFilePart(file FileContent) *FilePart {
	return &FilePart{Kind: "file", File: file}
}

// UnmarshalPart decodes a single part, dispatching on its kind discriminator.
func UnmarshalPart(data []byte) (Part, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal part kind: %w", err)
	}

	switch probe.Kind {
	case "text":
		var p TextPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal text part: %w", err)
		}
		return &p, nil
	case "file":
		var p FilePart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file part: %w", err)
		}
		return &p, nil
	case "data":
		var p DataPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal data part: %w", err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown part kind: %q", probe.Kind)
	}
}

// PartList is a sequence of parts that knows how to decode the kind union.
type PartList []Part

// UnmarshalJSON implements custom JSON unmarshaling for the part union.
func (pl *PartList) UnmarshalJSON(data []byte) error {
	var raw []jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal parts: %w", err)
	}

	parts := make(PartList, 0, len(raw))
	for i, r := range raw {
		part, err := UnmarshalPart(r)
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		parts = append(parts, part)
	}

	*pl = parts
	return nil
}

// Message is one exchanged utterance between user and agent.
type Message struct {
	// Kind is always "message".
	Kind string `json:"kind"`

	// MessageID uniquely identifies the message.
	MessageID string `json:"messageId"`

	// Role identifies the sender.
	Role Role `json:"role"`

	// Parts is the ordered message content.
	Parts PartList `json:"parts"`

	// TaskID optionally references the task this message belongs to.
	TaskID string `json:"taskId,omitzero"`

	// ContextID optionally references the conversation.
	ContextID string `json:"contextId,omitzero"`

	// Metadata is an open key/value bag.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Message is valid.
func (m *Message) Validate() error {
	if m.Kind != KindMessage {
		return fmt.Errorf("message kind must be %q, got %q", KindMessage, m.Kind)
	}
	if m.MessageID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if m.Role != RoleUser && m.Role != RoleAgent {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	for i, part := range m.Parts {
		if part == nil {
			return fmt.Errorf("part %d cannot be nil", i)
		}
		if err := part.Validate(); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
	}
	return nil
}

// NewUserMessage returns a user message with a generated message ID.
func NewUserMessage(parts ...Part) *Message {
	return &Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      RoleUser,
		Parts:     parts,
	}
}

// NewAgentMessage returns an agent message with a generated message ID.
func NewAgentMessage(parts ...Part) *Message {
	return &Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      RoleAgent,
		Parts:     parts,
	}
}

// NewAgentText returns an agent message with a single text part.
func NewAgentText(text string) *Message {
	return NewAgentMessage(NewTextPart(text))
}

// Text concatenates the text content of all text parts in the message.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Parts {
		if tp, ok := part.(*TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
