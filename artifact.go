// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/google/uuid"
)

// Artifact is a named, typed output produced by an agent while working on a
// task. Artifacts are built up incrementally through artifact-update events:
// chunks with the same artifact ID and append set are concatenated onto the
// existing parts.
type Artifact struct {
	// ArtifactID identifies the artifact within its task.
	ArtifactID string `json:"artifactId"`

	// Name is an optional human-readable label.
	Name string `json:"name,omitzero"`

	// Description optionally explains what the artifact contains.
	Description string `json:"description,omitzero"`

	// Parts is the artifact content.
	Parts PartList `json:"parts"`

	// Metadata is an open key/value bag.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Artifact is valid.
func (a *Artifact) Validate() error {
	if a.ArtifactID == "" {
		return fmt.Errorf("artifact ID cannot be empty")
	}
	for i, part := range a.Parts {
		if part == nil {
			return fmt.Errorf("part %d cannot be nil", i)
		}
		if err := part.Validate(); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
	}
	return nil
}

// NewArtifact returns an artifact with a generated ID.
func NewArtifact(name string, parts ...Part) *Artifact {
	return &Artifact{
		ArtifactID: uuid.NewString(),
		Name:       name,
		Parts:      parts,
	}
}

// NewTextArtifact returns an artifact holding a single text part.
func NewTextArtifact(name, text string) *Artifact {
	return NewArtifact(name, NewTextPart(text))
}
