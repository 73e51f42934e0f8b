// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
)

// MessageSendConfiguration tunes how a message send is handled.
type MessageSendConfiguration struct {
	// AcceptedOutputModes lists media types the caller can consume.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitzero"`

	// HistoryLength limits how much task history is returned.
	HistoryLength int `json:"historyLength,omitzero"`

	// PushNotificationConfig optionally registers a webhook alongside the send.
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitzero"`

	// Blocking requests the call wait for the terminal event.
	Blocking bool `json:"blocking,omitzero"`
}

// MessageSendParams are the parameters for message/send and message/stream.
type MessageSendParams struct {
	Message       *Message                  `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitzero"`
	Metadata      map[string]any            `json:"metadata,omitzero"`
}

// Validate ensures the MessageSendParams are valid.
func (p *MessageSendParams) Validate() error {
	if p.Message == nil {
		return fmt.Errorf("message cannot be nil")
	}
	return p.Message.Validate()
}

// TaskQueryParams are the parameters for tasks/get.
type TaskQueryParams struct {
	ID            string         `json:"id"`
	HistoryLength int            `json:"historyLength,omitzero"`
	Metadata      map[string]any `json:"metadata,omitzero"`
}

// TaskIDParams reference a task by ID, used by tasks/cancel and
// tasks/resubscribe.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetTaskPushNotificationConfigParams are the parameters for
// tasks/pushNotificationConfig/get.
type GetTaskPushNotificationConfigParams struct {
	ID                       string `json:"id"`
	PushNotificationConfigID string `json:"pushNotificationConfigId,omitzero"`
}

// ListTaskPushNotificationConfigParams are the parameters for
// tasks/pushNotificationConfig/list.
type ListTaskPushNotificationConfigParams struct {
	ID string `json:"id"`
}

// DeleteTaskPushNotificationConfigParams are the parameters for
// tasks/pushNotificationConfig/delete.
type DeleteTaskPushNotificationConfigParams struct {
	ID                       string `json:"id"`
	PushNotificationConfigID string `json:"pushNotificationConfigId"`
}
