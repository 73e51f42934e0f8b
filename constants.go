// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// A2A protocol path constants.
const (
	// AgentCardWellKnownPath is the standard path for retrieving an agent's
	// public AgentCard.
	//
	// Example usage: https://agent.example.com/.well-known/agent.json
	AgentCardWellKnownPath = "/.well-known/agent.json"

	// ExtendedAgentCardPath is the path for the authenticated extended agent
	// card, conditionally available based on agent capabilities.
	ExtendedAgentCardPath = "/agent/authenticatedExtendedCard"

	// DefaultRPCURL is the default URL path for the A2A JSON-RPC endpoint.
	DefaultRPCURL = "/"
)

// Method names for A2A JSON-RPC operations.
const (
	MethodMessageSend      = "message/send"
	MethodMessageStream    = "message/stream"
	MethodTasksGet         = "tasks/get"
	MethodTasksCancel      = "tasks/cancel"
	MethodTasksResubscribe = "tasks/resubscribe"
	MethodPushConfigSet    = "tasks/pushNotificationConfig/set"
	MethodPushConfigGet    = "tasks/pushNotificationConfig/get"
	MethodPushConfigList   = "tasks/pushNotificationConfig/list"
	MethodPushConfigDelete = "tasks/pushNotificationConfig/delete"
)

// DefaultNotificationTokenHeader carries the push notification config token
// on webhook deliveries.
const DefaultNotificationTokenHeader = "X-A2A-Notification-Token"
