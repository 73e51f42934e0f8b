// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth provides the caller identity abstraction attached to A2A
// requests. The runtime never interprets the identity; it only carries it
// through to the agent executor.
package auth

import "context"

// User represents the caller of an A2A request.
type User interface {
	// IsAuthenticated reports whether the caller presented valid credentials.
	IsAuthenticated() bool

	// UserName returns the caller's name, or an empty string for
	// unauthenticated callers.
	UserName() string
}

// UnauthenticatedUser is the null identity used when no credentials were
// presented. It is safe to use as a zero value.
type UnauthenticatedUser struct{}

// IsAuthenticated always returns false.
func (UnauthenticatedUser) IsAuthenticated() bool { return false }

// UserName always returns an empty string.
func (UnauthenticatedUser) UserName() string { return "" }

// AuthenticatedUser is a minimal authenticated identity carrying only a
// name. Transports that perform real credential validation can provide
// their own User implementations instead.
type AuthenticatedUser struct {
	Name string
}

// IsAuthenticated always returns true.
func (AuthenticatedUser) IsAuthenticated() bool { return true }

// UserName returns the caller's name.
func (u AuthenticatedUser) UserName() string { return u.Name }

type userContextKey struct{}

// WithUser returns a context carrying the caller identity. Transports call
// this after authenticating a request.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the caller identity attached to the context, or
// UnauthenticatedUser if none is attached.
func UserFromContext(ctx context.Context) User {
	if user, ok := ctx.Value(userContextKey{}).(User); ok {
		return user
	}
	return UnauthenticatedUser{}
}
