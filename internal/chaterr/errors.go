// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chaterr defines the error taxonomy shared by the chat client.
package chaterr

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes errors for handling.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport is a network failure or an unreadable body.
	KindTransport
	// KindMalformed is a stream that could not be decoded.
	KindMalformed
	// KindServer is an explicit error field or a non-ok status.
	KindServer
	// KindNotFound is a local precondition failure.
	KindNotFound
	// KindCanceled is a user-initiated cancellation.
	KindCanceled
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	case KindServer:
		return "server"
	case KindNotFound:
		return "not_found"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the api, stream and store packages.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status for KindServer errors, 0 otherwise.
	Status int
	// Endpoint is the request path, when the error came from a request.
	Endpoint string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Endpoint != "" {
		msg = e.Endpoint + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel errors for easy checking.
var (
	ErrConversationNotFound = &Error{Kind: KindNotFound, Message: "conversation not found"}
	ErrMalformedStream      = &Error{Kind: KindMalformed, Message: "malformed stream"}
	ErrCanceled             = &Error{Kind: KindCanceled, Message: "request canceled"}
)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Transport wraps a network failure.
func Transport(endpoint string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: "request failed", Endpoint: endpoint, Cause: cause}
}

// Malformed reports an undecodable stream.
func Malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Message: ErrMalformedStream.Message + ": " + fmt.Sprintf(format, args...)}
}

// Server reports a server-side error. message is the text the server sent,
// which may be empty.
func Server(endpoint string, status int, message string) *Error {
	return &Error{Kind: KindServer, Message: message, Status: status, Endpoint: endpoint}
}

// NotFound reports a missing conversation.
func NotFound(conversationID string) *Error {
	return &Error{Kind: KindNotFound, Message: ErrConversationNotFound.Message, Cause: fmt.Errorf("id %q", conversationID)}
}

// =============================================================================
// HELPERS
// =============================================================================

// KindOf returns the kind of err. Context cancellation counts as KindCanceled.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsCanceled reports whether err is a cancellation.
func IsCanceled(err error) bool {
	return KindOf(err) == KindCanceled
}

// IsNotFound reports whether err is a missing-conversation precondition failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// ServerMessage returns the message a server error carried, if any.
func ServerMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindServer && e.Message != "" {
		return e.Message, true
	}
	return "", false
}
