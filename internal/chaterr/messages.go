// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chaterr

import "errors"

// User-facing texts.
const (
	DefaultGenerationText = "An error occurred. Please try again. If the problem persists, please contact the site administrator."
	GenerateStatusPrefix  = "There was an error generating a response. Chat history can't be saved at this time. "
	PersistFailedText     = "An error occurred. Answers can't be saved at this time. If the problem persists, please contact the site administrator."
)

// UserMessage is the content of the error message appended to a
// conversation when generation fails with err.
//
// A non-ok HTTP status from a generation endpoint is reported with
// GenerateStatusPrefix. An error field inside the stream is shown as sent.
// Anything else gets DefaultGenerationText.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindServer {
		return DefaultGenerationText
	}
	msg := e.Message
	if msg == "" {
		msg = DefaultGenerationText
	}
	if e.Status != 0 {
		return GenerateStatusPrefix + msg
	}
	return msg
}
