// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Feedback is the reaction a user attached to an answer.
type Feedback string

const (
	FeedbackNeutral                Feedback = "neutral"
	FeedbackPositive               Feedback = "positive"
	FeedbackNegative               Feedback = "negative"
	FeedbackMissingCitation        Feedback = "missing_citation"
	FeedbackWrongCitation          Feedback = "wrong_citation"
	FeedbackOutOfScope             Feedback = "out_of_scope"
	FeedbackInaccurateOrIrrelevant Feedback = "inaccurate_or_irrelevant"
	FeedbackOtherUnhelpful         Feedback = "other_unhelpful"
	FeedbackHateSpeech             Feedback = "hate_speech"
	FeedbackViolent                Feedback = "violent"
	FeedbackSexual                 Feedback = "sexual"
	FeedbackManipulative           Feedback = "manipulative"
	FeedbackOtherHarmful           Feedback = "other_harmful"
)

// IsNegative reports whether f is a thumbs-down style reaction.
func (f Feedback) IsNegative() bool {
	switch f {
	case "", FeedbackNeutral, FeedbackPositive:
		return false
	default:
		return true
	}
}

// Symbol is a one-cell marker for f.
func (f Feedback) Symbol() string {
	switch {
	case f == FeedbackPositive:
		return "+"
	case f.IsNegative():
		return "-"
	default:
		return ""
	}
}
