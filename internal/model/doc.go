// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the wire and domain types shared by the stream
// decoder, the conversation store and the history client.
//
// # Key Types
//
//   - ChatMessage: Single message with role, content, date and optional feedback
//   - Conversation: Ordered, append-only list of messages with a title
//   - ChatResponse: One object of a streamed generation response
//   - Citation: Source reference parsed from a tool message
//   - CosmosDBHealth: Capability flag for remote history
//   - Role: Message role enumeration (user, assistant, tool, error)
//
// # Usage
//
// Start a conversation from a question:
//
//	q := model.NewUserMessage("What is our leave policy?")
//	conv := model.NewConversation(q)
//
// Read the citations behind an answer:
//
//	if answer, tool, ok := conv.LastAnswer(); ok {
//	    for i, c := range model.ParseCitations(tool) {
//	        fmt.Println(i+1, c.DisplayTitle(i+1), answer.ID)
//	    }
//	}
package model
