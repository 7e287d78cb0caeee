// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the client-side state container for conversations.
//
// All state lives in an immutable State snapshot. Changes go through
// Store.Dispatch, which applies the pure Reduce function under a lock, so
// no two mutations interleave. The generation status moves
// NotRunning -> Processing -> Done -> NotRunning; entering Done performs
// exactly one persistence write of the committed conversation when remote
// history is enabled.
//
// # Key Types
//
//   - State: Snapshot of the active conversation, history cache and panels
//   - Action: Closed set of state changes consumed by Reduce
//   - Store: Serialized dispatch, persistence and notice expiry
//   - Turn: One generation request started by StartTurn
//   - HistoryService: Remote persistence, implemented by api.Client
//
// # Usage
//
//	st := store.New(client, store.Options{Logger: log})
//	turn, err := st.StartTurn("hello", "")
//	if err != nil {
//	    return err
//	}
//	st.CommitTurnResult(turn, acc.Finalize(nil), acc.Metadata())
//
// History operations only change the cache after the backend confirms
// them. Failures surface as Notices that expire after Options.NoticeTTL.
package store
