// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat backend.
//
// The backend exposes two generation endpoints that answer with chunked
// JSON-lines streams, a set of history endpoints backed by CosmosDB, and a
// settings endpoint read once at startup.
//
// # Key Types
//
//   - Client: HTTP client for every backend endpoint
//   - ClientConfig: Base URL, timeout, headers and logger
//   - Generation: An open generation stream, read with Next
//
// # Usage
//
//	client := api.NewClient(&api.ClientConfig{BaseURL: "http://localhost:50505"})
//	gen, err := client.HistoryGenerate(ctx, msgs, "")
//	if err != nil {
//	    return err
//	}
//	defer gen.Close()
//	for {
//	    obj, err := gen.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Non-ok statuses are returned as *chaterr.Error values of KindServer with
// the body's error text; network failures are KindTransport.
package api
