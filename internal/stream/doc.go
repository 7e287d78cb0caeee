// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes generation streams and folds them into messages.
//
// A generation endpoint answers with a chunked body of newline-adjacent JSON
// objects. Transport chunks are not aligned to objects, so a single object
// may span several reads and a read may carry several objects.
//
// # Key Types
//
//   - Parser: push decoder fed with raw byte chunks
//   - Decoder: pull decoder over an io.Reader, ending in io.EOF
//   - Accumulator: folds response objects into tool and assistant messages
//
// # Usage
//
//	dec := stream.NewDecoder(body)
//	acc := stream.NewAccumulator()
//	err := dec.Process(ctx, func(obj *model.ChatResponse) error {
//	    acc.Add(obj)
//	    render(acc.Messages(), acc.Loading())
//	    return nil
//	})
//
// Errors are *chaterr.Error values: KindMalformed for undecodable input,
// KindServer for an error field inside the stream, and KindTransport for
// read failures.
package stream
