// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes generation streams and folds them into messages.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// PARSER
// =============================================================================

// Parser turns byte chunks of a generation stream into response objects.
//
// Chunks are split on newlines and each non-empty fragment is appended to
// a running buffer, which is parsed after every append. A buffer that is a
// valid prefix of a JSON value is kept for the next fragment. A buffer that
// can never become valid JSON, a value that is not a response object, or a
// response carrying an error field fails the stream. Bare "{}" keepalive
// objects are dropped.
//
// Parser keeps no reference to the chunks passed to Feed.
type Parser struct {
	buf     []byte
	scratch bytes.Buffer
	err     error
}

// Feed consumes one chunk and returns the objects it completed, in order.
// After a non-nil error the parser is failed and returns that error forever.
func (p *Parser) Feed(chunk []byte) ([]*model.ChatResponse, error) {
	if p.err != nil {
		return nil, p.err
	}

	var out []*model.ChatResponse
	for _, frag := range bytes.Split(chunk, []byte{'\n'}) {
		if len(frag) == 0 {
			continue
		}
		p.buf = append(p.buf, frag...)

		var err error
		out, err = p.drain(out)
		if err != nil {
			p.err = err
			return out, err
		}
	}
	return out, nil
}

// Finish reports whether the stream ended cleanly. Unparsed bytes left in
// the buffer are a malformed stream.
func (p *Parser) Finish() error {
	if p.err != nil {
		return p.err
	}
	if rest := bytes.TrimSpace(p.buf); len(rest) > 0 {
		p.err = chaterr.Malformed("stream ended inside a JSON value (%d bytes unparsed)", len(rest))
		return p.err
	}
	return nil
}

// Buffered returns the number of bytes waiting for more input.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// drain parses every complete value at the head of the buffer.
func (p *Parser) drain(out []*model.ChatResponse) ([]*model.ChatResponse, error) {
	for {
		rest := bytes.TrimLeft(p.buf, " \t\r\n")
		if len(rest) == 0 {
			p.buf = p.buf[:0]
			return out, nil
		}

		dec := json.NewDecoder(bytes.NewReader(rest))
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Incomplete: wait for the next fragment.
			p.buf = rest
			return out, nil
		}
		if err != nil {
			return out, chaterr.Malformed("%v", err)
		}
		p.buf = rest[dec.InputOffset():]

		resp, err := p.decodeObject(raw)
		if err != nil {
			return out, err
		}
		if resp != nil {
			out = append(out, resp)
		}
	}
}

// decodeObject converts one complete JSON value. It returns nil for "{}".
func (p *Parser) decodeObject(raw json.RawMessage) (*model.ChatResponse, error) {
	p.scratch.Reset()
	if err := json.Compact(&p.scratch, raw); err == nil && p.scratch.String() == "{}" {
		return nil, nil
	}

	var resp model.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, chaterr.Malformed("unexpected response shape: %v", err)
	}
	if resp.Error.Present() {
		return nil, chaterr.Server("", 0, resp.Error.Message)
	}
	return &resp, nil
}
