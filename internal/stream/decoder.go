// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// readSize is the chunk size requested from the transport.
const readSize = 32 * 1024

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads response objects from a stream body.
//
// The body is decoded as UTF-8 (a leading byte-order mark is removed and
// invalid sequences become U+FFFD) and fed to a Parser one read at a time,
// so object boundaries need not line up with reads.
//
// Example:
//
//	dec := stream.NewDecoder(resp.Body)
//	for {
//	    obj, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    acc.Add(obj)
//	}
type Decoder struct {
	r       io.Reader
	parser  Parser
	chunk   []byte
	pending []*model.ChatResponse
	err     error
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:     transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())),
		chunk: make([]byte, readSize),
	}
}

// Next returns the next response object. It returns io.EOF once the stream
// ended cleanly. Objects completed before a failure are returned before the
// failure itself.
func (d *Decoder) Next() (*model.ChatResponse, error) {
	for {
		if len(d.pending) > 0 {
			obj := d.pending[0]
			d.pending[0] = nil
			d.pending = d.pending[1:]
			return obj, nil
		}
		if d.err != nil {
			return nil, d.err
		}
		d.fill()
	}
}

// fill performs one read and parses it.
func (d *Decoder) fill() {
	n, err := d.r.Read(d.chunk)
	if n > 0 {
		objs, perr := d.parser.Feed(d.chunk[:n])
		d.pending = append(d.pending, objs...)
		if perr != nil {
			d.err = perr
			return
		}
	}

	switch {
	case err == io.EOF:
		if ferr := d.parser.Finish(); ferr != nil {
			d.err = ferr
		} else {
			d.err = io.EOF
		}
	case err != nil:
		d.err = chaterr.Transport("", err)
	}
}

// Process reads the stream and calls fn for each object.
// Blocks until the stream is complete, fn fails, or ctx is cancelled.
func (d *Decoder) Process(ctx context.Context, fn func(*model.ChatResponse) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		obj, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
}
