// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// sampleStream is a JSON-lines generation stream with keepalives and a
// multi-byte character.
const sampleStream = `{"id":"r1","choices":[{"messages":[{"role":"tool","content":"{\"citations\":[]}"}]}]}
{}

{"id":"r1","choices":[{"messages":[{"role":"assistant","content":"Hel"}]}]}
{"id":"r1","choices":[{"messages":[{"role":"assistant","content":"lo ☃"}]}]}
{"id":"r1","choices":[{"messages":[{"role":"assistant","content":" world"}]}],"history_metadata":{"conversation_id":"c9","title":"t","date":"d"}}
`

func feedAll(t *testing.T, chunks [][]byte) []*model.ChatResponse {
	t.Helper()
	var p Parser
	var out []*model.ChatResponse
	for _, c := range chunks {
		objs, err := p.Feed(c)
		require.NoError(t, err)
		out = append(out, objs...)
	}
	require.NoError(t, p.Finish())
	return out
}

func contents(objs []*model.ChatResponse) []string {
	var out []string
	for _, o := range objs {
		for _, m := range o.Fragments() {
			out = append(out, string(m.Role)+":"+m.Content)
		}
	}
	return out
}

// =============================================================================
// SPLITTING
// =============================================================================

func TestParserWholeStream(t *testing.T) {
	objs := feedAll(t, [][]byte{[]byte(sampleStream)})

	require.Len(t, objs, 4)
	assert.Equal(t, []string{
		`tool:{"citations":[]}`,
		"assistant:Hel",
		"assistant:lo ☃",
		"assistant: world",
	}, contents(objs))
	require.NotNil(t, objs[3].HistoryMetadata)
	assert.Equal(t, "c9", objs[3].HistoryMetadata.ConversationID)
}

func TestParserEverySingleSplit(t *testing.T) {
	data := []byte(sampleStream)
	want := contents(feedAll(t, [][]byte{data}))

	for i := 0; i <= len(data); i++ {
		got := contents(feedAll(t, [][]byte{data[:i], data[i:]}))
		require.Equal(t, want, got, "split at %d", i)
	}
}

func TestParserRandomSplits(t *testing.T) {
	data := []byte(sampleStream)
	want := contents(feedAll(t, [][]byte{data}))
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		var chunks [][]byte
		rest := data
		for len(rest) > 0 {
			n := 1 + rng.Intn(12)
			if n > len(rest) {
				n = len(rest)
			}
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		assert.Equal(t, want, contents(feedAll(t, chunks)), "round %d", round)
	}
}

func TestParserBackToBackObjects(t *testing.T) {
	line := `{"id":"a","choices":[]}{"id":"b","choices":[]}` + "\n"
	objs := feedAll(t, [][]byte{[]byte(line)})

	require.Len(t, objs, 2)
	assert.Equal(t, "a", objs[0].ID)
	assert.Equal(t, "b", objs[1].ID)
}

// =============================================================================
// SKIPPED FRAGMENTS
// =============================================================================

func TestParserSkipsEmptyAndKeepalive(t *testing.T) {
	tests := []string{
		"",
		"\n\n\n",
		"{}",
		"{}\n{}\n",
		"{ }\r\n",
		"\n{}\n\n{}",
	}
	for _, in := range tests {
		objs := feedAll(t, [][]byte{[]byte(in)})
		assert.Empty(t, objs, "input %q", in)
	}
}

// =============================================================================
// FAILURES
// =============================================================================

func TestParserIncompleteIsNotFatal(t *testing.T) {
	var p Parser
	objs, err := p.Feed([]byte(`{"id":"r1","choi`))
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Positive(t, p.Buffered())

	objs, err = p.Feed([]byte(`ces":[]}`))
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Zero(t, p.Buffered())
}

func TestParserTrailingBufferIsMalformed(t *testing.T) {
	var p Parser
	_, err := p.Feed([]byte(`{"id":"r1","choices":[{"messages":[`))
	require.NoError(t, err)

	err = p.Finish()
	require.Error(t, err)
	assert.Equal(t, chaterr.KindMalformed, chaterr.KindOf(err))
}

func TestParserInvalidJSONIsFatal(t *testing.T) {
	var p Parser
	_, err := p.Feed([]byte("{\"id\":]\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, chaterr.ErrMalformedStream))

	_, again := p.Feed([]byte(`{"id":"x"}`))
	assert.Equal(t, err, again, "parser stays failed")
}

func TestParserWrongShapeIsFatal(t *testing.T) {
	var p Parser
	_, err := p.Feed([]byte(`["not","an","object"]` + "\n"))
	require.Error(t, err)
	assert.Equal(t, chaterr.KindMalformed, chaterr.KindOf(err))
}

func TestParserErrorFieldIsFatal(t *testing.T) {
	var p Parser
	objs, err := p.Feed([]byte(`{"id":"1","choices":[]}` + "\n" + `{"error":"The response was filtered"}` + "\n"))

	require.Len(t, objs, 1, "objects before the error are still returned")
	require.Error(t, err)
	msg, ok := chaterr.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "The response was filtered", msg)
}

// =============================================================================
// DECODER
// =============================================================================

func TestDecoderOneByteReads(t *testing.T) {
	dec := NewDecoder(iotest.OneByteReader(strings.NewReader(sampleStream)))

	var objs []*model.ChatResponse
	for {
		obj, err := dec.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		objs = append(objs, obj)
	}
	assert.Equal(t, contents(feedAll(t, [][]byte{[]byte(sampleStream)})), contents(objs))
}

func TestDecoderStripsBOM(t *testing.T) {
	body := append([]byte("\xef\xbb\xbf"), []byte(`{"id":"x","choices":[]}`+"\n")...)
	dec := NewDecoder(bytes.NewReader(body))

	obj, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", obj.ID)

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderTruncatedBody(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"id":"x","choices":[]}` + "\n" + `{"id":"y",`))

	obj, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "x", obj.ID)

	_, err = dec.Next()
	assert.Equal(t, chaterr.KindMalformed, chaterr.KindOf(err))
}

func TestDecoderReadError(t *testing.T) {
	boom := errors.New("connection reset")
	dec := NewDecoder(iotest.ErrReader(boom))

	_, err := dec.Next()
	require.Error(t, err)
	assert.Equal(t, chaterr.KindTransport, chaterr.KindOf(err))
	assert.ErrorIs(t, err, boom)
}
