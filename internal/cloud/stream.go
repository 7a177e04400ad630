// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"encoding/json"
)

// =============================================================================
// STREAM DECODER
// =============================================================================

const (
	// dataPrefix marks a meaningful record line. Exactly this prefix,
	// case-sensitive.
	dataPrefix = "data: "

	// doneSentinel ends delta production for its line without ending the
	// stream; the true end is the transport signaling completion.
	doneSentinel = "[DONE]"
)

// StreamChunk is the JSON payload of one record line. Content is a
// pointer so an absent field is distinguishable from an empty string:
// absent means no delta for the line.
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder turns a sequence of raw byte chunks into content deltas. Each
// decoder is single-use, one per request.
//
// The residual buffer carries the trailing, not-yet-newline-terminated
// bytes from one chunk into the next, so record lines split across chunk
// boundaries reassemble correctly. Splitting only at '\n' also keeps
// multi-byte UTF-8 sequences intact: 0x0A never occurs inside one, so a
// rune split across chunks simply rides along in the residual.
type Decoder struct {
	residual []byte
}

// NewDecoder creates a decoder with an empty residual.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk to the residual and returns the deltas from every
// complete line it now holds, in arrival order. The text after the last
// newline stays in the residual for the next chunk; when the transport
// ends, the caller discards whatever remains.
func (d *Decoder) Feed(chunk []byte) []string {
	d.residual = append(d.residual, chunk...)

	var deltas []string
	for {
		nl := bytes.IndexByte(d.residual, '\n')
		if nl < 0 {
			return deltas
		}
		line := d.residual[:nl]
		d.residual = d.residual[nl+1:]

		if delta, ok := decodeLine(line); ok {
			deltas = append(deltas, delta)
		}
	}
}

// decodeLine extracts the content delta from one record line, if any.
// Malformed JSON and unrecognized lines are dropped, never fatal.
func decodeLine(line []byte) (string, bool) {
	line = bytes.TrimRight(line, "\r")

	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return "", false
	}
	value := bytes.TrimSpace(line[len(dataPrefix):])

	if len(value) == 0 {
		return "", false
	}
	if bytes.Equal(value, []byte(doneSentinel)) {
		return "", false
	}

	var chunk StreamChunk
	if err := json.Unmarshal(value, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		return "", false
	}
	return *chunk.Choices[0].Delta.Content, true
}
