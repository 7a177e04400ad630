// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"testing"
	"time"
)

func TestStreamingBufferBatchThreshold(t *testing.T) {
	sb := NewStreamingBuffer()

	// Below the batch threshold and within the frame interval, no flush.
	sb.Reset()
	sb.Write("a")
	if content, ok := sb.Flush(); ok {
		t.Errorf("unexpected flush of %q before threshold", content)
	}

	for i := 0; i < defaultBatchSize; i++ {
		sb.Write("x")
	}
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("expected flush after batch threshold")
	}
	if len(content) != defaultBatchSize+1 {
		t.Errorf("flushed %d bytes, want %d", len(content), defaultBatchSize+1)
	}
}

func TestStreamingBufferTimeThreshold(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("hello")

	time.Sleep(sb.minFlushMs + 5*time.Millisecond)

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("expected flush after frame interval elapsed")
	}
	if content != "hello" {
		t.Errorf("flushed %q, want %q", content, "hello")
	}
}

func TestStreamingBufferEmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()

	time.Sleep(sb.minFlushMs + 5*time.Millisecond)
	if content, ok := sb.Flush(); ok {
		t.Errorf("empty buffer flushed %q", content)
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer force-flushed")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("tail")

	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("ForceFlush = (%q, %v), want (%q, true)", content, ok, "tail")
	}
	if sb.Pending() != 0 {
		t.Errorf("Pending after force flush = %d", sb.Pending())
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discarded")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("Pending after reset = %d", sb.Pending())
	}
	if content, ok := sb.ForceFlush(); ok {
		t.Errorf("reset buffer still held %q", content)
	}
}

func TestStreamingBufferOrderPreserved(t *testing.T) {
	sb := NewStreamingBuffer()
	var want string
	for i := 0; i < 40; i++ {
		tok := fmt.Sprintf("[%d]", i)
		sb.Write(tok)
		want += tok
	}

	var got string
	for {
		content, ok := sb.ForceFlush()
		if !ok {
			break
		}
		got += content
	}
	if got != want {
		t.Errorf("drained content out of order:\ngot  %s\nwant %s", got, want)
	}
}

func TestStreamingBufferConcurrentWrites(t *testing.T) {
	sb := NewStreamingBuffer()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 200; i++ {
			sb.Write("t")
		}
		close(done)
	}()

	total := 0
	for {
		select {
		case <-done:
			if content, ok := sb.ForceFlush(); ok {
				total += len(content)
			}
			if total != 200 {
				t.Errorf("drained %d bytes, want 200", total)
			}
			return
		default:
			if content, ok := sb.Flush(); ok {
				total += len(content)
			}
		}
	}
}

func TestTruncateToWidth(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"héllo", 3, "hél"},
		{"日本語", 4, "日本"},
		{"a日本", 4, "a日"},
	}
	for _, tc := range cases {
		if got := truncateToWidth(tc.in, tc.width); got != tc.want {
			t.Errorf("truncateToWidth(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
