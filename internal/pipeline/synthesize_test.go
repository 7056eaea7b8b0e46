package pipeline

import (
	"strings"
	"testing"
)

func TestSplitChunksShortTextSingleChunk(t *testing.T) {
	chunks := splitChunks("a short script", 100)
	if len(chunks) != 1 || chunks[0] != "a short script" {
		t.Fatalf("unexpected chunks %v", chunks)
	}
}

func TestSplitChunksBreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks := splitChunks(text, 40)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 40 {
			t.Errorf("chunk %d too long (%d): %q", i, len(c), c)
		}
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Errorf("chunk %d has edge whitespace: %q", i, c)
		}
	}

	joined := strings.Join(chunks, " ")
	if joined != strings.TrimSpace(text) {
		t.Error("rejoined chunks do not reproduce the input text")
	}
}

func TestSplitChunksOversizedWordKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 50)
	chunks := splitChunks("start "+long+" end", 20)

	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word should be its own chunk, got %v", chunks)
	}
}

func TestSplitChunksEmptyInput(t *testing.T) {
	if chunks := splitChunks("   ", 10); chunks != nil {
		t.Errorf("expected nil for blank input, got %v", chunks)
	}
}

func TestMockAudioHasMP3FrameHeader(t *testing.T) {
	audio := mockAudio("hello")
	if len(audio) < 4 || audio[0] != 0xFF || audio[1] != 0xFB {
		t.Errorf("mock audio missing frame sync bytes: % x", audio[:min(4, len(audio))])
	}
}
