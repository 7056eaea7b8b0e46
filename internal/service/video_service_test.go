package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveVideoWritesToInputDir(t *testing.T) {
	dir := t.TempDir()
	s := NewVideoService(filepath.Join(dir, "input"))

	resp, err := s.SaveVideo("demo.mp4", strings.NewReader("video bytes"), 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(resp.Path) != "demo.mp4" {
		t.Errorf("unexpected path %s", resp.Path)
	}
	if resp.Size != 11 {
		t.Errorf("unexpected size %d", resp.Size)
	}

	data, err := os.ReadFile(resp.Path)
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestSaveVideoRejectsUnsupportedFormat(t *testing.T) {
	s := NewVideoService(t.TempDir())

	for _, name := range []string{"notes.txt", "audio.mp3", "archive.zip", "noext"} {
		if _, err := s.SaveVideo(name, strings.NewReader("x"), 1); err == nil {
			t.Errorf("expected rejection for %s", name)
		}
	}
}

func TestSaveVideoRejectsOversizedDeclaredSize(t *testing.T) {
	s := NewVideoService(t.TempDir())

	if _, err := s.SaveVideo("big.mp4", strings.NewReader("x"), maxVideoSize+1); err == nil {
		t.Error("expected rejection for oversized upload")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"demo.mp4", "demo.mp4"},
		{"../../etc/passwd.mp4", "passwd.mp4"},
		{"my video (final).mp4", "my_video__final_.mp4"},
		{".hidden.mp4", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
