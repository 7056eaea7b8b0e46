package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/model"
)

func TestPersistWritesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(nil, filepath.Join(dir, "out"))

	path, err := store.Persist("demo_hindi.txt", []byte("first"))
	if err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	path2, err := store.Persist("demo_hindi.txt", []byte("second"))
	if err != nil {
		t.Fatalf("second persist failed: %v", err)
	}
	if path != path2 {
		t.Errorf("same filename produced different paths: %s vs %s", path, path2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestPublishMockURL(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(nil, dir)

	path, err := store.Persist("demo_english.mp3", []byte("audio"))
	if err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	url, err := store.Publish(context.Background(), path)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if url != "https://cdn.dubflow.dev/demo_english.mp3" {
		t.Errorf("unexpected mock URL %s", url)
	}
}

// failingStorage rejects uploads whose key matches failKey.
type failingStorage struct {
	failKey string
	urls    map[string]string
}

func (f *failingStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if key == f.failKey {
		return "", &client.ServiceError{Service: "storage", Kind: client.ErrRejected, Status: 400, Message: "denied"}
	}
	url := "https://bucket.example.com/" + key
	if f.urls == nil {
		f.urls = make(map[string]string)
	}
	f.urls[key] = url
	return url, nil
}

func (f *failingStorage) Delete(ctx context.Context, key string) error { return nil }

func (f *failingStorage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?signed=1", nil
}

func (f *failingStorage) GetPublicURL(key string) string {
	return "https://bucket.example.com/" + key
}

func TestPublishDegradedRunStillCompletes(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(&failingStorage{failKey: "demo_editor.txt"}, filepath.Join(dir, "out"))
	input := writeInput(t, dir, "demo.mp4")

	o := New(store, nil, nil, nil, Options{
		SourceLanguage: "hin",
		TargetLanguage: "eng",
		VoiceID:        "v",
	})
	report := o.Run(context.Background(), input)

	if report.Aborted != nil {
		t.Fatalf("publish failure must not abort the run, got %+v", report.Aborted)
	}
	if got := report.Stages[model.StagePublish].Status; got != model.StageStatusSucceeded {
		t.Errorf("publish stage status %s, want %s", got, model.StageStatusSucceeded)
	}

	editor := report.Artifacts[model.ArtifactEditorScript]
	if editor.PublishError == "" {
		t.Error("failed artifact should record its publish error")
	}
	if editor.RemoteURL != "" {
		t.Errorf("failed artifact should have no URL, got %s", editor.RemoteURL)
	}
	if editor.LocalPath == "" {
		t.Error("failed artifact must keep its local path")
	}

	for _, name := range []string{model.ArtifactTranscript, model.ArtifactTranslation, model.ArtifactDubbedAudio} {
		art := report.Artifacts[name]
		if art.PublishError != "" || !strings.HasPrefix(art.RemoteURL, "https://bucket.example.com/") {
			t.Errorf("artifact %s should have published: %+v", name, art)
		}
	}
}
