package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dubflow/api/internal/client"
)

// ArtifactStore writes pipeline outputs to the local output area and mirrors
// them to object storage. Local writes always happen before any publish; both
// sides use destructive overwrite, so re-running a pipeline for the same input
// replaces the previous run's files.
type ArtifactStore struct {
	objects   client.StorageClient
	outputDir string
}

// NewArtifactStore creates an artifact store. objects may be nil, in which
// case publishes return a mock CDN URL (development mode).
func NewArtifactStore(objects client.StorageClient, outputDir string) *ArtifactStore {
	return &ArtifactStore{
		objects:   objects,
		outputDir: outputDir,
	}
}

// Persist writes content under the given name in the output directory and
// returns the local path.
func (s *ArtifactStore) Persist(name string, content []byte) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to persist %s: %w", name, err)
	}

	return path, nil
}

// Publish uploads a local file to object storage keyed by its base name and
// returns the public URL. Publishing the same name twice overwrites the prior
// object.
func (s *ArtifactStore) Publish(ctx context.Context, localPath string) (string, error) {
	key := filepath.Base(localPath)

	if s.objects == nil {
		return s.mockURL(key), nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	return s.objects.Upload(ctx, key, f, contentTypeFor(key))
}

// mockURL mirrors the public URL shape for development without storage credentials.
func (s *ArtifactStore) mockURL(key string) string {
	return fmt.Sprintf("https://cdn.dubflow.dev/%s", key)
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
