package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dubflow/api/internal/model"
)

// maxVideoSize caps uploads at 500MB.
const maxVideoSize = 500 * 1024 * 1024

var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// VideoService stores uploaded source videos in the local input directory
// where pipeline runs pick them up by path.
type VideoService struct {
	inputDir string
}

// NewVideoService creates a new video service
func NewVideoService(inputDir string) *VideoService {
	return &VideoService{
		inputDir: inputDir,
	}
}

// SaveVideo writes an uploaded video into the input directory. Re-uploading
// the same filename replaces the earlier file.
func (s *VideoService) SaveVideo(filename string, file io.Reader, size int64) (*model.UploadVideoResponse, error) {
	if size > maxVideoSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", size, maxVideoSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedVideoExts[ext] {
		return nil, fmt.Errorf("unsupported video format %q", ext)
	}

	name := sanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.MkdirAll(s.inputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create input directory: %w", err)
	}

	path := filepath.Join(s.inputDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, maxVideoSize+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written > maxVideoSize {
		os.Remove(path)
		return nil, fmt.Errorf("file too large (max %d bytes)", maxVideoSize)
	}

	return &model.UploadVideoResponse{
		Path:      path,
		Size:      written,
		CreatedAt: time.Now(),
	}, nil
}

// sanitizeFilename strips path components and keeps a safe character set so
// an upload can never escape the input directory.
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" || strings.HasPrefix(name, ".") {
		return ""
	}
	return b.String()
}
