package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/dubflow/api/internal/model"
)

// uploadStage verifies the source file and uploads it to object storage.
// The original video is the first published artifact so a run that aborts
// later still leaves the source reachable by link.
func (o *Orchestrator) uploadStage(ctx context.Context, st *runState) error {
	info, err := os.Stat(st.inputPath)
	if err != nil {
		return fmt.Errorf("input file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory", st.inputPath)
	}

	var url string
	err = retryOnce(ctx, func() error {
		var perr error
		url, perr = o.store.Publish(ctx, st.inputPath)
		return perr
	})
	if err != nil {
		return fmt.Errorf("failed to upload source video: %w", err)
	}

	st.report.Artifacts[model.ArtifactOriginal] = model.Artifact{
		Name:      model.ArtifactOriginal,
		LocalPath: st.inputPath,
		RemoteURL: url,
	}
	return nil
}
