package pipeline

import (
	"context"
	"fmt"

	"github.com/dubflow/api/internal/model"
)

// persistStage writes every generated artifact to the output directory using
// the input's base name. Re-running the pipeline for the same input
// overwrites the previous run's files.
func (o *Orchestrator) persistStage(ctx context.Context, st *runState) error {
	srcSuffix := languageSuffix(o.opts.SourceLanguage)
	dstSuffix := languageSuffix(o.opts.TargetLanguage)

	files := []struct {
		artifact string
		filename string
		content  []byte
	}{
		{model.ArtifactTranscript, fmt.Sprintf("%s_%s.txt", st.baseName, srcSuffix), []byte(st.transcript + "\n")},
		{model.ArtifactTranslation, fmt.Sprintf("%s_%s.txt", st.baseName, dstSuffix), []byte(st.translation + "\n")},
		{model.ArtifactEditorScript, fmt.Sprintf("%s_editor.txt", st.baseName), []byte(renderEditorScript(st.script))},
		{model.ArtifactDubbedAudio, fmt.Sprintf("%s_%s.mp3", st.baseName, dstSuffix), st.audio},
	}

	for _, f := range files {
		path, err := o.store.Persist(f.filename, f.content)
		if err != nil {
			return fmt.Errorf("failed to persist %s: %w", f.artifact, err)
		}
		st.report.Artifacts[f.artifact] = model.Artifact{
			Name:      f.artifact,
			LocalPath: path,
		}
	}
	return nil
}

// publishStage uploads persisted artifacts and records their links. A single
// failed upload does not abort the run: the artifact keeps its local path and
// carries the publish error, and the remaining artifacts are still attempted.
func (o *Orchestrator) publishStage(ctx context.Context, st *runState) error {
	names := []string{
		model.ArtifactTranscript,
		model.ArtifactTranslation,
		model.ArtifactEditorScript,
		model.ArtifactDubbedAudio,
	}

	for _, name := range names {
		art, ok := st.report.Artifacts[name]
		if !ok {
			return fmt.Errorf("artifact %s was not persisted", name)
		}

		var url string
		err := retryOnce(ctx, func() error {
			var perr error
			url, perr = o.store.Publish(ctx, art.LocalPath)
			return perr
		})
		if err != nil {
			art.PublishError = err.Error()
		} else {
			art.RemoteURL = url
		}
		st.report.Artifacts[name] = art
	}
	return nil
}
