package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/model"
)

// Transcriber converts a media file into source-language text.
type Transcriber interface {
	Transcribe(ctx context.Context, media io.Reader, filename, languageCode string) (string, error)
}

// TextGenerator produces text from a prompt (translation, editor brief).
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SpeechSynthesizer converts text to audio bytes with a given voice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Options fixes the run parameters; they are supplied once at construction so
// runs are reproducible. VoiceID can still be overridden per run.
type Options struct {
	SourceLanguage string
	TargetLanguage string
	VoiceID        string
}

// ProgressFunc receives stage lifecycle updates ("started", "done", "failed").
type ProgressFunc func(stage model.Stage, index, total int, status string)

// Orchestrator drives the fixed seven-stage sequence over one input video.
// It holds no cross-run state; Run may be called concurrently for different
// inputs. Adapters left nil degrade to deterministic mock outputs, matching
// how unconfigured services behave across the rest of the API.
type Orchestrator struct {
	store       *ArtifactStore
	transcriber Transcriber
	textGen     TextGenerator
	synthesizer SpeechSynthesizer
	opts        Options
	onProgress  ProgressFunc
}

// New creates an orchestrator with the given adapters and fixed options.
func New(store *ArtifactStore, transcriber Transcriber, textGen TextGenerator, synthesizer SpeechSynthesizer, opts Options) *Orchestrator {
	return &Orchestrator{
		store:       store,
		transcriber: transcriber,
		textGen:     textGen,
		synthesizer: synthesizer,
		opts:        opts,
	}
}

// OnProgress registers a progress callback for stage transitions.
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	o.onProgress = fn
}

// runState accumulates stage outputs over one run. Stage inputs are always
// outputs of earlier stages, so a stage only reads fields the sequence has
// already written.
type runState struct {
	inputPath   string
	baseName    string
	voiceID     string
	transcript  string
	translation string
	script      *model.EditorScript
	audio       []byte
	report      *model.RunReport
}

type stageExec struct {
	name model.Stage
	run  func(ctx context.Context, st *runState) error
}

func (o *Orchestrator) stages() []stageExec {
	return []stageExec{
		{model.StageUpload, o.uploadStage},
		{model.StageTranscribe, o.transcribeStage},
		{model.StageTranslate, o.translateStage},
		{model.StageEditorScript, o.editorScriptStage},
		{model.StageSynthesize, o.synthesizeStage},
		{model.StagePersist, o.persistStage},
		{model.StagePublish, o.publishStage},
	}
}

// Run executes the pipeline for one input video and returns the run report.
// The report is complete for every outcome: stages after an abort are marked
// not attempted, and the completed-stage list is always an in-order prefix of
// the canonical sequence.
func (o *Orchestrator) Run(ctx context.Context, inputPath string) *model.RunReport {
	voiceID := o.opts.VoiceID

	return o.run(ctx, inputPath, voiceID)
}

// RunWithVoice executes the pipeline with an explicit synthesis voice,
// overriding the configured default.
func (o *Orchestrator) RunWithVoice(ctx context.Context, inputPath, voiceID string) *model.RunReport {
	if voiceID == "" {
		voiceID = o.opts.VoiceID
	}
	return o.run(ctx, inputPath, voiceID)
}

func (o *Orchestrator) run(ctx context.Context, inputPath, voiceID string) *model.RunReport {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	st := &runState{
		inputPath: inputPath,
		baseName:  base,
		voiceID:   voiceID,
		report: &model.RunReport{
			InputFile:       inputPath,
			CompletedStages: []model.Stage{},
			Stages:          make(map[model.Stage]model.StageOutcome),
			Artifacts:       make(map[string]model.Artifact),
			StartedAt:       time.Now(),
		},
	}

	stages := o.stages()
	for _, sg := range stages {
		st.report.Stages[sg.name] = model.StageOutcome{Status: model.StageStatusNotAttempted}
	}

	for i, sg := range stages {
		o.progress(sg.name, i+1, len(stages), "started")

		if err := sg.run(ctx, st); err != nil {
			st.report.Stages[sg.name] = model.StageOutcome{
				Status: model.StageStatusFailed,
				Error:  err.Error(),
			}
			st.report.Aborted = &model.AbortInfo{
				Stage:  sg.name,
				Reason: err.Error(),
			}
			o.progress(sg.name, i+1, len(stages), "failed")
			break
		}

		st.report.CompletedStages = append(st.report.CompletedStages, sg.name)
		st.report.Stages[sg.name] = model.StageOutcome{Status: model.StageStatusSucceeded}
		o.progress(sg.name, i+1, len(stages), "done")
	}

	st.report.FinishedAt = time.Now()
	return st.report
}

func (o *Orchestrator) progress(stage model.Stage, index, total int, status string) {
	if o.onProgress != nil {
		o.onProgress(stage, index, total, status)
	}
}

// retryOnce runs fn, retrying exactly once (immediately, no backoff) if the
// failure is a transient adapter error. Anything stronger is the caller's job.
func retryOnce(ctx context.Context, fn func() error) error {
	err := fn()
	if err != nil && client.IsTransient(err) && ctx.Err() == nil {
		err = fn()
	}
	return err
}
