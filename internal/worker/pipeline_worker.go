package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/config"
	"github.com/dubflow/api/internal/model"
	"github.com/dubflow/api/internal/pipeline"
	"github.com/dubflow/api/internal/service"
	"github.com/dubflow/api/internal/websocket"
)

// PipelineWorker processes pipeline jobs end to end: it builds an
// orchestrator per job, streams stage progress to the job record and the
// websocket hub, and stores the run report.
type PipelineWorker struct {
	pipelineService *service.PipelineService
	storageClient   client.StorageClient
	elevenLabs      *client.ElevenLabsClient
	anthropic       *client.AnthropicClient
	hub             *websocket.Hub
	cfg             *config.Config
}

// NewPipelineWorker creates a new pipeline worker. Unconfigured clients may
// be nil; the orchestrator falls back to mock outputs for those stages.
func NewPipelineWorker(
	pipelineService *service.PipelineService,
	storageClient client.StorageClient,
	elevenLabs *client.ElevenLabsClient,
	anthropic *client.AnthropicClient,
	hub *websocket.Hub,
	cfg *config.Config,
) *PipelineWorker {
	return &PipelineWorker{
		pipelineService: pipelineService,
		storageClient:   storageClient,
		elevenLabs:      elevenLabs,
		anthropic:       anthropic,
		hub:             hub,
		cfg:             cfg,
	}
}

// ProcessTask handles one pipeline task
func (w *PipelineWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting pipeline job: %s", jobID)

	var payload model.PipelineJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload", nil)
		return fmt.Errorf("failed to unmarshal pipeline payload: %w", err)
	}

	if w.pipelineService.IsCanceled(ctx, jobID) {
		log.Printf("Pipeline job %s canceled before start", jobID)
		return nil
	}

	orch := w.buildOrchestrator()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	orch.OnProgress(func(stage model.Stage, index, total int, status string) {
		// Cancel requests take effect at the next stage boundary.
		if status == "started" && w.pipelineService.IsCanceled(ctx, jobID) {
			cancel()
		}
		w.reportProgress(ctx, jobID, stage, index, total, status)
	})

	report := orch.RunWithVoice(runCtx, payload.InputPath, payload.VoiceID)

	if w.pipelineService.IsCanceled(ctx, jobID) {
		log.Printf("Pipeline job %s canceled", jobID)
		return nil
	}

	if report.Aborted != nil {
		errMsg := fmt.Sprintf("Aborted at %s: %s", report.Aborted.Stage, report.Aborted.Reason)
		w.failJob(ctx, jobID, errMsg, report)
		// The job is recorded as failed with its report; retrying through
		// the queue would re-run completed stages for nothing.
		return nil
	}

	if err := w.pipelineService.CompleteJob(ctx, jobID, report); err != nil {
		w.failJob(ctx, jobID, "Failed to save report", report)
		return err
	}

	w.hub.BroadcastComplete(jobID, report)
	log.Printf("Pipeline job %s completed", jobID)
	return nil
}

// buildOrchestrator assembles the pipeline with whatever adapters are
// configured. Unconfigured adapters are passed as nil so the matching stages
// fall back to mock outputs.
func (w *PipelineWorker) buildOrchestrator() *pipeline.Orchestrator {
	var transcriber pipeline.Transcriber
	var synthesizer pipeline.SpeechSynthesizer
	if w.elevenLabs != nil && w.elevenLabs.IsConfigured() {
		transcriber = w.elevenLabs
		synthesizer = w.elevenLabs
	}

	var textGen pipeline.TextGenerator
	if w.anthropic != nil && w.anthropic.IsConfigured() {
		textGen = w.anthropic
	}

	store := pipeline.NewArtifactStore(w.storageClient, w.cfg.Pipeline.OutputDir)

	return pipeline.New(store, transcriber, textGen, synthesizer, pipeline.Options{
		SourceLanguage: w.cfg.Pipeline.SourceLanguage,
		TargetLanguage: w.cfg.Pipeline.TargetLanguage,
		VoiceID:        w.cfg.ElevenLabs.VoiceID,
	})
}

func (w *PipelineWorker) reportProgress(ctx context.Context, jobID string, stage model.Stage, index, total int, status string) {
	done := index - 1
	if status == "done" {
		done = index
	}
	// Stage boundaries map onto 0-95%; the final 5% is the report store.
	progress := done * 95 / total

	step := fmt.Sprintf("%s (%d/%d) %s", stage, index, total, status)
	if err := w.pipelineService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *PipelineWorker) failJob(ctx context.Context, jobID, errMsg string, report *model.RunReport) {
	if err := w.pipelineService.FailJob(ctx, jobID, errMsg, report); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "PIPELINE_FAILED", errMsg)
}
