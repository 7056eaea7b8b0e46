package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dubflow/api/internal/model"
)

const (
	TaskTypePipeline = "pipeline:process"

	pipelineQueue = "pipeline"
	jobTTL        = 24 * time.Hour
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobNotFinished = errors.New("job not finished")
	ErrJobFinished    = errors.New("job already completed")
	ErrNoReport       = errors.New("no report recorded")
)

// PipelineService owns the job lifecycle: enqueueing runs, status, reports
// and cancellation. Job records live in Redis for jobTTL; the run itself
// happens in the asynq worker.
type PipelineService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
}

func NewPipelineService(redisClient *redis.Client, asynqClient *asynq.Client) *PipelineService {
	return &PipelineService{redis: redisClient, asynqClient: asynqClient}
}

// pipelineTask is the asynq payload envelope shared with the worker.
type pipelineTask struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

// StartPipeline records a queued job and hands it to the worker queue.
func (s *PipelineService) StartPipeline(ctx context.Context, req *model.PipelineStartRequest) (*model.PipelineStartResponse, error) {
	payload, err := json.Marshal(&model.PipelineJobPayload{
		InputPath: req.InputPath,
		VoiceID:   req.VoiceID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now()
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      model.JobTypePipeline,
		Status:    model.JobStatusQueued,
		Payload:   payload,
		CreatedAt: now,
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	envelope, err := json.Marshal(pipelineTask{JobID: job.ID, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}

	// Stage-level retries belong to the orchestrator; the queue redelivers
	// only when the whole process died mid-run.
	_, err = s.asynqClient.Enqueue(asynq.NewTask(TaskTypePipeline, envelope),
		asynq.Queue(pipelineQueue),
		asynq.MaxRetry(1),
		asynq.Retention(jobTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue task: %w", err)
	}

	return &model.PipelineStartResponse{
		JobID:     job.ID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

func (s *PipelineService) GetStatus(ctx context.Context, jobID string) (*model.PipelineStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.PipelineStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetReport loads the run report of a finished job. Failed runs have
// reports too; an aborted run's report names the failing stage.
func (s *PipelineService) GetReport(ctx context.Context, jobID string) (*model.RunReport, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusSucceeded && job.Status != model.JobStatusFailed {
		return nil, ErrJobNotFinished
	}
	if len(job.Result) == 0 {
		return nil, ErrNoReport
	}

	var report model.RunReport
	if err := json.Unmarshal(job.Result, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

// CancelPipeline flips a queued or running job to canceled. The worker
// observes the flag at stage boundaries and stops.
func (s *PipelineService) CancelPipeline(ctx context.Context, jobID string) (*model.PipelineCancelResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusSucceeded || job.Status == model.JobStatusFailed {
		return nil, ErrJobFinished
	}

	now := time.Now()
	job.Status = model.JobStatusCanceled
	job.CompletedAt = &now
	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}

	return &model.PipelineCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// UpdateJobProgress is called by the worker as stages advance. The first
// update moves a queued job to running.
func (s *PipelineService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Progress = progress
	job.CurrentStep = step
	if job.Status == model.JobStatusQueued {
		now := time.Now()
		job.Status = model.JobStatusRunning
		job.StartedAt = &now
	}
	return s.saveJob(ctx, job)
}

func (s *PipelineService) IsCanceled(ctx context.Context, jobID string) bool {
	job, err := s.getJob(ctx, jobID)
	return err == nil && job.Status == model.JobStatusCanceled
}

// CompleteJob stores the run report and marks the job succeeded.
func (s *PipelineService) CompleteJob(ctx context.Context, jobID string, report *model.RunReport) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	result, err := json.Marshal(report)
	if err != nil {
		return err
	}

	now := time.Now()
	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = result
	job.CompletedAt = &now
	return s.saveJob(ctx, job)
}

// FailJob marks the job failed. The partial run report is kept so the
// aborted stage stays inspectable.
func (s *PipelineService) FailJob(ctx context.Context, jobID string, errMsg string, report *model.RunReport) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if report != nil {
		if result, merr := json.Marshal(report); merr == nil {
			job.Result = result
		}
	}

	now := time.Now()
	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	job.CompletedAt = &now
	return s.saveJob(ctx, job)
}

func jobKey(jobID string) string {
	return "job:" + jobID
}

func (s *PipelineService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

func (s *PipelineService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
