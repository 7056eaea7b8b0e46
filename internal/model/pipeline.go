package model

import "time"

// PipelineStartRequest represents the request body for starting a run
type PipelineStartRequest struct {
	InputPath string `json:"inputPath" validate:"required,min=1"`
	VoiceID   string `json:"voiceId" validate:"omitempty,min=1,max=64"`
}

// PipelineStartResponse represents the response for a queued run
type PipelineStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// PipelineStatusResponse represents the current state of a pipeline job
type PipelineStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// PipelineCancelResponse represents the response for a cancel request
type PipelineCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}

// UploadVideoResponse represents the response for a video upload
type UploadVideoResponse struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
