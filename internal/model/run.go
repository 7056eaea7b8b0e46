package model

import "time"

// Job represents a background pipeline job in the system
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"-"` // Stored as JSON
	Result      []byte     `json:"-"` // Stored as JSON
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypePipeline = "pipeline"
)

// PipelineJobPayload contains the data for one pipeline run
type PipelineJobPayload struct {
	InputPath string `json:"inputPath"`
	// VoiceID overrides the configured synthesis voice when set.
	VoiceID string `json:"voiceId,omitempty"`
}

// StageOutcome records what happened to a single stage.
type StageOutcome struct {
	Status StageStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Artifact is one named output of a run. LocalPath is always set before
// RemoteURL; RemoteURL stays empty when the publish call failed, in which
// case PublishError explains why.
type Artifact struct {
	Name         string `json:"name"`
	LocalPath    string `json:"localPath"`
	RemoteURL    string `json:"remoteUrl,omitempty"`
	PublishError string `json:"publishError,omitempty"`
}

// AbortInfo identifies the stage a run stopped at and why.
type AbortInfo struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// RunReport is the sole output surface of a pipeline run: which stages
// completed in order, every artifact with its locations, and the failing
// stage and reason when the run aborted. Stages absent from CompletedStages
// and not named in Aborted were never attempted.
type RunReport struct {
	InputFile       string                 `json:"inputFile"`
	CompletedStages []Stage                `json:"completedStages"`
	Stages          map[Stage]StageOutcome `json:"stages"`
	Artifacts       map[string]Artifact    `json:"artifacts"`
	Aborted         *AbortInfo             `json:"aborted,omitempty"`
	StartedAt       time.Time              `json:"startedAt"`
	FinishedAt      time.Time              `json:"finishedAt"`
}

// EditorScript is the structured post-production brief. Timestamps are
// estimates derived from the transcript, not measured from the audio.
type EditorScript struct {
	Segments []ScriptSegment `json:"segments"`
}

// ScriptSegment carries the six editing categories for one section of the
// video. The slices may be empty but are never nil in a valid script.
type ScriptSegment struct {
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Summary    string    `json:"summary"`
	BRoll      []string  `json:"broll"`
	Overlays   []string  `json:"overlays"`
	Transition string    `json:"transition"`
	MusicMood  string    `json:"musicMood"`
	Cuts       []CutSpan `json:"cuts"`
}

// CutSpan marks a filler word or pause the editor should remove.
type CutSpan struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}
