package model

// Stage names the fixed pipeline stages, in canonical order.
type Stage string

const (
	StageUpload       Stage = "upload"
	StageTranscribe   Stage = "transcribe"
	StageTranslate    Stage = "translate"
	StageEditorScript Stage = "editor_script"
	StageSynthesize   Stage = "synthesize"
	StagePersist      Stage = "persist"
	StagePublish      Stage = "publish"
)

// StageOrder is the canonical sequence; a run's attempted stages are always a
// prefix of this list.
var StageOrder = []Stage{
	StageUpload,
	StageTranscribe,
	StageTranslate,
	StageEditorScript,
	StageSynthesize,
	StagePersist,
	StagePublish,
}

// StageStatus is the per-stage outcome recorded in the run report.
type StageStatus string

const (
	StageStatusSucceeded    StageStatus = "succeeded"
	StageStatusFailed       StageStatus = "failed"
	StageStatusNotAttempted StageStatus = "not_attempted"
)

// Artifact kinds (map keys in the run report)
const (
	ArtifactOriginal     = "original"
	ArtifactTranscript   = "transcript"
	ArtifactTranslation  = "translation"
	ArtifactEditorScript = "editor_script"
	ArtifactDubbedAudio  = "dubbed_audio"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Language codes accepted by the transcription adapter (ISO 639-3, the codes
// ElevenLabs speech-to-text expects).
type Language string

const (
	LanguageHindi   Language = "hin"
	LanguageEnglish Language = "eng"
)
