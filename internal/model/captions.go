package model

// CaptionsGenerateRequest represents the request body for caption generation
type CaptionsGenerateRequest struct {
	Transcript string `json:"transcript" validate:"required,min=1"`
}

// CaptionsGenerateResponse represents the generated social media captions
type CaptionsGenerateResponse struct {
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}
