package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dubflow/api/internal/config"
)

// ElevenLabsClient handles speech-to-text and text-to-speech via ElevenLabs
type ElevenLabsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sttModel   string
	ttsModel   string
}

// TranscriptionResponse represents the speech-to-text result
type TranscriptionResponse struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code,omitempty"`
}

// ttsRequest is the text-to-speech request body
type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// NewElevenLabsClient creates a new ElevenLabs API client
func NewElevenLabsClient(cfg *config.ElevenLabsConfig) *ElevenLabsClient {
	return &ElevenLabsClient{
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		sttModel: cfg.STTModel,
		ttsModel: cfg.TTSModel,
	}
}

// Transcribe sends a media file to the speech-to-text endpoint and returns
// the transcript text. languageCode is an ISO 639-3 code (e.g. "hin").
func (c *ElevenLabsClient) Transcribe(ctx context.Context, media io.Reader, filename, languageCode string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, media); err != nil {
		return "", fmt.Errorf("failed to buffer media file: %w", err)
	}
	_ = writer.WriteField("model_id", c.sttModel)
	_ = writer.WriteField("language_code", languageCode)
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	log.Printf("[ElevenLabs] → POST /v1/speech-to-text (file=%s lang=%s)", filename, languageCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError("elevenlabs", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("elevenlabs", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("elevenlabs", resp.StatusCode, respBody)
	}

	var result TranscriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal transcription: %w", err)
	}

	return result.Text, nil
}

// Synthesize converts text to speech with the given voice and returns MP3
// bytes. Text length limits are the caller's problem; the API rejects
// over-long payloads with a 4xx.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	reqBody := ttsRequest{
		Text:    text,
		ModelID: c.ttsModel,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text-to-speech/"+voiceID, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	log.Printf("[ElevenLabs] → POST /v1/text-to-speech/%s (%d chars)", voiceID, len(text))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("elevenlabs", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("elevenlabs", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("elevenlabs", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *ElevenLabsClient) IsConfigured() bool {
	return c.apiKey != ""
}
