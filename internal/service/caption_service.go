package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dubflow/api/internal/client"
	"github.com/dubflow/api/internal/model"
)

const (
	instagramMarker = "---INSTAGRAM---"
	linkedinMarker  = "---LINKEDIN---"
)

// CaptionService generates platform-ready social captions from a transcript
// or translated script.
type CaptionService struct {
	anthropicClient *client.AnthropicClient
}

// NewCaptionService creates a new caption service
func NewCaptionService(anthropicClient *client.AnthropicClient) *CaptionService {
	return &CaptionService{
		anthropicClient: anthropicClient,
	}
}

// Generate creates Instagram and LinkedIn captions for the given transcript
func (s *CaptionService) Generate(ctx context.Context, req *model.CaptionsGenerateRequest) (*model.CaptionsGenerateResponse, error) {
	// Use mock response if client is not configured
	if s.anthropicClient == nil || !s.anthropicClient.IsConfigured() {
		return s.generateMock(req)
	}

	response, err := s.anthropicClient.Complete(ctx, s.buildSystemPrompt(), s.buildGeneratePrompt(req))
	if err != nil {
		return nil, fmt.Errorf("caption generation failed: %w", err)
	}

	instagram, linkedin, err := s.parseGenerateResponse(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption response: %w", err)
	}

	return &model.CaptionsGenerateResponse{
		Instagram: instagram,
		LinkedIn:  linkedin,
	}, nil
}

func (s *CaptionService) buildSystemPrompt() string {
	return `You are a social media manager for a video creator.
You write captions that hook the reader in the first line and match each platform's register.
Follow the output format exactly. Do not add anything outside the two marked sections.`
}

func (s *CaptionService) buildGeneratePrompt(req *model.CaptionsGenerateRequest) string {
	return fmt.Sprintf(`Write two captions announcing the video whose script is below.

Instagram: casual, energetic, 3-5 relevant hashtags, under 150 words.
LinkedIn: professional, insight-led, no hashtags, under 120 words.

Output format:
%s
<instagram caption>
%s
<linkedin caption>

Script:
%s`, instagramMarker, linkedinMarker, req.Transcript)
}

func (s *CaptionService) parseGenerateResponse(response string) (string, string, error) {
	igIdx := strings.Index(response, instagramMarker)
	liIdx := strings.Index(response, linkedinMarker)
	if igIdx == -1 || liIdx == -1 || liIdx < igIdx {
		return "", "", fmt.Errorf("response missing platform markers")
	}

	instagram := strings.TrimSpace(response[igIdx+len(instagramMarker) : liIdx])
	linkedin := strings.TrimSpace(response[liIdx+len(linkedinMarker):])

	if instagram == "" || linkedin == "" {
		return "", "", fmt.Errorf("empty caption section")
	}

	return instagram, linkedin, nil
}

// Mock implementation for development/testing
func (s *CaptionService) generateMock(req *model.CaptionsGenerateRequest) (*model.CaptionsGenerateResponse, error) {
	return &model.CaptionsGenerateResponse{
		Instagram: "New video is live! We break down a topic you have been asking about for weeks. Watch till the end, it gets good. #newvideo #creator #learning",
		LinkedIn:  "I just published a new video unpacking a question I get asked constantly. The short version: the fundamentals matter more than the tools. Full breakdown in the video.",
	}, nil
}
