package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dubflow/api/internal/model"
)

func TestCaptionParseGenerateResponse(t *testing.T) {
	s := NewCaptionService(nil)

	response := `Here you go:
---INSTAGRAM---
New video just dropped! #video
---LINKEDIN---
I published a new video today.`

	ig, li, err := s.parseGenerateResponse(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ig, "#video") {
		t.Errorf("unexpected instagram caption %q", ig)
	}
	if !strings.Contains(li, "published") {
		t.Errorf("unexpected linkedin caption %q", li)
	}
}

func TestCaptionParseMissingMarkers(t *testing.T) {
	s := NewCaptionService(nil)

	cases := []string{
		"no markers at all",
		"---INSTAGRAM---\nonly one section",
		"---LINKEDIN---\nwrong\n---INSTAGRAM---\norder",
		"---INSTAGRAM---\n---LINKEDIN---\nempty instagram",
	}
	for _, in := range cases {
		if _, _, err := s.parseGenerateResponse(in); err == nil {
			t.Errorf("expected parse error for %q", in)
		}
	}
}

func TestCaptionGenerateMockFallback(t *testing.T) {
	s := NewCaptionService(nil)

	resp, err := s.Generate(context.Background(), &model.CaptionsGenerateRequest{Transcript: "some script"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Instagram == "" || resp.LinkedIn == "" {
		t.Error("mock captions should not be empty")
	}
}
