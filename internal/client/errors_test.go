package client

import (
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, ErrUnauthorized},
		{403, ErrUnauthorized},
		{429, ErrRateLimited},
		{503, ErrUnavailable},
		{500, ErrTransient},
		{502, ErrTransient},
		{400, ErrRejected},
		{404, ErrRejected},
		{422, ErrRejected},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	transient := statusError("elevenlabs", 500, []byte("boom"))
	if !IsTransient(transient) {
		t.Error("5xx should be transient")
	}
	if !IsTransient(transportError("anthropic", fmt.Errorf("connection reset"))) {
		t.Error("network failures should be transient")
	}

	wrapped := fmt.Errorf("transcription failed: %w", transient)
	if !IsTransient(wrapped) {
		t.Error("wrapping must preserve transience")
	}

	if IsTransient(statusError("anthropic", 400, nil)) {
		t.Error("4xx rejection is not transient")
	}
	if IsTransient(&CredentialError{Service: "storage", Reason: "missing key"}) {
		t.Error("credential errors are not transient")
	}
	if IsTransient(fmt.Errorf("plain error")) {
		t.Error("plain errors are not transient")
	}
}

func TestErrorKindOf(t *testing.T) {
	if got := ErrorKindOf(statusError("elevenlabs", 429, nil)); got != ErrRateLimited {
		t.Errorf("expected %s, got %s", ErrRateLimited, got)
	}
	if got := ErrorKindOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("expected empty kind for plain error, got %s", got)
	}
}
