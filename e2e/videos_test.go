package e2e

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
)

func multipartVideoRequest(t *testing.T, path, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+generateToken(t))
	return req
}

func TestVideoUpload_Success(t *testing.T) {
	ta := setupApp(t)

	req := multipartVideoRequest(t, "/api/videos", "demo.mp4", "video/mp4", []byte("fake video bytes"))
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusCreated)

	result := parseJSON(t, resp)
	if result["path"] == nil || result["path"] == "" {
		t.Error("expected 'path' in response")
	}
	if result["size"] != float64(16) {
		t.Errorf("expected size 16, got %v", result["size"])
	}
}

func TestVideoUpload_InvalidType(t *testing.T) {
	ta := setupApp(t)

	req := multipartVideoRequest(t, "/api/videos", "notes.txt", "text/plain", []byte("not a video"))
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestVideoUpload_MissingFile(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestVideoUpload_NoAuth(t *testing.T) {
	ta := setupApp(t)

	req := multipartVideoRequest(t, "/api/videos", "demo.mp4", "video/mp4", []byte("x"))
	req.Header.Del("Authorization")
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}
