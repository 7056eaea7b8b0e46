package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dubflow/api/internal/service"
	"github.com/dubflow/api/pkg/response"
)

type VideosHandler struct {
	service *service.VideoService
}

func NewVideosHandler(svc *service.VideoService) *VideosHandler {
	return &VideosHandler{
		service: svc,
	}
}

var validVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/webm":       true,
}

// Upload handles POST /api/videos
func (h *VideosHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !validVideoTypes[contentType] {
		return response.ValidationError(c, "Invalid file type. Supported: MP4, MOV, MKV, WebM", map[string]interface{}{
			"contentType": contentType,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	result, err := h.service.SaveVideo(file.Filename, f, file.Size)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.Created(c, result)
}
