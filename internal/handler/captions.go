package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dubflow/api/internal/model"
	"github.com/dubflow/api/internal/service"
	"github.com/dubflow/api/pkg/response"
)

type CaptionsHandler struct {
	service   *service.CaptionService
	validator *validator.Validate
}

func NewCaptionsHandler(svc *service.CaptionService, v *validator.Validate) *CaptionsHandler {
	return &CaptionsHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/captions/generate
func (h *CaptionsHandler) Generate(c *fiber.Ctx) error {
	var req model.CaptionsGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Generate(c.Context(), &req)
	if err != nil {
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}
