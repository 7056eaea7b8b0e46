package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dubflow/api/internal/model"
	"github.com/dubflow/api/internal/service"
	"github.com/dubflow/api/pkg/response"
)

type PipelineHandler struct {
	service   *service.PipelineService
	validator *validator.Validate
}

func NewPipelineHandler(svc *service.PipelineService, v *validator.Validate) *PipelineHandler {
	return &PipelineHandler{service: svc, validator: v}
}

// Start handles POST /api/pipeline/start
func (h *PipelineHandler) Start(c *fiber.Ctx) error {
	var req model.PipelineStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartPipeline(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.Accepted(c, result)
}

// Status handles GET /api/pipeline/status/:jobId
func (h *PipelineHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		return jobError(c, err)
	}
	return response.OK(c, result)
}

// Report handles GET /api/pipeline/report/:jobId
func (h *PipelineHandler) Report(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetReport(c.Context(), jobID)
	switch {
	case err == nil:
		return response.OK(c, result)
	case errors.Is(err, service.ErrJobNotFinished):
		return response.ValidationError(c, "Job not finished yet", nil)
	case errors.Is(err, service.ErrNoReport):
		return response.NotFound(c, "No report recorded for this job")
	default:
		return jobError(c, err)
	}
}

// Cancel handles POST /api/pipeline/cancel/:jobId
func (h *PipelineHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.CancelPipeline(c.Context(), jobID)
	if errors.Is(err, service.ErrJobFinished) {
		return response.ValidationError(c, "Job already completed", nil)
	}
	if err != nil {
		return jobError(c, err)
	}
	return response.OK(c, result)
}

// jobError maps the common lookup failures onto response codes.
func jobError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrJobNotFound) {
		return response.NotFound(c, "Job not found")
	}
	return response.ServiceError(c, err.Error())
}

func formatValidationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = e.Tag()
	}
	return fields
}
