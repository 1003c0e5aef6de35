package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// WorkerHandler exposes status and progress updates to workers.
type WorkerHandler struct {
	service *service.ComplaintService
}

// NewWorkerHandler constructs handler.
func NewWorkerHandler(complaintService *service.ComplaintService) *WorkerHandler {
	return &WorkerHandler{service: complaintService}
}

// UpdateStatus POST /worker/complaints/:id/status.
func (h *WorkerHandler) UpdateStatus(c *fiber.Ctx) error {
	return updateStatus(c, h.service)
}

// AddProgressUpdate POST /worker/complaints/:id/progress.
func (h *WorkerHandler) AddProgressUpdate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Note) == "" {
		return apperrors.NewValidationError("note required", nil)
	}
	update, err := h.service.AddProgressUpdate(c.Context(), principal.Assignment, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ComplaintUpdateResponse{
		ID:        update.ID,
		WorkerID:  update.WorkerID,
		Note:      update.Note,
		CreatedAt: update.CreatedAt,
	}})
}
