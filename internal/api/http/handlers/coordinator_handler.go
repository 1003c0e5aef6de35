package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// CoordinatorHandler exposes assignment and verification to coordinators.
type CoordinatorHandler struct {
	service *service.ComplaintService
}

// NewCoordinatorHandler constructs handler.
func NewCoordinatorHandler(complaintService *service.ComplaintService) *CoordinatorHandler {
	return &CoordinatorHandler{service: complaintService}
}

// AssignWorker POST /coordinator/complaints/:id/assign.
func (h *CoordinatorHandler) AssignWorker(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.WorkerID == "" {
		return apperrors.NewValidationError("worker_id required", nil)
	}
	complaint, err := h.service.AssignWorker(c.Context(), principal.Assignment, c.Params("id"), req.WorkerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}

// UpdateStatus POST /coordinator/complaints/:id/status. Accepts multipart
// form data so a resolution image can accompany completion.
func (h *CoordinatorHandler) UpdateStatus(c *fiber.Ctx) error {
	return updateStatus(c, h.service)
}

// Verify POST /coordinator/complaints/:id/verify.
func (h *CoordinatorHandler) Verify(c *fiber.Ctx) error {
	return verifyComplaint(c, h.service)
}

func updateStatus(c *fiber.Ctx, svc *service.ComplaintService) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}

	req := dto.UpdateStatusRequest{
		Status:          c.FormValue("status"),
		ResolutionNotes: c.FormValue("resolution_notes"),
	}
	if req.Status == "" {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	upload, file, err := openUpload(c, "resolution_image")
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	complaint, err := svc.UpdateStatus(c.Context(), principal.Assignment, c.Params("id"),
		domain.ComplaintStatus(req.Status), req.ResolutionNotes, upload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}

func verifyComplaint(c *fiber.Ctx, svc *service.ComplaintService) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := svc.Verify(c.Context(), principal.Assignment, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummary(complaint)})
}
