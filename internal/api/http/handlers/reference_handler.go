package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ReferenceHandler manages campuses and complaint types.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// ListCampuses GET /admin/campuses. With ?active=true only active rows are
// returned; the same shape backs the submission form.
func (h *ReferenceHandler) ListCampuses(c *fiber.Ctx) error {
	campuses, err := h.service.ListCampuses(c.Context(), c.QueryBool("active"))
	if err != nil {
		return err
	}
	items := make([]dto.ReferenceResponse, 0, len(campuses))
	for i := range campuses {
		items = append(items, campusResponse(&campuses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCampus POST /admin/campuses.
func (h *ReferenceHandler) CreateCampus(c *fiber.Ctx) error {
	var req dto.ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	campus, err := h.service.CreateCampus(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": campusResponse(campus)})
}

// UpdateCampus PUT /admin/campuses/:id.
func (h *ReferenceHandler) UpdateCampus(c *fiber.Ctx) error {
	var req dto.ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	campus, err := h.service.UpdateCampus(c.Context(), c.Params("id"), req.Name, isActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": campusResponse(campus)})
}

// ListComplaintTypes GET /admin/complaint-types.
func (h *ReferenceHandler) ListComplaintTypes(c *fiber.Ctx) error {
	types, err := h.service.ListComplaintTypes(c.Context(), c.QueryBool("active"))
	if err != nil {
		return err
	}
	items := make([]dto.ReferenceResponse, 0, len(types))
	for i := range types {
		items = append(items, complaintTypeResponse(&types[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateComplaintType POST /admin/complaint-types.
func (h *ReferenceHandler) CreateComplaintType(c *fiber.Ctx) error {
	var req dto.ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ct, err := h.service.CreateComplaintType(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintTypeResponse(ct)})
}

// UpdateComplaintType PUT /admin/complaint-types/:id.
func (h *ReferenceHandler) UpdateComplaintType(c *fiber.Ctx) error {
	var req dto.ReferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	ct, err := h.service.UpdateComplaintType(c.Context(), c.Params("id"), req.Name, isActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintTypeResponse(ct)})
}

func campusResponse(campus *domain.Campus) dto.ReferenceResponse {
	return dto.ReferenceResponse{
		ID:        campus.ID,
		Name:      campus.Name,
		IsActive:  campus.IsActive,
		CreatedAt: campus.CreatedAt,
		UpdatedAt: campus.UpdatedAt,
	}
}

func complaintTypeResponse(ct *domain.ComplaintType) dto.ReferenceResponse {
	return dto.ReferenceResponse{
		ID:        ct.ID,
		Name:      ct.Name,
		IsActive:  ct.IsActive,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}
}
