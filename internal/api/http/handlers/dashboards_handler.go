package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// DashboardsHandler serves the per-role landing pages.
type DashboardsHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardsHandler constructs handler.
func NewDashboardsHandler(dashboardService *service.DashboardService) *DashboardsHandler {
	return &DashboardsHandler{dashboards: dashboardService}
}

// Complainer GET /complainer/dashboard.
func (h *DashboardsHandler) Complainer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	dashboard, err := h.dashboards.ForComplainer(c.Context(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"complaints": complaintSummaries(dashboard.Complaints),
		"counts":     dashboard.Counts,
	}})
}

// Coordinator GET /coordinator/dashboard.
func (h *DashboardsHandler) Coordinator(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	dashboard, err := h.dashboards.ForCoordinator(c.Context(), principal.Assignment, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	workers := make([]fiber.Map, 0, len(dashboard.Workers))
	for i := range dashboard.Workers {
		workers = append(workers, fiber.Map{
			"id":   dashboard.Workers[i].ID,
			"name": dashboard.Workers[i].Name,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"complaints": complaintSummaries(dashboard.Complaints),
		"counts":     dashboard.Counts,
		"workers":    workers,
	}})
}

// Worker GET /worker/dashboard.
func (h *DashboardsHandler) Worker(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Assignment == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	dashboard, err := h.dashboards.ForWorker(c.Context(), principal.Assignment, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"complaints": complaintSummaries(dashboard.Complaints),
		"counts":     dashboard.Counts,
	}})
}

// Oversight GET /vp/dashboard and GET /director/dashboard.
func (h *DashboardsHandler) Oversight(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	dashboard, err := h.dashboards.ForOversight(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"recent": complaintSummaries(dashboard.Recent),
		"counts": dashboard.Counts,
	}})
}

// Admin GET /admin/dashboard.
func (h *DashboardsHandler) Admin(c *fiber.Ctx) error {
	dashboard, err := h.dashboards.ForAdmin(c.Context())
	if err != nil {
		return err
	}
	campuses := make([]fiber.Map, 0, len(dashboard.Campuses))
	for i := range dashboard.Campuses {
		campuses = append(campuses, fiber.Map{
			"id":        dashboard.Campuses[i].ID,
			"name":      dashboard.Campuses[i].Name,
			"is_active": dashboard.Campuses[i].IsActive,
		})
	}
	types := make([]fiber.Map, 0, len(dashboard.ComplaintTypes))
	for i := range dashboard.ComplaintTypes {
		types = append(types, fiber.Map{
			"id":        dashboard.ComplaintTypes[i].ID,
			"name":      dashboard.ComplaintTypes[i].Name,
			"is_active": dashboard.ComplaintTypes[i].IsActive,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"counts":          dashboard.Counts,
		"campuses":        campuses,
		"complaint_types": types,
	}})
}
