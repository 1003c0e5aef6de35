package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// AdminUsersHandler exposes user management to admins.
type AdminUsersHandler struct {
	service *service.UserAdminService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(userAdminService *service.UserAdminService) *AdminUsersHandler {
	return &AdminUsersHandler{service: userAdminService}
}

// ListUsers GET /admin/users.
func (h *AdminUsersHandler) ListUsers(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	users, err := h.service.ListUsers(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.UserWithRolesResponse, 0, len(users))
	for i := range users {
		items = append(items, userWithRolesResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateUser POST /admin/users.
func (h *AdminUsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, assignment, err := h.service.CreateUser(c.Context(), userInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"user": userResponse(user),
		"role": assignmentResponse(assignment),
	}})
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminUsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, assignment, err := h.service.UpdateUser(c.Context(), c.Params("id"), userInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": userResponse(user),
		"role": assignmentResponse(assignment),
	}})
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminUsersHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ResetPassword POST /admin/users/:id/reset-password.
func (h *AdminUsersHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.AdminResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ResetPassword(c.Context(), c.Params("id"), req.Password, req.PasswordConfirmation); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

func userInput(req dto.UserRequest) service.UserInput {
	return service.UserInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Role:                 req.Role,
		CampusID:             req.CampusID,
		ComplaintTypeID:      req.ComplaintTypeID,
	}
}

func assignmentResponse(assignment *domain.RoleAssignment) dto.RoleAssignmentResponse {
	return dto.RoleAssignmentResponse{
		Role:            string(assignment.Role),
		CampusID:        assignment.CampusID,
		ComplaintTypeID: assignment.ComplaintTypeID,
	}
}

func userWithRolesResponse(entry *service.UserWithRoles) dto.UserWithRolesResponse {
	roles := make([]dto.RoleAssignmentResponse, 0, len(entry.Assignments))
	for i := range entry.Assignments {
		roles = append(roles, assignmentResponse(&entry.Assignments[i]))
	}
	return dto.UserWithRolesResponse{
		User:  userResponse(&entry.User),
		Roles: roles,
	}
}
