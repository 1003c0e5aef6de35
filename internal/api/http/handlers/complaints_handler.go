package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ComplaintsHandler exposes the complainer-facing complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /complaints. The body is multipart form data so an image can
// ride along with the complaint fields.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	input := service.ComplaintInput{
		CampusID:        c.FormValue("campus_id"),
		ComplaintTypeID: c.FormValue("complaint_type_id"),
		Location:        c.FormValue("location"),
		Description:     c.FormValue("description"),
	}

	upload, file, err := openUpload(c, "image")
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
		input.Image = upload
	}

	complaint, err := h.service.Submit(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"complaint": complaintSummary(complaint),
		// The reference is handed back exactly once at submission.
		"reference": complaint.Reference,
	}})
}

// List GET /complaints, the caller's own submissions.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	complaints, err := h.service.ListForComplainant(c.Context(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummaries(complaints)})
}

// Track POST /complaints/track resolves a reference to its status.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	var req dto.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	snapshot, err := h.service.Track(c.Context(), req.Reference)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TrackResponse{
		Reference:   snapshot.Reference,
		Status:      string(snapshot.Status),
		SubmittedAt: snapshot.SubmittedAt,
		ResolvedAt:  snapshot.ResolvedAt,
		VerifiedAt:  snapshot.VerifiedAt,
	}})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, updates, err := h.service.Get(c.Context(), principal.Assignment, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, updates)})
}

// Image GET /complaints/:id/image streams the submitted image; with
// ?resolution=true the resolution image instead.
func (h *ComplaintsHandler) Image(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	reader, err := h.service.OpenImage(c.Context(), principal.Assignment, c.Params("id"), c.QueryBool("resolution"))
	if err != nil {
		return err
	}
	return c.SendStream(reader)
}

// openUpload pulls an optional file out of the multipart form. A missing
// file is not an error.
func openUpload(c *fiber.Ctx, field string) (*service.ImageUpload, multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperrors.NewValidationError("could not read uploaded file", nil)
	}
	return &service.ImageUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
	}, file, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func complaintSummary(complaint *domain.Complaint) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:              complaint.ID,
		Reference:       complaint.Reference,
		CampusID:        complaint.CampusID,
		ComplaintTypeID: complaint.ComplaintTypeID,
		Location:        complaint.Location,
		Status:          string(complaint.Status),
		WorkerID:        complaint.WorkerID,
		ResolvedAt:      complaint.ResolvedAt,
		VerifiedAt:      complaint.VerifiedAt,
		CreatedAt:       complaint.CreatedAt,
		UpdatedAt:       complaint.UpdatedAt,
	}
}

func complaintSummaries(complaints []domain.Complaint) []dto.ComplaintSummary {
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i]))
	}
	return items
}

func complaintDetail(complaint *domain.Complaint, updates []domain.ComplaintUpdate) dto.ComplaintDetail {
	notes := make([]dto.ComplaintUpdateResponse, 0, len(updates))
	for _, update := range updates {
		notes = append(notes, dto.ComplaintUpdateResponse{
			ID:        update.ID,
			WorkerID:  update.WorkerID,
			Note:      update.Note,
			CreatedAt: update.CreatedAt,
		})
	}
	return dto.ComplaintDetail{
		ComplaintSummary:   complaintSummary(complaint),
		Description:        complaint.Description,
		HasImage:           complaint.ImageKey != nil,
		CoordinatorID:      complaint.CoordinatorID,
		ResolutionNotes:    complaint.ResolutionNotes,
		HasResolutionImage: complaint.ResolutionImageKey != nil,
		Updates:            notes,
	}
}
