package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/repository"
	"github.com/campus-kit/complaint-service/internal/tracking"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ImageStore abstracts the object store holding complaint images.
type ImageStore interface {
	Enabled() bool
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImageUpload carries one uploaded image through the service layer.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// ComplaintInput describes the submission payload.
type ComplaintInput struct {
	CampusID        string
	ComplaintTypeID string
	Location        string
	Description     string
	Image           *ImageUpload
}

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	complaints     repository.ComplaintRepository
	updates        repository.ComplaintUpdateRepository
	roles          repository.RoleAssignmentRepository
	users          repository.UserRepository
	campuses       repository.CampusRepository
	complaintTypes repository.ComplaintTypeRepository
	images         ImageStore
	trackCache     repository.TrackingCache
	dispatcher     events.Dispatcher
}

// ComplaintDependencies bundles requirements for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo     repository.ComplaintRepository
	UpdateRepo        repository.ComplaintUpdateRepository
	RoleRepo          repository.RoleAssignmentRepository
	UserRepo          repository.UserRepository
	CampusRepo        repository.CampusRepository
	ComplaintTypeRepo repository.ComplaintTypeRepository
	Images            ImageStore
	TrackCache        repository.TrackingCache
	Dispatcher        events.Dispatcher
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints:     deps.ComplaintRepo,
		updates:        deps.UpdateRepo,
		roles:          deps.RoleRepo,
		users:          deps.UserRepo,
		campuses:       deps.CampusRepo,
		complaintTypes: deps.ComplaintTypeRepo,
		images:         deps.Images,
		trackCache:     deps.TrackCache,
		dispatcher:     deps.Dispatcher,
	}
}

// Submit files a new complaint. The generated reference is returned exactly
// once to the submitter and is the only lookup key for tracking.
func (s *ComplaintService) Submit(ctx context.Context, complainantID string, input ComplaintInput) (*domain.Complaint, error) {
	fields := map[string][]string{}
	if strings.TrimSpace(input.Location) == "" {
		fields["location"] = append(fields["location"], "location is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = append(fields["description"], "description is required")
	}

	if input.CampusID == "" {
		fields["campus_id"] = append(fields["campus_id"], "campus is required")
	} else {
		campus, err := s.campuses.GetByID(ctx, input.CampusID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			fields["campus_id"] = append(fields["campus_id"], "campus is unknown")
		} else if !campus.IsActive {
			fields["campus_id"] = append(fields["campus_id"], "campus is inactive")
		}
	}

	if input.ComplaintTypeID == "" {
		fields["complaint_type_id"] = append(fields["complaint_type_id"], "complaint type is required")
	} else {
		ct, err := s.complaintTypes.GetByID(ctx, input.ComplaintTypeID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			fields["complaint_type_id"] = append(fields["complaint_type_id"], "complaint type is unknown")
		} else if !ct.IsActive {
			fields["complaint_type_id"] = append(fields["complaint_type_id"], "complaint type is inactive")
		}
	}

	if input.Image != nil && !s.images.Enabled() {
		fields["image"] = append(fields["image"], "image uploads are not available")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewFieldValidation(fields)
	}

	reference := tracking.NewReference()

	var imageKey *string
	if input.Image != nil {
		key, err := s.storeImage(ctx, reference, input.Image)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		imageKey = &key
	}

	complaint := &domain.Complaint{
		Reference:       reference,
		ComplainantID:   complainantID,
		CampusID:        input.CampusID,
		ComplaintTypeID: input.ComplaintTypeID,
		Location:        strings.TrimSpace(input.Location),
		Description:     strings.TrimSpace(input.Description),
		ImageKey:        imageKey,
		Status:          domain.ComplaintStatusPending,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventComplaintSubmitted, complaint.Reference,
		events.Actor{UserID: complainantID, Role: domain.RoleComplainer},
		events.ComplaintSubmittedPayload{
			CampusID:        complaint.CampusID,
			ComplaintTypeID: complaint.ComplaintTypeID,
			Location:        complaint.Location,
		})
	return complaint, nil
}

// Track resolves a reference to the complaint's current status. Unknown
// references yield NOT_FOUND; a valid reference never resolves to a
// different complaint.
func (s *ComplaintService) Track(ctx context.Context, reference string) (*repository.TrackSnapshot, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"reference": {"tracking reference is required"},
		})
	}
	if snapshot, ok := s.trackCache.Get(ctx, reference); ok {
		return snapshot, nil
	}

	complaint, err := s.complaints.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"reference": reference})
		}
		return nil, apperrors.MapError(err)
	}

	snapshot := &repository.TrackSnapshot{
		Reference:   complaint.Reference,
		Status:      complaint.Status,
		SubmittedAt: complaint.CreatedAt,
		ResolvedAt:  complaint.ResolvedAt,
		VerifiedAt:  complaint.VerifiedAt,
	}
	s.trackCache.Set(ctx, snapshot)
	return snapshot, nil
}

// Get loads one complaint with its progress notes, enforcing visibility:
// complainers see their own rows, coordinators and workers their scope,
// oversight and admin roles everything.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.RoleAssignment, complaintID string) (*domain.Complaint, []domain.ComplaintUpdate, error) {
	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkVisibility(actor, complaint); err != nil {
		return nil, nil, err
	}
	updates, err := s.updates.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return complaint, updates, nil
}

// ListForComplainant returns the caller's own complaints.
func (s *ComplaintService) ListForComplainant(ctx context.Context, complainantID string, limit, offset int) ([]domain.Complaint, error) {
	result, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		ComplainantID: &complainantID,
		Limit:         limit,
		Offset:        offset,
	})
	return result, apperrors.MapError(err)
}

// AssignWorker lets a coordinator hand a pending complaint to a worker
// sharing the coordinator's (campus, complaint type) pair. Assignment moves
// the complaint to in_progress.
func (s *ComplaintService) AssignWorker(ctx context.Context, coordinator *domain.RoleAssignment, complaintID, workerID string) (*domain.Complaint, error) {
	if coordinator == nil || coordinator.Role != domain.RoleCoordinator {
		return nil, apperrors.NewForbidden("coordinator role required")
	}

	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !coordinator.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
		return nil, apperrors.NewForbidden("complaint outside coordinator scope")
	}
	if !domain.CanTransition(complaint.Status, domain.ComplaintStatusInProgress) {
		return nil, apperrors.NewConflict("complaint is not pending", map[string]any{"status": complaint.Status})
	}

	worker, err := s.users.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return nil, apperrors.MapError(err)
	}
	if worker.Status != domain.UserStatusActive {
		return nil, apperrors.NewConflict("worker is disabled", map[string]any{"worker_id": workerID})
	}
	workerAssignment, err := s.roles.PrimaryForUser(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRoleMissing(workerID)
		}
		return nil, apperrors.MapError(err)
	}
	if workerAssignment.Role != domain.RoleWorker {
		return nil, apperrors.NewValidationError("selected user is not a worker", map[string]any{"worker_id": workerID})
	}
	if !workerAssignment.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
		return nil, apperrors.NewValidationError("worker outside complaint scope", map[string]any{"worker_id": workerID})
	}

	oldStatus := complaint.Status
	complaint.Status = domain.ComplaintStatusInProgress
	complaint.CoordinatorID = &coordinator.UserID
	complaint.WorkerID = &workerID
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.trackCache.Invalidate(ctx, complaint.Reference)

	actor := events.Actor{UserID: coordinator.UserID, Role: domain.RoleCoordinator}
	s.publish(ctx, events.EventComplaintAssigned, complaint.Reference, actor,
		events.ComplaintAssignedPayload{CoordinatorID: coordinator.UserID, WorkerID: workerID})
	s.publish(ctx, events.EventComplaintStatusChanged, complaint.Reference, actor,
		events.ComplaintStatusChangedPayload{OldStatus: oldStatus, NewStatus: complaint.Status})
	return complaint, nil
}

// UpdateStatus moves a complaint one step forward. Coordinators act within
// their scope; workers only on complaints assigned to them. Completing a
// complaint stamps resolved_at and accepts resolution notes and an image.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.RoleAssignment, complaintID string, newStatus domain.ComplaintStatus, resolutionNotes string, resolutionImage *ImageUpload) (*domain.Complaint, error) {
	if _, ok := domain.ParseComplaintStatus(string(newStatus)); !ok {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"status": {"status is invalid"},
		})
	}

	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.checkMutability(actor, complaint); err != nil {
		return nil, err
	}
	if !domain.CanTransition(complaint.Status, newStatus) {
		return nil, apperrors.NewValidationError("status may only move forward", map[string]any{
			"from": complaint.Status,
			"to":   newStatus,
		})
	}
	if resolutionImage != nil && !s.images.Enabled() {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"resolution_image": {"image uploads are not available"},
		})
	}

	oldStatus := complaint.Status
	complaint.Status = newStatus
	if actor.Role == domain.RoleWorker && complaint.WorkerID == nil {
		complaint.WorkerID = &actor.UserID
	}
	if newStatus == domain.ComplaintStatusCompleted {
		now := time.Now()
		complaint.ResolvedAt = &now
		if notes := strings.TrimSpace(resolutionNotes); notes != "" {
			complaint.ResolutionNotes = &notes
		}
		if resolutionImage != nil {
			key, err := s.storeImage(ctx, complaint.Reference, resolutionImage)
			if err != nil {
				return nil, apperrors.MapError(err)
			}
			complaint.ResolutionImageKey = &key
		}
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.trackCache.Invalidate(ctx, complaint.Reference)

	s.publish(ctx, events.EventComplaintStatusChanged, complaint.Reference,
		events.Actor{UserID: actor.UserID, Role: actor.Role},
		events.ComplaintStatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus})
	return complaint, nil
}

// AddProgressUpdate appends a worker note to an in-progress complaint.
func (s *ComplaintService) AddProgressUpdate(ctx context.Context, actor *domain.RoleAssignment, complaintID, note string) (*domain.ComplaintUpdate, error) {
	if actor == nil || actor.Role != domain.RoleWorker {
		return nil, apperrors.NewForbidden("worker role required")
	}
	if strings.TrimSpace(note) == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"note": {"note is required"},
		})
	}

	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.WorkerID == nil || *complaint.WorkerID != actor.UserID {
		return nil, apperrors.NewForbidden("complaint not assigned to caller")
	}
	if complaint.Status != domain.ComplaintStatusInProgress {
		return nil, apperrors.NewConflict("complaint is not in progress", map[string]any{"status": complaint.Status})
	}

	update := &domain.ComplaintUpdate{
		ComplaintID: complaint.ID,
		WorkerID:    actor.UserID,
		Note:        strings.TrimSpace(note),
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, apperrors.MapError(err)
	}
	return update, nil
}

// Verify stamps verified_at on a completed complaint. Coordinators verify
// within their scope; the VP verifies anywhere. Verification is an
// annotation, not a lifecycle state.
func (s *ComplaintService) Verify(ctx context.Context, actor *domain.RoleAssignment, complaintID string) (*domain.Complaint, error) {
	if actor == nil || (actor.Role != domain.RoleCoordinator && actor.Role != domain.RoleVP) {
		return nil, apperrors.NewForbidden("coordinator or vp role required")
	}

	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleCoordinator && !actor.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
		return nil, apperrors.NewForbidden("complaint outside coordinator scope")
	}
	if complaint.Status != domain.ComplaintStatusCompleted {
		return nil, apperrors.NewConflict("complaint is not completed", map[string]any{"status": complaint.Status})
	}
	if complaint.VerifiedAt != nil {
		return nil, apperrors.NewConflict("complaint already verified", nil)
	}

	now := time.Now()
	complaint.VerifiedAt = &now
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.trackCache.Invalidate(ctx, complaint.Reference)

	s.publish(ctx, events.EventComplaintVerified, complaint.Reference,
		events.Actor{UserID: actor.UserID, Role: actor.Role},
		events.ComplaintVerifiedPayload{VerifiedBy: actor.UserID})
	return complaint, nil
}

// OpenImage streams a stored complaint or resolution image after the same
// visibility check as Get.
func (s *ComplaintService) OpenImage(ctx context.Context, actor *domain.RoleAssignment, complaintID string, resolution bool) (io.ReadCloser, error) {
	complaint, err := s.getByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(actor, complaint); err != nil {
		return nil, err
	}

	key := complaint.ImageKey
	if resolution {
		key = complaint.ResolutionImageKey
	}
	if key == nil {
		return nil, apperrors.NewNotFound("image", map[string]any{"complaint_id": complaintID})
	}
	reader, err := s.images.Get(ctx, *key)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reader, nil
}

func (s *ComplaintService) getByID(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

func (s *ComplaintService) checkVisibility(actor *domain.RoleAssignment, complaint *domain.Complaint) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleVP, domain.RoleDirector:
		return nil
	case domain.RoleCoordinator, domain.RoleWorker:
		if actor.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
			return nil
		}
		return apperrors.NewForbidden("complaint outside caller scope")
	case domain.RoleComplainer:
		if complaint.ComplainantID == actor.UserID {
			return nil
		}
		return apperrors.NewForbidden("complaint belongs to another user")
	default:
		return apperrors.NewForbidden("insufficient role")
	}
}

// checkMutability gates status updates: coordinators within scope, workers
// on their own assignment (or unassigned rows within their scope).
func (s *ComplaintService) checkMutability(actor *domain.RoleAssignment, complaint *domain.Complaint) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch actor.Role {
	case domain.RoleCoordinator:
		if actor.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
			return nil
		}
		return apperrors.NewForbidden("complaint outside coordinator scope")
	case domain.RoleWorker:
		if complaint.WorkerID != nil {
			if *complaint.WorkerID == actor.UserID {
				return nil
			}
			return apperrors.NewForbidden("complaint assigned to another worker")
		}
		if actor.ScopeMatches(complaint.CampusID, complaint.ComplaintTypeID) {
			return nil
		}
		return apperrors.NewForbidden("complaint outside worker scope")
	default:
		return apperrors.NewForbidden("coordinator or worker role required")
	}
}

func (s *ComplaintService) storeImage(ctx context.Context, reference string, upload *ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	key := fmt.Sprintf("complaints/%s/%s%s", reference, uuid.NewString(), ext)
	if err := s.images.Put(ctx, key, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *ComplaintService) publish(ctx context.Context, eventType events.EventType, reference string, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Reference: reference,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
