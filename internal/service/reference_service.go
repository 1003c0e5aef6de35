package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// ReferenceService manages the campus and complaint-type tables. Rows are
// deactivated rather than deleted so existing complaints keep their keys.
type ReferenceService struct {
	campuses       repository.CampusRepository
	complaintTypes repository.ComplaintTypeRepository
}

// NewReferenceService constructs the service.
func NewReferenceService(campuses repository.CampusRepository, complaintTypes repository.ComplaintTypeRepository) *ReferenceService {
	return &ReferenceService{campuses: campuses, complaintTypes: complaintTypes}
}

// CreateCampus adds an active campus.
func (s *ReferenceService) CreateCampus(ctx context.Context, name string) (*domain.Campus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"name": {"name is required"},
		})
	}
	campus := &domain.Campus{Name: name, IsActive: true}
	if err := s.campuses.Create(ctx, campus); err != nil {
		return nil, apperrors.MapError(err)
	}
	return campus, nil
}

// UpdateCampus renames or toggles a campus.
func (s *ReferenceService) UpdateCampus(ctx context.Context, id, name string, isActive bool) (*domain.Campus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"name": {"name is required"},
		})
	}
	campus, err := s.campuses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("campus", map[string]any{"campus_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	campus.Name = name
	campus.IsActive = isActive
	if err := s.campuses.Update(ctx, campus); err != nil {
		return nil, apperrors.MapError(err)
	}
	return campus, nil
}

// ListCampuses returns campuses, optionally only active ones (the set
// offered on the submission form).
func (s *ReferenceService) ListCampuses(ctx context.Context, onlyActive bool) ([]domain.Campus, error) {
	result, err := s.campuses.List(ctx, onlyActive)
	return result, apperrors.MapError(err)
}

// CreateComplaintType adds an active complaint type.
func (s *ReferenceService) CreateComplaintType(ctx context.Context, name string) (*domain.ComplaintType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"name": {"name is required"},
		})
	}
	ct := &domain.ComplaintType{Name: name, IsActive: true}
	if err := s.complaintTypes.Create(ctx, ct); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ct, nil
}

// UpdateComplaintType renames or toggles a complaint type.
func (s *ReferenceService) UpdateComplaintType(ctx context.Context, id, name string, isActive bool) (*domain.ComplaintType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewFieldValidation(map[string][]string{
			"name": {"name is required"},
		})
	}
	ct, err := s.complaintTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint type", map[string]any{"complaint_type_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	ct.Name = name
	ct.IsActive = isActive
	if err := s.complaintTypes.Update(ctx, ct); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ct, nil
}

// ListComplaintTypes returns complaint types, optionally only active ones.
func (s *ReferenceService) ListComplaintTypes(ctx context.Context, onlyActive bool) ([]domain.ComplaintType, error) {
	result, err := s.complaintTypes.List(ctx, onlyActive)
	return result, apperrors.MapError(err)
}
