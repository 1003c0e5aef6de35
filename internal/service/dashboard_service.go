package service

import (
	"context"
	"errors"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// StatusCounts summarizes complaints per lifecycle state.
type StatusCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
}

// ComplainerDashboard is the landing payload for complainers.
type ComplainerDashboard struct {
	Complaints []domain.Complaint `json:"complaints"`
	Counts     StatusCounts       `json:"counts"`
}

// CoordinatorDashboard lists the coordinator's scope: its complaints, their
// counts and the workers assignable within the same (campus, type) pair.
type CoordinatorDashboard struct {
	Complaints []domain.Complaint `json:"complaints"`
	Counts     StatusCounts       `json:"counts"`
	Workers    []domain.User      `json:"workers"`
}

// WorkerDashboard lists complaints assigned to the worker.
type WorkerDashboard struct {
	Complaints []domain.Complaint `json:"complaints"`
	Counts     StatusCounts       `json:"counts"`
}

// OversightDashboard is the campus-wide view for the VP and director.
type OversightDashboard struct {
	Recent []domain.Complaint `json:"recent"`
	Counts StatusCounts       `json:"counts"`
}

// AdminDashboard aggregates the reference data admins manage plus the
// system-wide complaint counts.
type AdminDashboard struct {
	Counts         StatusCounts           `json:"counts"`
	Campuses       []domain.Campus        `json:"campuses"`
	ComplaintTypes []domain.ComplaintType `json:"complaint_types"`
}

// DashboardService assembles the per-role landing payloads.
type DashboardService struct {
	complaints     repository.ComplaintRepository
	roles          repository.RoleAssignmentRepository
	campuses       repository.CampusRepository
	complaintTypes repository.ComplaintTypeRepository
}

// NewDashboardService constructs the service.
func NewDashboardService(
	complaints repository.ComplaintRepository,
	roles repository.RoleAssignmentRepository,
	campuses repository.CampusRepository,
	complaintTypes repository.ComplaintTypeRepository,
) *DashboardService {
	return &DashboardService{
		complaints:     complaints,
		roles:          roles,
		campuses:       campuses,
		complaintTypes: complaintTypes,
	}
}

// ForComplainer returns the caller's own complaints.
func (s *DashboardService) ForComplainer(ctx context.Context, userID string, limit, offset int) (*ComplainerDashboard, error) {
	filter := repository.ComplaintFilter{ComplainantID: &userID, Limit: limit, Offset: offset}
	complaints, counts, err := s.listWithCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ComplainerDashboard{Complaints: complaints, Counts: counts}, nil
}

// ForCoordinator returns the complaints in the coordinator's scope and the
// workers eligible for assignment there.
func (s *DashboardService) ForCoordinator(ctx context.Context, assignment *domain.RoleAssignment, limit, offset int) (*CoordinatorDashboard, error) {
	if err := requireScope(assignment, domain.RoleCoordinator); err != nil {
		return nil, err
	}
	filter := repository.ComplaintFilter{
		CampusID:        assignment.CampusID,
		ComplaintTypeID: assignment.ComplaintTypeID,
		Limit:           limit,
		Offset:          offset,
	}
	complaints, counts, err := s.listWithCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	workers, err := s.roles.ListUsersByScope(ctx, domain.RoleWorker, *assignment.CampusID, *assignment.ComplaintTypeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &CoordinatorDashboard{Complaints: complaints, Counts: counts, Workers: workers}, nil
}

// ForWorker returns the complaints assigned to the worker.
func (s *DashboardService) ForWorker(ctx context.Context, assignment *domain.RoleAssignment, limit, offset int) (*WorkerDashboard, error) {
	if err := requireScope(assignment, domain.RoleWorker); err != nil {
		return nil, err
	}
	filter := repository.ComplaintFilter{WorkerID: &assignment.UserID, Limit: limit, Offset: offset}
	complaints, counts, err := s.listWithCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &WorkerDashboard{Complaints: complaints, Counts: counts}, nil
}

// ForOversight returns the campus-wide status picture for vp and director.
func (s *DashboardService) ForOversight(ctx context.Context, limit, offset int) (*OversightDashboard, error) {
	filter := repository.ComplaintFilter{Limit: limit, Offset: offset}
	complaints, counts, err := s.listWithCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OversightDashboard{Recent: complaints, Counts: counts}, nil
}

// ForAdmin returns reference data and system-wide counts.
func (s *DashboardService) ForAdmin(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.countsFor(ctx, repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	campuses, err := s.campuses.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaintTypes, err := s.complaintTypes.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AdminDashboard{Counts: counts, Campuses: campuses, ComplaintTypes: complaintTypes}, nil
}

func (s *DashboardService) listWithCounts(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, StatusCounts, error) {
	complaints, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, StatusCounts{}, apperrors.MapError(err)
	}
	counts, err := s.countsFor(ctx, filter)
	if err != nil {
		return nil, StatusCounts{}, err
	}
	return complaints, counts, nil
}

func (s *DashboardService) countsFor(ctx context.Context, filter repository.ComplaintFilter) (StatusCounts, error) {
	filter.Statuses = nil
	byStatus, err := s.complaints.CountByStatus(ctx, filter)
	if err != nil {
		return StatusCounts{}, apperrors.MapError(err)
	}
	counts := StatusCounts{
		Pending:    byStatus[domain.ComplaintStatusPending],
		InProgress: byStatus[domain.ComplaintStatusInProgress],
		Completed:  byStatus[domain.ComplaintStatusCompleted],
	}
	counts.Total = counts.Pending + counts.InProgress + counts.Completed
	return counts, nil
}

func requireScope(assignment *domain.RoleAssignment, role domain.Role) error {
	if assignment == nil || assignment.Role != role {
		return apperrors.NewForbidden(string(role) + " role required")
	}
	if assignment.CampusID == nil || assignment.ComplaintTypeID == nil {
		return apperrors.NewInternalError(errors.New("role assignment missing campus or complaint type"))
	}
	return nil
}
