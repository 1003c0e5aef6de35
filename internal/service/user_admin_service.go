package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// UserInput is the admin create/edit payload.
type UserInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Role                 string
	CampusID             string
	ComplaintTypeID      string
}

// UserWithRoles pairs an account with its role rows for admin listings.
type UserWithRoles struct {
	User        domain.User
	Assignments []domain.RoleAssignment
}

// UserAdminService implements the admin user management flows.
type UserAdminService struct {
	users          repository.UserRepository
	roles          repository.RoleAssignmentRepository
	campuses       repository.CampusRepository
	complaintTypes repository.ComplaintTypeRepository
	bcryptCost     int
}

// UserAdminDependencies bundles repositories.
type UserAdminDependencies struct {
	UserRepo          repository.UserRepository
	RoleRepo          repository.RoleAssignmentRepository
	CampusRepo        repository.CampusRepository
	ComplaintTypeRepo repository.ComplaintTypeRepository
}

// NewUserAdminService creates the service.
func NewUserAdminService(deps UserAdminDependencies, bcryptCost int) *UserAdminService {
	return &UserAdminService{
		users:          deps.UserRepo,
		roles:          deps.RoleRepo,
		campuses:       deps.CampusRepo,
		complaintTypes: deps.ComplaintTypeRepo,
		bcryptCost:     bcryptCost,
	}
}

// CreateUser creates an account with the given role. Campus and complaint
// type are required for coordinator/worker and cleared for every other role.
// Worker creation is rejected when no active coordinator covers the pair.
func (s *UserAdminService) CreateUser(ctx context.Context, input UserInput) (*domain.User, *domain.RoleAssignment, error) {
	fields := auth.ValidatePassword(input.Password, input.PasswordConfirmation)
	if fields == nil {
		fields = map[string][]string{}
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = append(fields["name"], "name is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = append(fields["email"], "email is not a valid address")
	} else if _, err := s.users.GetByEmail(ctx, email); err == nil {
		fields["email"] = append(fields["email"], "email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}

	assignment, err := s.buildAssignment(ctx, input, fields)
	if err != nil {
		return nil, nil, err
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.NewFieldValidation(fields)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.CreateWithAssignment(ctx, user, assignment); err != nil {
		// A concurrent create can slip past the uniqueness check above.
		if apperrors.IsUniqueViolation(err) {
			return nil, nil, apperrors.NewFieldValidation(map[string][]string{"email": {"email already registered"}})
		}
		return nil, nil, apperrors.MapError(err)
	}
	return user, assignment, nil
}

// UpdateUser edits an account and replaces its role row. The password is
// left untouched when blank.
func (s *UserAdminService) UpdateUser(ctx context.Context, userID string, input UserInput) (*domain.User, *domain.RoleAssignment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, nil, apperrors.MapError(err)
	}

	fields := map[string][]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = append(fields["name"], "name is required")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = append(fields["email"], "email is not a valid address")
	} else if email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			fields["email"] = append(fields["email"], "email already registered")
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.MapError(err)
		}
	}

	if input.Password != "" {
		if pwFields := auth.ValidatePassword(input.Password, input.PasswordConfirmation); pwFields != nil {
			for field, messages := range pwFields {
				fields[field] = append(fields[field], messages...)
			}
		}
	}

	assignment, err := s.buildAssignment(ctx, input, fields)
	if err != nil {
		return nil, nil, err
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.NewFieldValidation(fields)
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Email = email
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, nil, apperrors.NewFieldValidation(map[string][]string{"email": {"email already registered"}})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := s.roles.ReplaceForUser(ctx, user.ID, assignment); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, assignment, nil
}

// DeleteUser disables the account; disabled accounts fail login and bearer
// resolution. Complaint rows keep their foreign keys.
func (s *UserAdminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	user.Status = domain.UserStatusDisabled
	return apperrors.MapError(s.users.Update(ctx, user))
}

// ResetPassword sets a new password on behalf of the user.
func (s *UserAdminService) ResetPassword(ctx context.Context, userID, password, confirmation string) error {
	if fields := auth.ValidatePassword(password, confirmation); fields != nil {
		return apperrors.NewFieldValidation(fields)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, user))
}

// ListUsers returns accounts with their role rows for the admin dashboard.
func (s *UserAdminService) ListUsers(ctx context.Context, limit, offset int) ([]UserWithRoles, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result := make([]UserWithRoles, 0, len(users))
	for i := range users {
		assignments, err := s.roles.ListByUser(ctx, users[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, UserWithRoles{User: users[i], Assignments: assignments})
	}
	return result, nil
}

// buildAssignment validates the role and its scope fields, appending
// per-field messages. The returned assignment is valid when fields is empty.
func (s *UserAdminService) buildAssignment(ctx context.Context, input UserInput, fields map[string][]string) (*domain.RoleAssignment, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		fields["role"] = append(fields["role"], "role is invalid")
		return nil, nil
	}

	assignment := &domain.RoleAssignment{Role: role}
	if !role.RequiresScope() {
		// Campus and complaint type are dropped for unscoped roles even if
		// previously set.
		return assignment, nil
	}

	if input.CampusID == "" {
		fields["campus_id"] = append(fields["campus_id"], "campus is required for this role")
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
		fields["complaint_type_id"] = append(fields["complaint_type_id"], "complaint type is required for this role")
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

	if role == domain.RoleWorker && input.CampusID != "" && input.ComplaintTypeID != "" {
		count, err := s.roles.CountActiveCoordinators(ctx, input.CampusID, input.ComplaintTypeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if count == 0 {
			fields["role"] = append(fields["role"], "no coordinator exists for the selected campus and complaint type")
		}
	}

	if len(fields) == 0 {
		assignment.CampusID = &input.CampusID
		assignment.ComplaintTypeID = &input.ComplaintTypeID
	}
	return assignment, nil
}
