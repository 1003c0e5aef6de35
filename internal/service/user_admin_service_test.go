package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-kit/complaint-service/internal/domain"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

func newUserAdminEnv() (*fakes, *UserAdminService) {
	f := newFakes()
	svc := NewUserAdminService(UserAdminDependencies{
		UserRepo:          f.users,
		RoleRepo:          f.roles,
		CampusRepo:        f.campuses,
		ComplaintTypeRepo: f.types,
	}, bcrypt.MinCost)
	return f, svc
}

func TestCreateUserScopedRolesRequireCampusAndType(t *testing.T) {
	f, svc := newUserAdminEnv()
	campusID := f.seedCampus("main")
	typeID := f.seedType("plumbing")

	_, _, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Coordinator",
		Email:                "coord@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "coordinator",
	})
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Contains(t, details, "campus_id")
	assert.Contains(t, details, "complaint_type_id")

	user, assignment, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Coordinator",
		Email:                "coord@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "coordinator",
		CampusID:             campusID,
		ComplaintTypeID:      typeID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoordinator, assignment.Role)
	require.NotNil(t, assignment.CampusID)
	assert.Equal(t, campusID, *assignment.CampusID)
	assert.Equal(t, domain.UserStatusActive, user.Status)
}

func TestCreateUserUnscopedRolesDropScope(t *testing.T) {
	f, svc := newUserAdminEnv()
	campusID := f.seedCampus("main")
	typeID := f.seedType("plumbing")

	// Scope fields submitted for an unscoped role are discarded, not stored.
	_, assignment, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Vice President",
		Email:                "vp@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "vp",
		CampusID:             campusID,
		ComplaintTypeID:      typeID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVP, assignment.Role)
	assert.Nil(t, assignment.CampusID)
	assert.Nil(t, assignment.ComplaintTypeID)
}

func TestCreateWorkerRequiresCoordinatorForPair(t *testing.T) {
	f, svc := newUserAdminEnv()
	campusID := f.seedCampus("main")
	typeID := f.seedType("plumbing")

	_, _, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Worker",
		Email:                "worker@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "worker",
		CampusID:             campusID,
		ComplaintTypeID:      typeID,
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "role")
	assert.Empty(t, f.users.byID)

	// With a coordinator covering the pair, worker creation succeeds.
	f.seedUser("coordinator", domain.RoleCoordinator, campusID, typeID)
	_, assignment, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Worker",
		Email:                "worker@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "worker",
		CampusID:             campusID,
		ComplaintTypeID:      typeID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, assignment.Role)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	_, svc := newUserAdminEnv()

	_, _, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Someone",
		Email:                "someone@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "superuser",
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "role")
}

func TestUpdateUserReplacesRoleRow(t *testing.T) {
	f, svc := newUserAdminEnv()
	campusID := f.seedCampus("main")
	typeID := f.seedType("plumbing")
	user, _ := f.seedUser("promoted", domain.RoleComplainer, "", "")

	_, assignment, err := svc.UpdateUser(context.Background(), user.ID, UserInput{
		Name:            "Promoted",
		Email:           user.Email,
		Role:            "coordinator",
		CampusID:        campusID,
		ComplaintTypeID: typeID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoordinator, assignment.Role)

	roles, err := f.roles.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, domain.RoleCoordinator, roles[0].Role)
}

func TestUpdateUserKeepsPasswordWhenBlank(t *testing.T) {
	f, svc := newUserAdminEnv()
	user, _ := f.seedUser("keeper", domain.RoleComplainer, "", "")
	user.PasswordHash = "original-hash"

	updated, _, err := svc.UpdateUser(context.Background(), user.ID, UserInput{
		Name:  "Keeper Renamed",
		Email: user.Email,
		Role:  "complainer",
	})
	require.NoError(t, err)
	assert.Equal(t, "original-hash", updated.PasswordHash)
	assert.Equal(t, "Keeper Renamed", updated.Name)
}

func TestDeleteUserDisablesAccount(t *testing.T) {
	f, svc := newUserAdminEnv()
	user, _ := f.seedUser("leaver", domain.RoleComplainer, "", "")

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusDisabled, stored.Status)

	err = svc.DeleteUser(context.Background(), "user-unknown")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}

func TestAdminResetPasswordAppliesPolicy(t *testing.T) {
	f, svc := newUserAdminEnv()
	user, _ := f.seedUser("resettee", domain.RoleComplainer, "", "")

	err := svc.ResetPassword(context.Background(), user.ID, "short", "short")
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "password")

	require.NoError(t, svc.ResetPassword(context.Background(), user.ID, "newpassword1", "newpassword1"))
	assert.NotEqual(t, "x", f.users.byID[user.ID].PasswordHash)
}

func TestCreateUserMapsConcurrentDuplicateEmail(t *testing.T) {
	f, svc := newUserAdminEnv()
	// A duplicate committed between the uniqueness check and the insert
	// surfaces as the storage-level constraint violation.
	f.users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	_, _, err := svc.CreateUser(context.Background(), UserInput{
		Name:                 "Racer",
		Email:                "racer@campus.edu",
		Password:             "password123",
		PasswordConfirmation: "password123",
		Role:                 "complainer",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
	assert.Contains(t, apperrors.ToDomainError(err).Details, "email")
}
