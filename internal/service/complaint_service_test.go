package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/tracking"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

type complaintEnv struct {
	f           *fakes
	svc         *ComplaintService
	dispatcher  events.Dispatcher
	campusID    string
	typeID      string
	complainant *domain.User
	coordinator *domain.RoleAssignment
	workerUser  *domain.User
	workerRole  *domain.RoleAssignment
}

func newComplaintEnv(t *testing.T) *complaintEnv {
	t.Helper()
	f := newFakes()
	dispatcher := events.NewInMemoryDispatcher()

	env := &complaintEnv{f: f, dispatcher: dispatcher}
	env.campusID = f.seedCampus("main")
	env.typeID = f.seedType("electrical")
	env.complainant, _ = f.seedUser("complainer", domain.RoleComplainer, "", "")
	_, env.coordinator = f.seedUser("coordinator", domain.RoleCoordinator, env.campusID, env.typeID)
	env.workerUser, env.workerRole = f.seedUser("worker", domain.RoleWorker, env.campusID, env.typeID)

	env.svc = NewComplaintService(ComplaintDependencies{
		ComplaintRepo:     f.complaints,
		UpdateRepo:        f.updates,
		RoleRepo:          f.roles,
		UserRepo:          f.users,
		CampusRepo:        f.campuses,
		ComplaintTypeRepo: f.types,
		Images:            f.images,
		TrackCache:        f.cache,
		Dispatcher:        dispatcher,
	})
	return env
}

func (env *complaintEnv) submit(t *testing.T) *domain.Complaint {
	t.Helper()
	complaint, err := env.svc.Submit(context.Background(), env.complainant.ID, ComplaintInput{
		CampusID:        env.campusID,
		ComplaintTypeID: env.typeID,
		Location:        "Block B, room 12",
		Description:     "Broken light fixture",
	})
	require.NoError(t, err)
	return complaint
}

func TestSubmitGeneratesReferenceAndStartsPending(t *testing.T) {
	env := newComplaintEnv(t)
	var captured []events.Event
	env.dispatcher.Subscribe(events.EventComplaintSubmitted, func(ctx context.Context, event events.Event) error {
		captured = append(captured, event)
		return nil
	})

	complaint := env.submit(t)

	assert.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	assert.True(t, strings.HasPrefix(complaint.Reference, "CMP-"))
	assert.True(t, tracking.IsReference(complaint.Reference))
	assert.Nil(t, complaint.WorkerID)
	require.Len(t, captured, 1)
	assert.Equal(t, complaint.Reference, captured[0].Reference)

	// References are unique across submissions.
	second := env.submit(t)
	assert.NotEqual(t, complaint.Reference, second.Reference)
}

func TestSubmitValidatesReferenceData(t *testing.T) {
	env := newComplaintEnv(t)

	_, err := env.svc.Submit(context.Background(), env.complainant.ID, ComplaintInput{
		CampusID:        "missing",
		ComplaintTypeID: env.typeID,
		Location:        "somewhere",
		Description:     "something",
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "campus_id")

	// Inactive campuses are not selectable.
	campus, _ := env.f.campuses.GetByID(context.Background(), env.campusID)
	campus.IsActive = false
	_, err = env.svc.Submit(context.Background(), env.complainant.ID, ComplaintInput{
		CampusID:        env.campusID,
		ComplaintTypeID: env.typeID,
		Location:        "somewhere",
		Description:     "something",
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "campus_id")
}

func TestSubmitStoresImage(t *testing.T) {
	env := newComplaintEnv(t)

	complaint, err := env.svc.Submit(context.Background(), env.complainant.ID, ComplaintInput{
		CampusID:        env.campusID,
		ComplaintTypeID: env.typeID,
		Location:        "Block B",
		Description:     "Leak",
		Image: &ImageUpload{
			Reader:      strings.NewReader("fake-image-bytes"),
			Size:        16,
			ContentType: "image/jpeg",
			Filename:    "leak.jpg",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, complaint.ImageKey)
	assert.Contains(t, *complaint.ImageKey, complaint.Reference)
	assert.Len(t, env.f.images.objects, 1)
}

func TestTrackResolvesReferenceAndCachesIt(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	snapshot, err := env.svc.Track(context.Background(), complaint.Reference)
	require.NoError(t, err)
	assert.Equal(t, complaint.Reference, snapshot.Reference)
	assert.Equal(t, domain.ComplaintStatusPending, snapshot.Status)
	assert.Equal(t, 1, env.f.cache.sets)

	// Second lookup is served from the cache.
	_, err = env.svc.Track(context.Background(), complaint.Reference)
	require.NoError(t, err)
	assert.Equal(t, 1, env.f.cache.hits)

	_, err = env.svc.Track(context.Background(), "CMP-00000000000000000000000000")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrCode(t, err))
}

func TestAssignWorkerMovesComplaintInProgress(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	assigned, err := env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.WorkerID)
	assert.Equal(t, env.workerUser.ID, *assigned.WorkerID)
	require.NotNil(t, assigned.CoordinatorID)
	assert.Equal(t, env.coordinator.UserID, *assigned.CoordinatorID)
	assert.Equal(t, 1, env.f.cache.invalidations)

	// Re-assignment of a non-pending complaint is rejected.
	_, err = env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))
}

func TestAssignWorkerEnforcesScope(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	otherCampus := env.f.seedCampus("north")
	_, outsideCoordinator := env.f.seedUser("other-coordinator", domain.RoleCoordinator, otherCampus, env.typeID)
	_, err := env.svc.AssignWorker(context.Background(), outsideCoordinator, complaint.ID, env.workerUser.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))

	outsideWorker, _ := env.f.seedUser("other-worker", domain.RoleWorker, otherCampus, env.typeID)
	_, err = env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, outsideWorker.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))
}

func TestUpdateStatusOnlyMovesForward(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)
	_, err := env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.NoError(t, err)

	// Backward transition is rejected.
	_, err = env.svc.UpdateStatus(context.Background(), env.workerRole, complaint.ID, domain.ComplaintStatusPending, "", nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrCode(t, err))

	completed, err := env.svc.UpdateStatus(context.Background(), env.workerRole, complaint.ID, domain.ComplaintStatusCompleted, "Replaced the fixture", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusCompleted, completed.Status)
	require.NotNil(t, completed.ResolvedAt)
	require.NotNil(t, completed.ResolutionNotes)
	assert.Equal(t, "Replaced the fixture", *completed.ResolutionNotes)
}

func TestUpdateStatusRejectsUnassignedWorker(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)
	_, err := env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.NoError(t, err)

	_, otherWorker := env.f.seedUser("second-worker", domain.RoleWorker, env.campusID, env.typeID)
	_, err = env.svc.UpdateStatus(context.Background(), otherWorker, complaint.ID, domain.ComplaintStatusCompleted, "", nil)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))
}

func TestAddProgressUpdateRequiresAssignment(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	// Notes require an in-progress, assigned complaint.
	_, err := env.svc.AddProgressUpdate(context.Background(), env.workerRole, complaint.ID, "starting")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))

	_, err = env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.NoError(t, err)

	update, err := env.svc.AddProgressUpdate(context.Background(), env.workerRole, complaint.ID, "ordered parts")
	require.NoError(t, err)
	assert.Equal(t, env.workerUser.ID, update.WorkerID)

	notes, err := env.f.updates.ListByComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestVerifyStampsCompletedComplaints(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)
	_, err := env.svc.AssignWorker(context.Background(), env.coordinator, complaint.ID, env.workerUser.ID)
	require.NoError(t, err)

	// Verification requires completion first.
	_, err = env.svc.Verify(context.Background(), env.coordinator, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))

	_, err = env.svc.UpdateStatus(context.Background(), env.workerRole, complaint.ID, domain.ComplaintStatusCompleted, "done", nil)
	require.NoError(t, err)

	verified, err := env.svc.Verify(context.Background(), env.coordinator, complaint.ID)
	require.NoError(t, err)
	assert.NotNil(t, verified.VerifiedAt)

	// Double verification is rejected; verification never changes status.
	assert.Equal(t, domain.ComplaintStatusCompleted, verified.Status)
	_, err = env.svc.Verify(context.Background(), env.coordinator, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", domainErrCode(t, err))
}

func TestGetEnforcesVisibility(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	ownRole, err := env.f.roles.PrimaryForUser(context.Background(), env.complainant.ID)
	require.NoError(t, err)
	_, _, err = env.svc.Get(context.Background(), ownRole, complaint.ID)
	require.NoError(t, err)

	// Another complainer cannot read it.
	other, _ := env.f.seedUser("stranger", domain.RoleComplainer, "", "")
	otherRole, err := env.f.roles.PrimaryForUser(context.Background(), other.ID)
	require.NoError(t, err)
	_, _, err = env.svc.Get(context.Background(), otherRole, complaint.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainErrCode(t, err))

	// Oversight roles see everything.
	_, vpRole := env.f.seedUser("vp", domain.RoleVP, "", "")
	_, _, err = env.svc.Get(context.Background(), vpRole, complaint.ID)
	require.NoError(t, err)
}

func TestListForComplainantReturnsOwnComplaints(t *testing.T) {
	env := newComplaintEnv(t)
	complaint := env.submit(t)

	listed, err := env.svc.ListForComplainant(context.Background(), env.complainant.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, complaint.ID, listed[0].ID)

	// Another complainer's listing is empty, not an error.
	other, _ := env.f.seedUser("stranger", domain.RoleComplainer, "", "")
	listed, err = env.svc.ListForComplainant(context.Background(), other.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
