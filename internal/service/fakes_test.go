package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
)

// fakes bundles in-memory repository implementations for service tests.
type fakes struct {
	seq        int
	base       time.Time
	users      *fakeUsers
	roles      *fakeRoles
	campuses   *fakeCampuses
	types      *fakeComplaintTypes
	complaints *fakeComplaints
	updates    *fakeUpdates
	resets     *fakeResets
	verify     *fakeVerification
	cache      *fakeTrackCache
	images     *fakeImages
}

func newFakes() *fakes {
	f := &fakes{base: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)}
	f.users = &fakeUsers{f: f, byID: map[string]*domain.User{}}
	f.roles = &fakeRoles{f: f}
	f.campuses = &fakeCampuses{f: f, byID: map[string]*domain.Campus{}}
	f.types = &fakeComplaintTypes{f: f, byID: map[string]*domain.ComplaintType{}}
	f.complaints = &fakeComplaints{f: f, byID: map[string]*domain.Complaint{}}
	f.updates = &fakeUpdates{f: f}
	f.resets = &fakeResets{f: f, byToken: map[string]*repository.PasswordResetToken{}}
	f.verify = &fakeVerification{f: f, byToken: map[string]string{}}
	f.cache = &fakeTrackCache{byRef: map[string]*repository.TrackSnapshot{}}
	f.images = &fakeImages{enabled: true, objects: map[string][]byte{}}
	return f
}

func (f *fakes) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// nextTime hands out strictly increasing timestamps so primary-role ordering
// is deterministic.
func (f *fakes) nextTime() time.Time {
	f.seq++
	return f.base.Add(time.Duration(f.seq) * time.Second)
}

// seedCampus inserts an active campus and returns its id.
func (f *fakes) seedCampus(name string) string {
	campus := &domain.Campus{Name: name, IsActive: true}
	_ = f.campuses.Create(context.Background(), campus)
	return campus.ID
}

// seedType inserts an active complaint type and returns its id.
func (f *fakes) seedType(name string) string {
	ct := &domain.ComplaintType{Name: name, IsActive: true}
	_ = f.types.Create(context.Background(), ct)
	return ct.ID
}

// seedUser inserts an active account with one role row.
func (f *fakes) seedUser(name string, role domain.Role, campusID, typeID string) (*domain.User, *domain.RoleAssignment) {
	user := &domain.User{
		Name:         name,
		Email:        name + "@campus.edu",
		PasswordHash: "x",
		Status:       domain.UserStatusActive,
	}
	assignment := &domain.RoleAssignment{Role: role}
	if role.RequiresScope() {
		assignment.CampusID = &campusID
		assignment.ComplaintTypeID = &typeID
	}
	_ = f.users.CreateWithAssignment(context.Background(), user, assignment)
	return user, assignment
}

type fakeUsers struct {
	f    *fakes
	byID map[string]*domain.User
	// createErr, when set, is returned from CreateWithAssignment to simulate
	// storage-level failures such as unique-constraint violations.
	createErr error
}

func (r *fakeUsers) CreateWithAssignment(ctx context.Context, user *domain.User, assignment *domain.RoleAssignment) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = r.f.nextID("user")
	user.CreatedAt = r.f.nextTime()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = user
	assignment.UserID = user.ID
	return r.f.roles.Create(ctx, assignment)
}

func (r *fakeUsers) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[user.ID] = user
	return nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUsers) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		result = append(result, *user)
	}
	return result, nil
}

func (r *fakeUsers) MarkEmailVerified(ctx context.Context, id string) error {
	user, ok := r.byID[id]
	if !ok || user.EmailVerifiedAt != nil {
		return pgx.ErrNoRows
	}
	now := r.f.nextTime()
	user.EmailVerifiedAt = &now
	return nil
}

type fakeRoles struct {
	f           *fakes
	assignments []*domain.RoleAssignment
}

func (r *fakeRoles) Create(ctx context.Context, assignment *domain.RoleAssignment) error {
	assignment.ID = r.f.nextID("role")
	assignment.CreatedAt = r.f.nextTime()
	r.assignments = append(r.assignments, assignment)
	return nil
}

func (r *fakeRoles) ReplaceForUser(ctx context.Context, userID string, assignment *domain.RoleAssignment) error {
	if err := r.DeleteForUser(ctx, userID); err != nil {
		return err
	}
	assignment.UserID = userID
	return r.Create(ctx, assignment)
}

func (r *fakeRoles) ListByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	var result []domain.RoleAssignment
	for _, a := range r.assignments {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *fakeRoles) PrimaryForUser(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	var primary *domain.RoleAssignment
	for _, a := range r.assignments {
		if a.UserID != userID {
			continue
		}
		if primary == nil || a.CreatedAt.Before(primary.CreatedAt) {
			primary = a
		}
	}
	if primary == nil {
		return nil, pgx.ErrNoRows
	}
	return primary, nil
}

func (r *fakeRoles) ListUsersByScope(ctx context.Context, role domain.Role, campusID, complaintTypeID string) ([]domain.User, error) {
	var result []domain.User
	for _, a := range r.assignments {
		if a.Role != role || !a.ScopeMatches(campusID, complaintTypeID) {
			continue
		}
		user, ok := r.f.users.byID[a.UserID]
		if ok && user.Status == domain.UserStatusActive {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeRoles) CountActiveCoordinators(ctx context.Context, campusID, complaintTypeID string) (int, error) {
	users, err := r.ListUsersByScope(ctx, domain.RoleCoordinator, campusID, complaintTypeID)
	return len(users), err
}

func (r *fakeRoles) DeleteForUser(ctx context.Context, userID string) error {
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

type fakeCampuses struct {
	f    *fakes
	byID map[string]*domain.Campus
}

func (r *fakeCampuses) Create(ctx context.Context, campus *domain.Campus) error {
	campus.ID = r.f.nextID("campus")
	campus.CreatedAt = r.f.nextTime()
	campus.UpdatedAt = campus.CreatedAt
	r.byID[campus.ID] = campus
	return nil
}

func (r *fakeCampuses) Update(ctx context.Context, campus *domain.Campus) error {
	if _, ok := r.byID[campus.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[campus.ID] = campus
	return nil
}

func (r *fakeCampuses) GetByID(ctx context.Context, id string) (*domain.Campus, error) {
	campus, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return campus, nil
}

func (r *fakeCampuses) List(ctx context.Context, onlyActive bool) ([]domain.Campus, error) {
	var result []domain.Campus
	for _, campus := range r.byID {
		if onlyActive && !campus.IsActive {
			continue
		}
		result = append(result, *campus)
	}
	return result, nil
}

type fakeComplaintTypes struct {
	f    *fakes
	byID map[string]*domain.ComplaintType
}

func (r *fakeComplaintTypes) Create(ctx context.Context, ct *domain.ComplaintType) error {
	ct.ID = r.f.nextID("type")
	ct.CreatedAt = r.f.nextTime()
	ct.UpdatedAt = ct.CreatedAt
	r.byID[ct.ID] = ct
	return nil
}

func (r *fakeComplaintTypes) Update(ctx context.Context, ct *domain.ComplaintType) error {
	if _, ok := r.byID[ct.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[ct.ID] = ct
	return nil
}

func (r *fakeComplaintTypes) GetByID(ctx context.Context, id string) (*domain.ComplaintType, error) {
	ct, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ct, nil
}

func (r *fakeComplaintTypes) List(ctx context.Context, onlyActive bool) ([]domain.ComplaintType, error) {
	var result []domain.ComplaintType
	for _, ct := range r.byID {
		if onlyActive && !ct.IsActive {
			continue
		}
		result = append(result, *ct)
	}
	return result, nil
}

type fakeComplaints struct {
	f    *fakes
	byID map[string]*domain.Complaint
}

func (r *fakeComplaints) Create(ctx context.Context, complaint *domain.Complaint) error {
	complaint.ID = r.f.nextID("complaint")
	complaint.CreatedAt = r.f.nextTime()
	complaint.UpdatedAt = complaint.CreatedAt
	r.byID[complaint.ID] = complaint
	return nil
}

func (r *fakeComplaints) Update(ctx context.Context, complaint *domain.Complaint) error {
	if _, ok := r.byID[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = r.f.nextTime()
	r.byID[complaint.ID] = complaint
	return nil
}

func (r *fakeComplaints) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *complaint
	return &clone, nil
}

func (r *fakeComplaints) GetByReference(ctx context.Context, reference string) (*domain.Complaint, error) {
	for _, complaint := range r.byID {
		if complaint.Reference == reference {
			clone := *complaint
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeComplaints) ListWithFilter(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, complaint := range r.byID {
		if matchesFilter(complaint, filter) {
			result = append(result, *complaint)
		}
	}
	return result, nil
}

func (r *fakeComplaints) CountByStatus(ctx context.Context, filter repository.ComplaintFilter) (map[domain.ComplaintStatus]int, error) {
	counts := map[domain.ComplaintStatus]int{}
	for _, complaint := range r.byID {
		if matchesFilter(complaint, filter) {
			counts[complaint.Status]++
		}
	}
	return counts, nil
}

func matchesFilter(complaint *domain.Complaint, filter repository.ComplaintFilter) bool {
	if filter.ComplainantID != nil && complaint.ComplainantID != *filter.ComplainantID {
		return false
	}
	if filter.CampusID != nil && complaint.CampusID != *filter.CampusID {
		return false
	}
	if filter.ComplaintTypeID != nil && complaint.ComplaintTypeID != *filter.ComplaintTypeID {
		return false
	}
	if filter.CoordinatorID != nil && (complaint.CoordinatorID == nil || *complaint.CoordinatorID != *filter.CoordinatorID) {
		return false
	}
	if filter.WorkerID != nil && (complaint.WorkerID == nil || *complaint.WorkerID != *filter.WorkerID) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if complaint.Status == status {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type fakeUpdates struct {
	f     *fakes
	items []*domain.ComplaintUpdate
}

func (r *fakeUpdates) Create(ctx context.Context, update *domain.ComplaintUpdate) error {
	update.ID = r.f.nextID("update")
	update.CreatedAt = r.f.nextTime()
	r.items = append(r.items, update)
	return nil
}

func (r *fakeUpdates) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintUpdate, error) {
	var result []domain.ComplaintUpdate
	for _, update := range r.items {
		if update.ComplaintID == complaintID {
			result = append(result, *update)
		}
	}
	return result, nil
}

type fakeResets struct {
	f       *fakes
	byToken map[string]*repository.PasswordResetToken
}

func (r *fakeResets) Create(ctx context.Context, token *repository.PasswordResetToken) error {
	token.ID = r.f.nextID("reset")
	token.CreatedAt = r.f.nextTime()
	r.byToken[token.Token] = token
	return nil
}

func (r *fakeResets) GetByToken(ctx context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.byToken[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (r *fakeResets) MarkUsed(ctx context.Context, id string) error {
	for _, token := range r.byToken {
		if token.ID == id {
			now := r.f.nextTime()
			token.UsedAt = &now
			return nil
		}
	}
	return nil
}

type fakeVerification struct {
	f       *fakes
	byToken map[string]string
}

func (s *fakeVerification) Issue(ctx context.Context, userID string) (string, error) {
	token := s.f.nextID("vtok")
	s.byToken[token] = userID
	return token, nil
}

func (s *fakeVerification) Consume(ctx context.Context, token string) (string, error) {
	userID, ok := s.byToken[token]
	if !ok {
		return "", repository.ErrVerificationTokenUnknown
	}
	delete(s.byToken, token)
	return userID, nil
}

type fakeTrackCache struct {
	byRef         map[string]*repository.TrackSnapshot
	sets          int
	hits          int
	invalidations int
}

func (c *fakeTrackCache) Get(ctx context.Context, reference string) (*repository.TrackSnapshot, bool) {
	snapshot, ok := c.byRef[reference]
	if ok {
		c.hits++
	}
	return snapshot, ok
}

func (c *fakeTrackCache) Set(ctx context.Context, snapshot *repository.TrackSnapshot) {
	c.sets++
	c.byRef[snapshot.Reference] = snapshot
}

func (c *fakeTrackCache) Invalidate(ctx context.Context, reference string) {
	c.invalidations++
	delete(c.byRef, reference)
}

type fakeImages struct {
	enabled bool
	objects map[string][]byte
}

func (s *fakeImages) Enabled() bool { return s.enabled }

func (s *fakeImages) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeImages) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
