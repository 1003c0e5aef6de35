package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// RoleAssignmentRepository encapsulates the role store.
type RoleAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.RoleAssignment) error
	ReplaceForUser(ctx context.Context, userID string, assignment *domain.RoleAssignment) error
	ListByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error)
	PrimaryForUser(ctx context.Context, userID string) (*domain.RoleAssignment, error)
	ListUsersByScope(ctx context.Context, role domain.Role, campusID, complaintTypeID string) ([]domain.User, error)
	CountActiveCoordinators(ctx context.Context, campusID, complaintTypeID string) (int, error)
	DeleteForUser(ctx context.Context, userID string) error
}

type roleAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewRoleAssignmentRepository instantiates repository.
func NewRoleAssignmentRepository(pool *pgxpool.Pool) RoleAssignmentRepository {
	return &roleAssignmentRepository{pool: pool}
}

func (r *roleAssignmentRepository) Create(ctx context.Context, assignment *domain.RoleAssignment) error {
	const query = `
        INSERT INTO role_assignments (user_id, role, campus_id, complaint_type_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		assignment.UserID,
		assignment.Role,
		assignment.CampusID,
		assignment.ComplaintTypeID,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

// ReplaceForUser swaps the user's role rows for the given assignment in one
// transaction, used by the admin edit flow.
func (r *roleAssignmentRepository) ReplaceForUser(ctx context.Context, userID string, assignment *domain.RoleAssignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM role_assignments WHERE user_id=$1`, userID); err != nil {
		return err
	}

	assignment.UserID = userID
	const query = `
        INSERT INTO role_assignments (user_id, role, campus_id, complaint_type_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, query,
		assignment.UserID,
		assignment.Role,
		assignment.CampusID,
		assignment.ComplaintTypeID,
	).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByUser returns role rows in insertion order; the first row is the
// user's primary role.
func (r *roleAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	const query = `
        SELECT id, user_id, role, campus_id, complaint_type_id, created_at
        FROM role_assignments WHERE user_id=$1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// PrimaryForUser resolves the earliest-created role row deterministically.
func (r *roleAssignmentRepository) PrimaryForUser(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	const query = `
        SELECT id, user_id, role, campus_id, complaint_type_id, created_at
        FROM role_assignments WHERE user_id=$1
        ORDER BY created_at, id
        LIMIT 1`

	var a domain.RoleAssignment
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Role,
		&a.CampusID,
		&a.ComplaintTypeID,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListUsersByScope returns active users holding the role for the given
// (campus, complaint type) pair, e.g. assignable workers.
func (r *roleAssignmentRepository) ListUsersByScope(ctx context.Context, role domain.Role, campusID, complaintTypeID string) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.status, u.email_verified_at, u.created_at, u.updated_at
        FROM role_assignments ra
        JOIN users u ON u.id = ra.user_id
        WHERE ra.role=$1 AND ra.campus_id=$2 AND ra.complaint_type_id=$3 AND u.status=$4
        ORDER BY u.name`

	rows, err := r.pool.Query(ctx, query, role, campusID, complaintTypeID, domain.UserStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Status,
			&user.EmailVerifiedAt,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *roleAssignmentRepository) CountActiveCoordinators(ctx context.Context, campusID, complaintTypeID string) (int, error) {
	const query = `
        SELECT COUNT(*)
        FROM role_assignments ra
        JOIN users u ON u.id = ra.user_id
        WHERE ra.role=$1 AND ra.campus_id=$2 AND ra.complaint_type_id=$3 AND u.status=$4`

	var count int
	if err := r.pool.QueryRow(ctx, query, domain.RoleCoordinator, campusID, complaintTypeID, domain.UserStatusActive).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roleAssignmentRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_assignments WHERE user_id=$1`, userID)
	return err
}

func scanAssignments(rows pgx.Rows) ([]domain.RoleAssignment, error) {
	var result []domain.RoleAssignment
	for rows.Next() {
		var a domain.RoleAssignment
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Role,
			&a.CampusID,
			&a.ComplaintTypeID,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
