package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures dashboard and listing parameters.
type ComplaintFilter struct {
	ComplainantID   *string
	CampusID        *string
	ComplaintTypeID *string
	CoordinatorID   *string
	WorkerID        *string
	Statuses        []domain.ComplaintStatus
	Limit           int
	Offset          int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	GetByReference(ctx context.Context, reference string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context, filter ComplaintFilter) (map[domain.ComplaintStatus]int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, reference, complainant_id, campus_id, complaint_type_id, location, description,
               image_key, status, coordinator_id, worker_id, resolution_notes, resolution_image_key,
               resolved_at, verified_at, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (reference, complainant_id, campus_id, complaint_type_id, location, description, image_key, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.Reference,
		complaint.ComplainantID,
		complaint.CampusID,
		complaint.ComplaintTypeID,
		complaint.Location,
		complaint.Description,
		complaint.ImageKey,
		complaint.Status,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, coordinator_id=$2, worker_id=$3, resolution_notes=$4,
            resolution_image_key=$5, resolved_at=$6, verified_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Status,
		complaint.CoordinatorID,
		complaint.WorkerID,
		complaint.ResolutionNotes,
		complaint.ResolutionImageKey,
		complaint.ResolvedAt,
		complaint.VerifiedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *complaintRepository) GetByReference(ctx context.Context, reference string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE reference=$1`
	return r.fetchSingle(ctx, query, reference)
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := scanComplaint(r.pool.QueryRow(ctx, query, arg), &complaint); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses, args := buildComplaintClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := scanComplaint(rows, &complaint); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountByStatus(ctx context.Context, filter ComplaintFilter) (map[domain.ComplaintStatus]int, error) {
	clauses, args := buildComplaintClauses(filter)
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM complaints WHERE %s GROUP BY status`,
		strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func buildComplaintClauses(filter ComplaintFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ComplainantID != nil {
		args = append(args, *filter.ComplainantID)
		clauses = append(clauses, fmt.Sprintf("complainant_id=$%d", len(args)))
	}
	if filter.CampusID != nil {
		args = append(args, *filter.CampusID)
		clauses = append(clauses, fmt.Sprintf("campus_id=$%d", len(args)))
	}
	if filter.ComplaintTypeID != nil {
		args = append(args, *filter.ComplaintTypeID)
		clauses = append(clauses, fmt.Sprintf("complaint_type_id=$%d", len(args)))
	}
	if filter.CoordinatorID != nil {
		args = append(args, *filter.CoordinatorID)
		clauses = append(clauses, fmt.Sprintf("coordinator_id=$%d", len(args)))
	}
	if filter.WorkerID != nil {
		args = append(args, *filter.WorkerID)
		clauses = append(clauses, fmt.Sprintf("worker_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	return clauses, args
}

func scanComplaint(row pgx.Row, complaint *domain.Complaint) error {
	return row.Scan(
		&complaint.ID,
		&complaint.Reference,
		&complaint.ComplainantID,
		&complaint.CampusID,
		&complaint.ComplaintTypeID,
		&complaint.Location,
		&complaint.Description,
		&complaint.ImageKey,
		&complaint.Status,
		&complaint.CoordinatorID,
		&complaint.WorkerID,
		&complaint.ResolutionNotes,
		&complaint.ResolutionImageKey,
		&complaint.ResolvedAt,
		&complaint.VerifiedAt,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	)
}
