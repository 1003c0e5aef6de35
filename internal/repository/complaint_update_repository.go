package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// ComplaintUpdateRepository persists worker progress notes.
type ComplaintUpdateRepository interface {
	Create(ctx context.Context, update *domain.ComplaintUpdate) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintUpdate, error)
}

type complaintUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintUpdateRepository instantiates repository.
func NewComplaintUpdateRepository(pool *pgxpool.Pool) ComplaintUpdateRepository {
	return &complaintUpdateRepository{pool: pool}
}

func (r *complaintUpdateRepository) Create(ctx context.Context, update *domain.ComplaintUpdate) error {
	const query = `
        INSERT INTO complaint_updates (complaint_id, worker_id, note)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		update.ComplaintID,
		update.WorkerID,
		update.Note,
	).Scan(&update.ID, &update.CreatedAt)
}

func (r *complaintUpdateRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintUpdate, error) {
	const query = `
        SELECT id, complaint_id, worker_id, note, created_at
        FROM complaint_updates WHERE complaint_id=$1
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintUpdate
	for rows.Next() {
		var update domain.ComplaintUpdate
		if err := rows.Scan(
			&update.ID,
			&update.ComplaintID,
			&update.WorkerID,
			&update.Note,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
