package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// ComplaintTypeRepository manages the complaint type reference table.
type ComplaintTypeRepository interface {
	Create(ctx context.Context, ct *domain.ComplaintType) error
	Update(ctx context.Context, ct *domain.ComplaintType) error
	GetByID(ctx context.Context, id string) (*domain.ComplaintType, error)
	List(ctx context.Context, onlyActive bool) ([]domain.ComplaintType, error)
}

type complaintTypeRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintTypeRepository instantiates repository.
func NewComplaintTypeRepository(pool *pgxpool.Pool) ComplaintTypeRepository {
	return &complaintTypeRepository{pool: pool}
}

func (r *complaintTypeRepository) Create(ctx context.Context, ct *domain.ComplaintType) error {
	const query = `
        INSERT INTO complaint_types (name, is_active)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, ct.Name, ct.IsActive).
		Scan(&ct.ID, &ct.CreatedAt, &ct.UpdatedAt)
}

func (r *complaintTypeRepository) Update(ctx context.Context, ct *domain.ComplaintType) error {
	const query = `
        UPDATE complaint_types SET name=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, ct.Name, ct.IsActive, ct.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintTypeRepository) GetByID(ctx context.Context, id string) (*domain.ComplaintType, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM complaint_types WHERE id=$1`
	var ct domain.ComplaintType
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ct.ID,
		&ct.Name,
		&ct.IsActive,
		&ct.CreatedAt,
		&ct.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *complaintTypeRepository) List(ctx context.Context, onlyActive bool) ([]domain.ComplaintType, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM complaint_types`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintType
	for rows.Next() {
		var ct domain.ComplaintType
		if err := rows.Scan(
			&ct.ID,
			&ct.Name,
			&ct.IsActive,
			&ct.CreatedAt,
			&ct.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ct)
	}
	return result, rows.Err()
}
