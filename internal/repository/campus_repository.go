package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/complaint-service/internal/domain"
)

// CampusRepository manages the campus reference table.
type CampusRepository interface {
	Create(ctx context.Context, campus *domain.Campus) error
	Update(ctx context.Context, campus *domain.Campus) error
	GetByID(ctx context.Context, id string) (*domain.Campus, error)
	List(ctx context.Context, onlyActive bool) ([]domain.Campus, error)
}

type campusRepository struct {
	pool *pgxpool.Pool
}

// NewCampusRepository instantiates repository.
func NewCampusRepository(pool *pgxpool.Pool) CampusRepository {
	return &campusRepository{pool: pool}
}

func (r *campusRepository) Create(ctx context.Context, campus *domain.Campus) error {
	const query = `
        INSERT INTO campuses (name, is_active)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, campus.Name, campus.IsActive).
		Scan(&campus.ID, &campus.CreatedAt, &campus.UpdatedAt)
}

func (r *campusRepository) Update(ctx context.Context, campus *domain.Campus) error {
	const query = `
        UPDATE campuses SET name=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, campus.Name, campus.IsActive, campus.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *campusRepository) GetByID(ctx context.Context, id string) (*domain.Campus, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM campuses WHERE id=$1`
	var campus domain.Campus
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&campus.ID,
		&campus.Name,
		&campus.IsActive,
		&campus.CreatedAt,
		&campus.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &campus, nil
}

func (r *campusRepository) List(ctx context.Context, onlyActive bool) ([]domain.Campus, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM campuses`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Campus
	for rows.Next() {
		var campus domain.Campus
		if err := rows.Scan(
			&campus.ID,
			&campus.Name,
			&campus.IsActive,
			&campus.CreatedAt,
			&campus.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, campus)
	}
	return result, rows.Err()
}
