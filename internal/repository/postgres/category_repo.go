package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	q querier
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO categories (id, display_name, parent_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, display_name, parent_id, is_active`,
		category.ID, category.DisplayName, category.ParentID, category.IsActive,
	)
	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category '%s'", domain.ErrAlreadyExists, category.ID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a category by id, active or not
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	row := r.q.QueryRow(ctx, `SELECT id, display_name, parent_id, is_active FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return category, nil
}

// List retrieves categories ordered by display name
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, display_name, parent_id, is_active
		FROM categories
		WHERE is_active OR NOT $1
		ORDER BY display_name, id`,
		activeOnly,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// SetActive toggles whether a category is offered for new transactions
func (r *CategoryRepository) SetActive(ctx context.Context, id string, active bool) (*domain.Category, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE categories SET is_active = $2
		WHERE id = $1
		RETURNING id, display_name, parent_id, is_active`,
		id, active,
	)
	category, err := scanCategory(row)
	if err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return category, nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.DisplayName, &c.ParentID, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}
