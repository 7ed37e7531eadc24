package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	q querier
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		RETURNING id, display_name, created_at`,
		user.ID, user.DisplayName,
	)
	created, err := scanUser(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user '%s'", domain.ErrAlreadyExists, user.ID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT id, display_name, created_at FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return user, nil
}

// List retrieves all users ordered by display name
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.Query(ctx, `SELECT id, display_name, created_at FROM users ORDER BY display_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
