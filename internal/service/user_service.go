package service

import (
	"context"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// UserService handles household members
type UserService struct {
	tx domain.Transactor
}

// NewUserService creates a new UserService
func NewUserService(tx domain.Transactor) *UserService {
	return &UserService{tx: tx}
}

// CreateUserInput holds the input for creating a user
type CreateUserInput struct {
	ID          string
	DisplayName string
}

// Create registers a household member; the id must be unused
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		ID:          strings.TrimSpace(input.ID),
		DisplayName: strings.TrimSpace(input.DisplayName),
	}
	if err := validateIdentity(user.ID, user.DisplayName); err != nil {
		return nil, err
	}

	var created *domain.User
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		created, err = store.Users().Create(ctx, user)
		return err
	})
	return created, err
}

// List returns users sorted by display name
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		users, err = store.Users().List(ctx)
		return err
	})
	return users, err
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		user, err = store.Users().GetByID(ctx, id)
		return err
	})
	return user, err
}
