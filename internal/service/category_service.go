package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// CategoryService handles category business logic
type CategoryService struct {
	tx domain.Transactor
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(tx domain.Transactor) *CategoryService {
	return &CategoryService{tx: tx}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	ID          string
	DisplayName string
	ParentID    *string
}

// CategoryNode is a parent category with its active children
type CategoryNode struct {
	*domain.Category
	Children []*domain.Category `json:"children"`
}

// List returns categories sorted by display name
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		categories, err = store.Categories().List(ctx, activeOnly)
		return err
	})
	return categories, err
}

// Tree returns active parents with their active children, both sorted by name
func (s *CategoryService) Tree(ctx context.Context) ([]*CategoryNode, error) {
	var tree []*CategoryNode
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		categories, err := store.Categories().List(ctx, true)
		if err != nil {
			return err
		}
		tree, err = categoryTree(categories)
		return err
	})
	return tree, err
}

func categoryTree(categories []*domain.Category) ([]*CategoryNode, error) {
	h, err := domain.NewCategoryHierarchy(categories)
	if err != nil {
		return nil, err
	}
	parents := h.Parents()
	tree := make([]*CategoryNode, 0, len(parents))
	for _, p := range parents {
		children := h.ChildrenOf(p.ID)
		if children == nil {
			children = []*domain.Category{}
		}
		tree = append(tree, &CategoryNode{Category: p, Children: children})
	}
	return tree, nil
}

// Create adds a category. A parent, when given, must exist and be a parent itself.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:          strings.TrimSpace(input.ID),
		DisplayName: strings.TrimSpace(input.DisplayName),
		ParentID:    input.ParentID,
		IsActive:    true,
	}
	if err := validateIdentity(category.ID, category.DisplayName); err != nil {
		return nil, err
	}
	if category.ParentID != nil && *category.ParentID == category.ID {
		return nil, domain.NewValidationError("parentId", "a category cannot be its own parent")
	}

	var created *domain.Category
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		if category.ParentID != nil {
			parent, err := store.Categories().GetByID(ctx, *category.ParentID)
			if err != nil {
				return err
			}
			if !parent.IsParent() {
				return &domain.ValidationError{
					Message: fmt.Sprintf("'%s' is a subcategory of '%s' and cannot hold children", parent.ID, *parent.ParentID),
					Issues:  []domain.FieldIssue{{Field: "parentId", Issue: "parent must be a top-level category"}},
					Cause:   domain.ErrCategoryHierarchyTooDeep,
				}
			}
		}
		var err error
		created, err = store.Categories().Create(ctx, category)
		return err
	})
	return created, err
}

// Deactivate hides a category from pickers; history keeps referencing it
func (s *CategoryService) Deactivate(ctx context.Context, id string) (*domain.Category, error) {
	var category *domain.Category
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		category, err = store.Categories().SetActive(ctx, id, false)
		return err
	})
	return category, err
}

// loadHierarchy indexes every category, inactive ones included, so that
// historical spend still rolls up correctly.
func loadHierarchy(ctx context.Context, store domain.Store) (*domain.CategoryHierarchy, error) {
	categories, err := store.Categories().List(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.NewCategoryHierarchy(categories)
}
