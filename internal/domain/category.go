package domain

import (
	"context"
	"fmt"
	"sort"
)

// Category classifies spend. Categories form a two-level tree: a category
// with a nil ParentID is a parent, every other category is a direct child
// of a parent. Categories are deactivated, never deleted.
type Category struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	ParentID    *string `json:"parentId,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// IsParent reports whether the category sits at the top of the tree
func (c *Category) IsParent() bool {
	return c.ParentID == nil
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]*Category, error)
	SetActive(ctx context.Context, id string, active bool) (*Category, error)
}

// CategoryHierarchy is an immutable id-indexed view of the category tree
type CategoryHierarchy struct {
	byID     map[string]*Category
	children map[string][]*Category
	parents  []*Category
}

// NewCategoryHierarchy indexes the given categories. It fails with
// ErrCategoryHierarchyTooDeep when a child's parent has a parent of its own.
func NewCategoryHierarchy(categories []*Category) (*CategoryHierarchy, error) {
	h := &CategoryHierarchy{
		byID:     make(map[string]*Category, len(categories)),
		children: make(map[string][]*Category),
	}
	for _, c := range categories {
		h.byID[c.ID] = c
	}

	for _, c := range categories {
		if c.ParentID == nil {
			h.parents = append(h.parents, c)
			continue
		}
		if parent, ok := h.byID[*c.ParentID]; ok && parent.ParentID != nil {
			return nil, fmt.Errorf("%w: %s -> %s -> %s", ErrCategoryHierarchyTooDeep, c.ID, parent.ID, *parent.ParentID)
		}
		h.children[*c.ParentID] = append(h.children[*c.ParentID], c)
	}

	sortByName(h.parents)
	for _, kids := range h.children {
		sortByName(kids)
	}
	return h, nil
}

func sortByName(categories []*Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].DisplayName != categories[j].DisplayName {
			return categories[i].DisplayName < categories[j].DisplayName
		}
		return categories[i].ID < categories[j].ID
	})
}

// Get returns the category with the given id
func (h *CategoryHierarchy) Get(id string) (*Category, bool) {
	c, ok := h.byID[id]
	return c, ok
}

// Name returns the display name of a category, or the raw id when the
// category record is missing.
func (h *CategoryHierarchy) Name(id string) string {
	if c, ok := h.byID[id]; ok {
		return c.DisplayName
	}
	return id
}

// FamilyOf returns the category itself followed by its direct children.
// A child category has no children, so its family is just itself.
func (h *CategoryHierarchy) FamilyOf(id string) []string {
	family := []string{id}
	for _, child := range h.children[id] {
		family = append(family, child.ID)
	}
	return family
}

// ResolveToParent returns the budget-bearing parent of a category: its
// parent id for a child, its own id for a parent. ok is false when the
// category does not exist.
func (h *CategoryHierarchy) ResolveToParent(id string) (parentID string, ok bool) {
	c, found := h.byID[id]
	if !found {
		return "", false
	}
	if c.ParentID != nil {
		return *c.ParentID, true
	}
	return c.ID, true
}

// Parents returns all top-level categories sorted by display name
func (h *CategoryHierarchy) Parents() []*Category {
	return h.parents
}

// ChildrenOf returns the direct children of a parent sorted by display name
func (h *CategoryHierarchy) ChildrenOf(id string) []*Category {
	return h.children[id]
}
