package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	ParentID    *string `json:"parentId"`
}

// GetCategories handles GET /api/v1/categories.
// ?tree=true nests active children under their parents;
// ?includeInactive=true lists deactivated categories too.
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("tree") == "true" {
		tree, err := h.categoryService.Tree(ctx)
		if err != nil {
			return handleServiceError(c, err, "Failed to get categories")
		}
		return c.JSON(http.StatusOK, tree)
	}

	categories, err := h.categoryService.List(ctx, c.QueryParam("includeInactive") != "true")
	if err != nil {
		return handleServiceError(c, err, "Failed to get categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.Create(c.Request().Context(), service.CreateCategoryInput{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to create category")
	}

	log.Info().Str("category_id", category.ID).Msg("Category created")
	return c.JSON(http.StatusCreated, category)
}

// DeactivateCategory handles POST /api/v1/categories/:id/deactivate
func (h *CategoryHandler) DeactivateCategory(c echo.Context) error {
	id := c.Param("id")
	category, err := h.categoryService.Deactivate(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to deactivate category")
	}

	log.Info().Str("category_id", id).Msg("Category deactivated")
	return c.JSON(http.StatusOK, category)
}
