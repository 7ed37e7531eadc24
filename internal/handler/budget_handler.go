package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	clock         util.Clock
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, clock util.Clock) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, clock: clock}
}

// BudgetChangeRequest is one entry of a bulk update
type BudgetChangeRequest struct {
	CategoryID  string `json:"categoryId"`
	LimitAmount int64  `json:"limitAmount"`
}

// SetBudgetsRequest represents the bulk update request body
type SetBudgetsRequest struct {
	Budgets []BudgetChangeRequest `json:"budgets"`
}

// SetBudgetRequest represents the single update request body
type SetBudgetRequest struct {
	LimitAmount int64   `json:"limitAmount"`
	ScopeUserID *string `json:"scopeUserId"`
}

// BudgetMonthResponse lists the budgets of a month
type BudgetMonthResponse struct {
	Month   string           `json:"month"`
	Budgets []*domain.Budget `json:"budgets"`
}

func (h *BudgetHandler) month(c echo.Context) string {
	if m := c.QueryParam("month"); m != "" {
		return m
	}
	return util.MonthOf(h.clock.Now(), h.clock.Location())
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	month := h.month(c)
	budgets, err := h.budgetService.List(c.Request().Context(), month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budgets")
	}
	return c.JSON(http.StatusOK, BudgetMonthResponse{Month: month, Budgets: budgets})
}

// SetBudgets handles PUT /api/v1/budgets/:month (batch update)
func (h *BudgetHandler) SetBudgets(c echo.Context) error {
	var req SetBudgetsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	changes := make([]service.BudgetChange, len(req.Budgets))
	for i, b := range req.Budgets {
		changes[i] = service.BudgetChange{CategoryID: b.CategoryID, LimitAmount: b.LimitAmount}
	}

	month := c.Param("month")
	updated, err := h.budgetService.BulkUpsert(c.Request().Context(), month, changes, domain.BudgetSourceAPI)
	if err != nil {
		return handleServiceError(c, err, "Failed to set budgets")
	}

	log.Info().Str("month", month).Int("count", len(updated)).Msg("Budgets updated (batch)")
	return c.JSON(http.StatusOK, BudgetMonthResponse{Month: month, Budgets: updated})
}

// SetBudget handles PUT /api/v1/budgets/:month/:categoryId (single update)
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	var req SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	month, categoryID := c.Param("month"), c.Param("categoryId")
	budget, err := h.budgetService.Upsert(c.Request().Context(), service.UpsertBudgetInput{
		Month:       month,
		CategoryID:  categoryID,
		LimitAmount: req.LimitAmount,
		ScopeUserID: req.ScopeUserID,
		Source:      domain.BudgetSourceAPI,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to set budget")
	}

	log.Info().Str("month", month).Str("category_id", categoryID).Int64("limit", budget.LimitAmount).Msg("Budget updated")
	return c.JSON(http.StatusOK, budget)
}

// GetStatus handles GET /api/v1/budgets/status. Passing categoryId narrows
// the report to the budgets of those categories' parents.
func (h *BudgetHandler) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	month := h.month(c)

	var (
		report *domain.BudgetStatusReport
		err    error
	)
	if categories := queryList(c, "categoryId"); len(categories) > 0 {
		report, err = h.budgetService.StatusForCategories(ctx, month, categories)
	} else {
		report, err = h.budgetService.Status(ctx, month)
	}
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget status")
	}
	return c.JSON(http.StatusOK, report)
}

// GetHistory handles GET /api/v1/budgets/history
func (h *BudgetHandler) GetHistory(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return NewValidationError(c, "Invalid limit", []ValidationError{{Field: "limit", Message: "Must be an integer"}})
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return NewValidationError(c, "Invalid offset", []ValidationError{{Field: "offset", Message: "Must be an integer"}})
	}

	page, err := h.budgetService.History(c.Request().Context(), h.month(c), limit, offset)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget history")
	}
	return c.JSON(http.StatusOK, page)
}
