package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SummaryHandler serves monthly summaries and currency conversion
type SummaryHandler struct {
	summaryService    *service.SummaryService
	conversionService *service.ConversionService
	defaultCurrency   string
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryService *service.SummaryService, conversionService *service.ConversionService, defaultCurrency string) *SummaryHandler {
	return &SummaryHandler{
		summaryService:    summaryService,
		conversionService: conversionService,
		defaultCurrency:   defaultCurrency,
	}
}

// GetMonthly handles GET /api/v1/summary/monthly
func (h *SummaryHandler) GetMonthly(c echo.Context) error {
	month := c.QueryParam("month")
	if month == "" {
		month = h.summaryService.CurrentMonth()
	}

	summary, err := h.summaryService.Monthly(c.Request().Context(), month, queryStringPtr(c, "userId"))
	if err != nil {
		return handleServiceError(c, err, "Failed to build monthly summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// Convert handles GET /api/v1/convert
func (h *SummaryHandler) Convert(c echo.Context) error {
	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return NewValidationError(c, "Invalid amount format", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	to := c.QueryParam("to")
	if to == "" {
		to = h.defaultCurrency
	}

	conversion, err := h.conversionService.Convert(c.Request().Context(), amount, c.QueryParam("from"), to)
	if err != nil {
		return handleServiceError(c, err, "Failed to convert amount")
	}
	return c.JSON(http.StatusOK, conversion)
}
