package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest is the body of a create or correct request
type TransactionRequest struct {
	EffectiveAt     *time.Time     `json:"effectiveAt"`
	UserID          string         `json:"userId"`
	TransactionType string         `json:"transactionType"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	CategoryID      *string        `json:"categoryId"`
	Description     *string        `json:"description"`
	Merchant        *string        `json:"merchant"`
	PaymentMethod   *string        `json:"paymentMethod"`
	FromAccountID   *string        `json:"fromAccountId"`
	ToAccountID     *string        `json:"toAccountId"`
	Note            *string        `json:"note"`
	Metadata        map[string]any `json:"metadata"`
}

func (r TransactionRequest) toInput() domain.TransactionInput {
	input := domain.TransactionInput{
		EffectiveAt:   r.EffectiveAt,
		UserID:        r.UserID,
		Type:          domain.TransactionType(r.TransactionType),
		Amount:        r.Amount,
		Currency:      r.Currency,
		CategoryID:    r.CategoryID,
		Description:   r.Description,
		Merchant:      r.Merchant,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Note:          r.Note,
		Metadata:      r.Metadata,
	}
	if r.PaymentMethod != nil && *r.PaymentMethod != "" {
		pm := domain.PaymentMethod(*r.PaymentMethod)
		input.PaymentMethod = &pm
	}
	return input
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.transactionService.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return handleServiceError(c, err, "Failed to create transaction")
	}
	return c.JSON(http.StatusCreated, result)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return NewValidationError(c, "Invalid limit", []ValidationError{{Field: "limit", Message: "Must be an integer"}})
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return NewValidationError(c, "Invalid offset", []ValidationError{{Field: "offset", Message: "Must be an integer"}})
	}

	input := service.ListTransactionsInput{
		Month:      c.QueryParam("month"),
		CategoryID: c.QueryParam("categoryId"),
		UserID:     c.QueryParam("userId"),
		AccountID:  c.QueryParam("accountId"),
		Search:     c.QueryParam("search"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.QueryParam("type"); raw != "" {
		typ := domain.TransactionType(raw)
		if !typ.Valid() {
			return NewValidationError(c, "Invalid transaction type", []ValidationError{{Field: "type", Message: "Unknown transaction type"}})
		}
		input.Type = &typ
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := domain.TransactionStatus(raw)
		if status != domain.TransactionStatusPosted && status != domain.TransactionStatusVoided {
			return NewValidationError(c, "Invalid status", []ValidationError{{Field: "status", Message: "Must be posted or voided"}})
		}
		input.Status = &status
	}

	page, err := h.transactionService.List(c.Request().Context(), input)
	if err != nil {
		return handleServiceError(c, err, "Failed to get transactions")
	}
	return c.JSON(http.StatusOK, page)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	txn, err := h.transactionService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, txn)
}

// VoidTransaction handles POST /api/v1/transactions/:id/void
func (h *TransactionHandler) VoidTransaction(c echo.Context) error {
	txn, err := h.transactionService.Void(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleServiceError(c, err, "Failed to void transaction")
	}
	return c.JSON(http.StatusOK, txn)
}

// CorrectTransaction handles POST /api/v1/transactions/:id/correct
func (h *TransactionHandler) CorrectTransaction(c echo.Context) error {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	id := c.Param("id")
	result, err := h.transactionService.Correct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return handleServiceError(c, err, "Failed to correct transaction")
	}

	log.Debug().Str("transaction_id", id).Str("replacement_id", result.Transaction.ID).Msg("Correction returned")
	return c.JSON(http.StatusCreated, result)
}
