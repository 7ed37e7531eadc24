package handler

import (
	"net/http"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService     *service.AccountService
	calculationService *service.CalculationService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, calculationService *service.CalculationService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		calculationService: calculationService,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Type        string  `json:"type"`
	Currency    string  `json:"currency"`
	OwnerID     *string `json:"ownerId"`
}

// AdjustRequest represents the balance adjustment request body
type AdjustRequest struct {
	Amount int64   `json:"amount"`
	UserID string  `json:"userId"`
	Note   *string `json:"note"`
}

// BalancesResponse lists account balances with their sum
type BalancesResponse struct {
	Balances []*domain.AccountBalance `json:"balances"`
	Total    int64                    `json:"total"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.Create(c.Request().Context(), service.CreateAccountInput{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		Type:        domain.AccountType(req.Type),
		Currency:    req.Currency,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to create account")
	}

	log.Info().Str("account_id", account.ID).Str("type", string(account.Type)).Msg("Account created")
	return c.JSON(http.StatusCreated, account)
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	accounts, err := h.accountService.List(c.Request().Context(), queryStringPtr(c, "ownerId"))
	if err != nil {
		return handleServiceError(c, err, "Failed to get accounts")
	}
	return c.JSON(http.StatusOK, accounts)
}

// GetBalances handles GET /api/v1/accounts/balances
func (h *AccountHandler) GetBalances(c echo.Context) error {
	balances, err := h.calculationService.AccountBalances(c.Request().Context(), service.BalanceFilter{
		OwnerID: queryStringPtr(c, "ownerId"),
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to calculate balances")
	}
	return c.JSON(http.StatusOK, BalancesResponse{
		Balances: balances,
		Total:    service.TotalBalance(balances),
	})
}

// AdjustBalance handles POST /api/v1/accounts/:id/adjust
func (h *AccountHandler) AdjustBalance(c echo.Context) error {
	var req AdjustRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance, err := h.accountService.Adjust(c.Request().Context(), c.Param("id"), service.AdjustInput{
		Amount: req.Amount,
		UserID: req.UserID,
		Note:   req.Note,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to adjust balance")
	}
	return c.JSON(http.StatusOK, balance)
}
