package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetaHandler serves reference data for clients and the health probe
type MetaHandler struct {
	categoryService *service.CategoryService
	accountService  *service.AccountService
	userService     *service.UserService
	clock           util.Clock
	defaultCurrency string
	db              Pinger
}

// NewMetaHandler creates a new MetaHandler
func NewMetaHandler(
	categoryService *service.CategoryService,
	accountService *service.AccountService,
	userService *service.UserService,
	clock util.Clock,
	defaultCurrency string,
	db Pinger,
) *MetaHandler {
	return &MetaHandler{
		categoryService: categoryService,
		accountService:  accountService,
		userService:     userService,
		clock:           clock,
		defaultCurrency: defaultCurrency,
		db:              db,
	}
}

// MetaResponse lists everything a client needs to build a transaction form
type MetaResponse struct {
	Categories       []*service.CategoryNode  `json:"categories"`
	Accounts         []*domain.Account        `json:"accounts"`
	Users            []*domain.User           `json:"users"`
	PaymentMethods   []domain.PaymentMethod   `json:"paymentMethods"`
	TransactionTypes []domain.TransactionType `json:"transactionTypes"`
	AccountTypes     []domain.AccountType     `json:"accountTypes"`
	DefaultCurrency  string                   `json:"defaultCurrency"`
	Timezone         string                   `json:"timezone"`
	ServerTime       time.Time                `json:"serverTime"`
}

// GetMeta handles GET /api/v1/meta
func (h *MetaHandler) GetMeta(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.categoryService.Tree(ctx)
	if err != nil {
		return handleServiceError(c, err, "Failed to load categories")
	}
	accounts, err := h.accountService.List(ctx, nil)
	if err != nil {
		return handleServiceError(c, err, "Failed to load accounts")
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return handleServiceError(c, err, "Failed to load users")
	}

	return c.JSON(http.StatusOK, MetaResponse{
		Categories:       categories,
		Accounts:         accounts,
		Users:            users,
		PaymentMethods:   domain.PaymentMethods,
		TransactionTypes: domain.TransactionTypes,
		AccountTypes:     domain.AccountTypes,
		DefaultCurrency:  h.defaultCurrency,
		Timezone:         h.clock.Location().String(),
		ServerTime:       h.clock.Now().In(h.clock.Location()),
	})
}

// Health handles GET /health
func (h *MetaHandler) Health(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
				Type:     ErrorTypeServiceUnready,
				Title:    "Service Unavailable",
				Status:   http.StatusServiceUnavailable,
				Detail:   "Database unreachable",
				Instance: c.Request().URL.Path,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
