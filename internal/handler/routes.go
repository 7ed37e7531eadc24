package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers bundles every HTTP handler the server exposes
type Handlers struct {
	Meta        *MetaHandler
	User        *UserHandler
	Category    *CategoryHandler
	Account     *AccountHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Summary     *SummaryHandler
	Dashboard   *DashboardHandler
}

// RegisterRoutes sets up all API routes. apiAuth guards /api/v1 and
// dashboardAuth guards /dashboard; a nil Dashboard handler skips the pages.
func RegisterRoutes(e *echo.Echo, h Handlers, apiAuth, rateLimit, dashboardAuth echo.MiddlewareFunc) {
	e.GET("/health", h.Meta.Health)

	// API version 1
	api := e.Group("/api/v1", apiAuth, rateLimit)
	api.GET("/meta", h.Meta.GetMeta)

	users := api.Group("/users")
	users.GET("", h.User.GetUsers)
	users.POST("", h.User.CreateUser)

	categories := api.Group("/categories")
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)
	categories.POST("/:id/deactivate", h.Category.DeactivateCategory)

	accounts := api.Group("/accounts")
	accounts.GET("", h.Account.GetAccounts)
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("/balances", h.Account.GetBalances)
	accounts.POST("/:id/adjust", h.Account.AdjustBalance)

	transactions := api.Group("/transactions")
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.POST("/:id/void", h.Transaction.VoidTransaction)
	transactions.POST("/:id/correct", h.Transaction.CorrectTransaction)

	budgets := api.Group("/budgets")
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/status", h.Budget.GetStatus)
	budgets.GET("/history", h.Budget.GetHistory)
	budgets.PUT("/:month", h.Budget.SetBudgets)
	budgets.PUT("/:month/:categoryId", h.Budget.SetBudget)

	api.GET("/summary/monthly", h.Summary.GetMonthly)
	api.GET("/convert", h.Summary.Convert)

	if h.Dashboard == nil {
		return
	}
	dashboard := e.Group("/dashboard", dashboardAuth)
	dashboard.GET("", h.Dashboard.Overview)
	dashboard.GET("/transactions", h.Dashboard.Transactions)
	dashboard.GET("/budgets", h.Dashboard.Budgets)
	dashboard.POST("/budgets", h.Dashboard.SaveBudgets)
	dashboard.GET("/accounts", h.Dashboard.Accounts)
}
