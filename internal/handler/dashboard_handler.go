package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	dashboardPageSize    = 30
	dashboardHistoryRows = 20
)

var dashboardPages = []string{"overview", "transactions", "budgets", "accounts"}

// DashboardHandler renders the household dashboard
type DashboardHandler struct {
	summaryService     *service.SummaryService
	budgetService      *service.BudgetService
	transactionService *service.TransactionService
	calculationService *service.CalculationService
	categoryService    *service.CategoryService
	userService        *service.UserService
	accountService     *service.AccountService
	clock              util.Clock
	pages              map[string]*template.Template
}

// DashboardServices groups the services the dashboard reads from
type DashboardServices struct {
	Summary     *service.SummaryService
	Budget      *service.BudgetService
	Transaction *service.TransactionService
	Calculation *service.CalculationService
	Category    *service.CategoryService
	User        *service.UserService
	Account     *service.AccountService
}

// NewDashboardHandler parses the embedded templates and creates a DashboardHandler
func NewDashboardHandler(services DashboardServices, clock util.Clock) (*DashboardHandler, error) {
	funcs := template.FuncMap{
		"idr": util.FormatIDR,
		"pct": func(p float64) string { return strconv.FormatFloat(p*100, 'f', 1, 64) + "%" },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"localTime": func(t time.Time) string { return t.In(clock.Location()).Format("02 Jan 15:04") },
	}

	pages := make(map[string]*template.Template, len(dashboardPages))
	for _, page := range dashboardPages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &DashboardHandler{
		summaryService:     services.Summary,
		budgetService:      services.Budget,
		transactionService: services.Transaction,
		calculationService: services.Calculation,
		categoryService:    services.Category,
		userService:        services.User,
		accountService:     services.Account,
		clock:              clock,
		pages:              pages,
	}, nil
}

type pageData struct {
	Title     string
	Active    string
	Month     string
	PrevMonth string
	NextMonth string
	Error     string
	Notice    string
	Body      any
}

func (h *DashboardHandler) render(c echo.Context, status int, page string, data pageData) error {
	data.Active = page
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render dashboard page")
		return c.String(http.StatusInternalServerError, "Failed to render page")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func (h *DashboardHandler) fail(c echo.Context, err error, failure string) error {
	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(failure)
	return c.String(http.StatusInternalServerError, failure)
}

// monthData resolves ?month= (default current) with its neighbours
func (h *DashboardHandler) monthData(c echo.Context) (pageData, error) {
	month := c.QueryParam("month")
	if month == "" {
		month = util.MonthOf(h.clock.Now(), h.clock.Location())
	}
	prev, err := util.PreviousMonth(month)
	if err != nil {
		return pageData{}, err
	}
	next, err := util.NextMonth(month)
	if err != nil {
		return pageData{}, err
	}
	return pageData{Month: month, PrevMonth: prev, NextMonth: next}, nil
}

type userSummary struct {
	User    *domain.User
	Summary *domain.MonthlySummary
}

type overviewBody struct {
	Summary  *domain.MonthlySummary
	Balances []*domain.AccountBalance
	Total    int64
	PerUser  []userSummary
}

// Overview handles GET /dashboard
func (h *DashboardHandler) Overview(c echo.Context) error {
	ctx := c.Request().Context()
	data, err := h.monthData(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid month")
	}

	users, err := h.userService.List(ctx)
	if err != nil {
		return h.fail(c, err, "Failed to load users")
	}

	var (
		summary  *domain.MonthlySummary
		balances []*domain.AccountBalance
		perUser  = make([]userSummary, len(users))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = h.summaryService.Monthly(gctx, data.Month, nil)
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = h.calculationService.AccountBalances(gctx, service.BalanceFilter{})
		return err
	})
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			s, err := h.summaryService.Monthly(gctx, data.Month, &u.ID)
			if err != nil {
				return err
			}
			perUser[i] = userSummary{User: u, Summary: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return h.fail(c, err, "Failed to build overview")
	}

	data.Title = "Overview"
	data.Body = overviewBody{
		Summary:  summary,
		Balances: balances,
		Total:    service.TotalBalance(balances),
		PerUser:  perUser,
	}
	return h.render(c, http.StatusOK, "overview", data)
}

type transactionsBody struct {
	Page       *domain.TransactionPage
	Categories []*domain.Category
	Users      []*domain.User
	Accounts   []*domain.Account
	Filter     url.Values
	PageNumber int
	PrevURL    string
	NextURL    string
}

// Transactions handles GET /dashboard/transactions
func (h *DashboardHandler) Transactions(c echo.Context) error {
	ctx := c.Request().Context()
	data, err := h.monthData(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid month")
	}

	pageNumber, err := queryInt(c, "page", 1)
	if err != nil || pageNumber < 1 {
		pageNumber = 1
	}

	input := service.ListTransactionsInput{
		Month:      data.Month,
		CategoryID: c.QueryParam("categoryId"),
		UserID:     c.QueryParam("userId"),
		AccountID:  c.QueryParam("accountId"),
		Search:     c.QueryParam("search"),
		Limit:      dashboardPageSize,
		Offset:     (pageNumber - 1) * dashboardPageSize,
	}
	if c.QueryParam("status") == string(domain.TransactionStatusVoided) {
		status := domain.TransactionStatusVoided
		input.Status = &status
	}

	page, err := h.transactionService.List(ctx, input)
	if err != nil {
		if isClientError(err) {
			return c.String(http.StatusBadRequest, err.Error())
		}
		return h.fail(c, err, "Failed to load transactions")
	}
	categories, err := h.categoryService.List(ctx, false)
	if err != nil {
		return h.fail(c, err, "Failed to load categories")
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return h.fail(c, err, "Failed to load users")
	}
	accounts, err := h.accountService.List(ctx, nil)
	if err != nil {
		return h.fail(c, err, "Failed to load accounts")
	}

	filter := url.Values{}
	for _, key := range []string{"categoryId", "userId", "accountId", "search", "status"} {
		if v := c.QueryParam(key); v != "" {
			filter.Set(key, v)
		}
	}
	filter.Set("month", data.Month)

	body := transactionsBody{
		Page:       page,
		Categories: categories,
		Users:      users,
		Accounts:   accounts,
		Filter:     filter,
		PageNumber: pageNumber,
	}
	if pageNumber > 1 {
		body.PrevURL = pageURL(filter, pageNumber-1)
	}
	if int64(input.Offset+len(page.Transactions)) < page.Total {
		body.NextURL = pageURL(filter, pageNumber+1)
	}

	data.Title = "Transactions"
	data.Body = body
	return h.render(c, http.StatusOK, "transactions", data)
}

func pageURL(filter url.Values, page int) string {
	q := url.Values{}
	for k, v := range filter {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return "/dashboard/transactions?" + q.Encode()
}

type budgetRow struct {
	Category *domain.Category
	Limit    int64
}

type budgetsBody struct {
	Status  *domain.BudgetStatusReport
	Rows    []budgetRow
	History *domain.BudgetHistoryPage
}

// Budgets handles GET /dashboard/budgets
func (h *DashboardHandler) Budgets(c echo.Context) error {
	data, err := h.monthData(c)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid month")
	}
	if saved := c.QueryParam("saved"); saved != "" {
		data.Notice = fmt.Sprintf("Saved %s budget(s)", saved)
	}
	return h.renderBudgets(c, http.StatusOK, data)
}

func (h *DashboardHandler) renderBudgets(c echo.Context, status int, data pageData) error {
	ctx := c.Request().Context()

	report, err := h.budgetService.Status(ctx, data.Month)
	if err != nil {
		return h.fail(c, err, "Failed to load budget status")
	}
	rows, err := h.budgetRows(c, data.Month)
	if err != nil {
		return h.fail(c, err, "Failed to load budgets")
	}
	history, err := h.budgetService.History(ctx, data.Month, dashboardHistoryRows, 0)
	if err != nil {
		return h.fail(c, err, "Failed to load budget history")
	}

	data.Title = "Budgets"
	data.Body = budgetsBody{Status: report, Rows: rows, History: history}
	return h.render(c, status, "budgets", data)
}

// budgetRows lists every active parent category with its household limit
func (h *DashboardHandler) budgetRows(c echo.Context, month string) ([]budgetRow, error) {
	ctx := c.Request().Context()
	categories, err := h.categoryService.List(ctx, true)
	if err != nil {
		return nil, err
	}
	budgets, err := h.budgetService.List(ctx, month)
	if err != nil {
		return nil, err
	}

	limits := make(map[string]int64)
	for _, b := range budgets {
		if b.ScopeUserID == nil {
			limits[b.CategoryID] = b.LimitAmount
		}
	}

	var rows []budgetRow
	for _, cat := range categories {
		if cat.IsParent() {
			rows = append(rows, budgetRow{Category: cat, Limit: limits[cat.ID]})
		}
	}
	return rows, nil
}

// SaveBudgets handles POST /dashboard/budgets. Each limit_<categoryId> form
// field with a positive value becomes a household budget change; blank
// fields are left alone.
func (h *DashboardHandler) SaveBudgets(c echo.Context) error {
	month := c.FormValue("month")
	data := pageData{Month: month}
	var err error
	if data.PrevMonth, err = util.PreviousMonth(month); err != nil {
		return c.String(http.StatusBadRequest, "Invalid month")
	}
	data.NextMonth, _ = util.NextMonth(month)

	form, err := c.FormParams()
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid form")
	}

	rows, err := h.budgetRows(c, month)
	if err != nil {
		return h.fail(c, err, "Failed to load budgets")
	}

	var changes []service.BudgetChange
	for _, row := range rows {
		raw := strings.TrimSpace(strings.ReplaceAll(form.Get("limit_"+row.Category.ID), ".", ""))
		if raw == "" {
			continue
		}
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			data.Error = fmt.Sprintf("Invalid limit for %s", row.Category.DisplayName)
			return h.renderBudgets(c, http.StatusBadRequest, data)
		}
		changes = append(changes, service.BudgetChange{CategoryID: row.Category.ID, LimitAmount: limit})
	}

	updated, err := h.budgetService.BulkUpsert(c.Request().Context(), month, changes, domain.BudgetSourceDashboard)
	if err != nil {
		if isClientError(err) {
			data.Error = err.Error()
			return h.renderBudgets(c, http.StatusBadRequest, data)
		}
		return h.fail(c, err, "Failed to save budgets")
	}

	log.Info().Str("month", month).Int("count", len(updated)).Msg("Budgets updated from dashboard")
	q := url.Values{"month": {month}, "saved": {strconv.Itoa(len(updated))}}
	return c.Redirect(http.StatusSeeOther, "/dashboard/budgets?"+q.Encode())
}

type accountGroup struct {
	Owner    string
	Balances []*domain.AccountBalance
	Total    int64
}

type accountsBody struct {
	Groups []accountGroup
	Total  int64
}

// Accounts handles GET /dashboard/accounts
func (h *DashboardHandler) Accounts(c echo.Context) error {
	ctx := c.Request().Context()

	balances, err := h.calculationService.AccountBalances(ctx, service.BalanceFilter{})
	if err != nil {
		return h.fail(c, err, "Failed to calculate balances")
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return h.fail(c, err, "Failed to load users")
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	data := pageData{Title: "Accounts"}
	data.Body = accountsBody{Groups: groupBalances(balances, names), Total: service.TotalBalance(balances)}
	return h.render(c, http.StatusOK, "accounts", data)
}

// groupBalances keeps the incoming order, which already puts shared
// accounts first and groups by owner.
func groupBalances(balances []*domain.AccountBalance, names map[string]string) []accountGroup {
	var groups []accountGroup
	index := make(map[string]int)
	for _, b := range balances {
		key, owner := "", "Shared"
		if b.OwnerID != nil {
			key = *b.OwnerID
			owner = names[key]
			if owner == "" {
				owner = key
			}
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, accountGroup{Owner: owner})
		}
		groups[i].Balances = append(groups[i].Balances, b)
		groups[i].Total += b.Balance
	}
	return groups
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound)
}
