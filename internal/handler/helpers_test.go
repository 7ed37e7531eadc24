package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/middleware"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
)

const (
	testAPIKey        = "test-key"
	testDashboardUser = "admin"
	testDashboardPass = "secret"
)

type fixedRates map[string]decimal.Decimal

func (r fixedRates) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	return r, nil
}

type testServer struct {
	e        *echo.Echo
	store    *testutil.MemoryStore
	handlers Handlers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewMemoryStore()
	store.SeedHousehold()
	clock := util.FixedClock{At: testutil.Date(2026, time.March, 15, 12, 0), Loc: testutil.Jakarta}

	calc := service.NewCalculationService(store)
	budgets := service.NewBudgetService(store, clock)
	summaries := service.NewSummaryService(store, clock, budgets)
	transactions := service.NewTransactionService(store, clock, calc, budgets, "IDR")
	accounts := service.NewAccountService(store, clock, calc, "IDR")
	categories := service.NewCategoryService(store)
	users := service.NewUserService(store)
	conversion := service.NewConversionService(fixedRates{"IDR": decimal.RequireFromString("16250")})

	dashboard, err := NewDashboardHandler(DashboardServices{
		Summary:     summaries,
		Budget:      budgets,
		Transaction: transactions,
		Calculation: calc,
		Category:    categories,
		User:        users,
		Account:     accounts,
	}, clock)
	if err != nil {
		t.Fatalf("Failed to build dashboard handler: %v", err)
	}

	h := Handlers{
		Meta:        NewMetaHandler(categories, accounts, users, clock, "IDR", nil),
		User:        NewUserHandler(users),
		Category:    NewCategoryHandler(categories),
		Account:     NewAccountHandler(accounts, calc),
		Transaction: NewTransactionHandler(transactions),
		Budget:      NewBudgetHandler(budgets, clock),
		Summary:     NewSummaryHandler(summaries, conversion, "IDR"),
		Dashboard:   dashboard,
	}

	e := echo.New()
	noLimit := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	basicAuth := echomw.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
		return user == testDashboardUser && pass == testDashboardPass, nil
	})
	RegisterRoutes(e, h, middleware.APIKeyAuth(testAPIKey), noLimit, basicAuth)

	return &testServer{e: e, store: store, handlers: h}
}

// do sends an authenticated API request through the full router
func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) dashboard(method, path string, form string) *httptest.ResponseRecorder {
	var reader io.Reader
	if form != "" {
		reader = strings.NewReader(form)
	}
	req := httptest.NewRequest(method, path, reader)
	if form != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	req.SetBasicAuth(testDashboardUser, testDashboardPass)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func march(day int) time.Time {
	return testutil.Date(2026, time.March, day, 9, 0)
}

func seedExpense(s *testServer, user, category, account string, amount int64, at time.Time) *domain.Transaction {
	return s.store.AddTransaction(domain.Transaction{
		UserID:        user,
		Type:          domain.TransactionTypeExpense,
		Amount:        amount,
		CategoryID:    testutil.StrPtr(category),
		FromAccountID: testutil.StrPtr(account),
		EffectiveAt:   at,
	})
}

func (s *testServer) doWithoutKey(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}
