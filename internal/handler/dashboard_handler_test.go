package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_RequiresBasicAuth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.SetBasicAuth(testDashboardUser, "wrong")
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboard_Overview(t *testing.T) {
	s := newTestServer(t)
	seedExpense(s, "alice", "groceries", "bca", 300000, march(2))
	seedExpense(s, "bob", "coffee", "gopay", 45000, march(5))
	s.store.AddBudget("2026-03", "food", 400000, nil)

	rec := s.dashboard(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, "2026-03")
	assert.Contains(t, body, "Rp345.000")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Bob")
	assert.Contains(t, body, "Food is at 86% of budget")
}

func TestDashboard_OverviewInvalidMonth(t *testing.T) {
	s := newTestServer(t)

	rec := s.dashboard(http.MethodGet, "/dashboard?month=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_TransactionsPaginates(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < dashboardPageSize+5; i++ {
		txn := domain.Transaction{
			UserID: "alice", Type: domain.TransactionTypeExpense, Amount: int64(1000 + i),
			CategoryID: testutil.StrPtr("groceries"), FromAccountID: testutil.StrPtr("cash"),
			Description: testutil.StrPtr("Market run"), EffectiveAt: march(1 + i%28),
		}
		s.store.AddTransaction(txn)
	}

	rec := s.dashboard(http.MethodGet, "/dashboard/transactions?month=2026-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "35 transaction(s)")
	assert.Contains(t, body, "Market run")
	assert.Contains(t, body, "page=2")
	assert.Equal(t, dashboardPageSize, strings.Count(body, "Market run"))

	rec = s.dashboard(http.MethodGet, "/dashboard/transactions?month=2026-03&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, strings.Count(rec.Body.String(), "Market run"))
}

func TestDashboard_Budgets(t *testing.T) {
	s := newTestServer(t)
	s.store.AddBudget("2026-03", "food", 400000, nil)

	rec := s.dashboard(http.MethodGet, "/dashboard/budgets?month=2026-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `name="limit_food" value="400000"`)
	assert.Contains(t, body, `name="limit_transport" value=""`)
	assert.NotContains(t, body, "limit_groceries")
}

func TestDashboard_SaveBudgets(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{
		"month":           {"2026-03"},
		"limit_food":      {"750.000"},
		"limit_transport": {""},
		"limit_bills":     {"300000"},
	}
	rec := s.dashboard(http.MethodPost, "/dashboard/budgets", form.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard/budgets?month=2026-03&saved=2", rec.Header().Get("Location"))

	budgets := s.store.Budgets("2026-03")
	require.Len(t, budgets, 2)
	assert.Equal(t, "bills", budgets[0].CategoryID)
	assert.Equal(t, int64(300000), budgets[0].LimitAmount)
	assert.Equal(t, int64(750000), budgets[1].LimitAmount)

	snapshots := s.store.Snapshots("2026-03")
	require.Len(t, snapshots, 2)
	assert.Equal(t, domain.BudgetSourceDashboard, snapshots[0].Source)
}

func TestDashboard_SaveBudgetsRejectsBadLimit(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{"month": {"2026-03"}, "limit_food": {"lots"}}
	rec := s.dashboard(http.MethodPost, "/dashboard/budgets", form.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid limit for Food")
	assert.Empty(t, s.store.Budgets("2026-03"))
}

func TestDashboard_Accounts(t *testing.T) {
	s := newTestServer(t)
	seedExpense(s, "bob", "coffee", "gopay", 45000, march(5))

	rec := s.dashboard(http.MethodGet, "/dashboard/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "Shared")
	assert.Contains(t, body, "GoPay")
	assert.Contains(t, body, "-Rp45.000")

	shared := strings.Index(body, "Shared")
	alice := strings.Index(body, "<h2>Alice</h2>")
	assert.True(t, shared >= 0 && alice > shared, "shared accounts come first")
}

func TestGroupBalances(t *testing.T) {
	balances := []*domain.AccountBalance{
		{AccountID: "cash", Balance: 100},
		{AccountID: "bca", OwnerID: testutil.StrPtr("alice"), Balance: 50},
		{AccountID: "jago", OwnerID: testutil.StrPtr("alice"), Balance: -20},
		{AccountID: "gopay", OwnerID: testutil.StrPtr("dan"), Balance: 5},
	}

	groups := groupBalances(balances, map[string]string{"alice": "Alice"})
	require.Len(t, groups, 3)
	assert.Equal(t, "Shared", groups[0].Owner)
	assert.Equal(t, "Alice", groups[1].Owner)
	assert.Equal(t, int64(30), groups[1].Total)
	assert.Equal(t, "dan", groups[2].Owner)
}
