package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMarch(s *testServices) {
	withMerchant := func(t domain.Transaction, merchant string) domain.Transaction {
		t.Merchant = testutil.StrPtr(merchant)
		return t
	}
	s.store.AddTransaction(income("alice", "bca", 10000000, march(1)))
	s.store.AddTransaction(withMerchant(expense("alice", "groceries", "bca", 300000, march(2)), "Superindo"))
	s.store.AddTransaction(withMerchant(expense("bob", "groceries", "cash", 150000, march(2)), "Superindo"))
	s.store.AddTransaction(withMerchant(expense("bob", "coffee", "gopay", 45000, march(5)), "Kopi Kenangan"))
	s.store.AddTransaction(expense("alice", "fuel", "bca", 200000, march(5)))
	s.store.AddTransaction(expense("alice", "bills", "bca", 400000, march(10)))
	s.store.AddTransaction(domain.Transaction{
		UserID: "alice", Type: domain.TransactionTypeTransfer, Amount: 500000,
		FromAccountID: testutil.StrPtr("bca"), ToAccountID: testutil.StrPtr("cash"), EffectiveAt: march(11),
	})
	voided := expense("bob", "groceries", "cash", 777777, march(12))
	voided.Status = domain.TransactionStatusVoided
	s.store.AddTransaction(voided)
	s.store.AddTransaction(expense("bob", "groceries", "cash", 88000, testutil.Date(2026, 4, 1, 0, 30)))
	s.store.AddBudget("2026-03", "food", 500000, nil)
}

func TestMonthlySummary_Aggregates(t *testing.T) {
	s := newTestServices(t)
	seedMarch(s)

	summary, err := s.summaries.Monthly(context.Background(), "2026-03", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1095000), summary.TotalExpenses)
	assert.Equal(t, int64(10000000), summary.TotalIncome)
	assert.Equal(t, int64(8905000), summary.Net)

	require.Len(t, summary.ByCategory, 4)
	assert.Equal(t, "groceries", summary.ByCategory[0].CategoryID)
	assert.Equal(t, int64(450000), summary.ByCategory[0].Total)
	assert.Equal(t, "bills", summary.ByCategory[1].CategoryID)

	require.Len(t, summary.ByParentCategory, 3)
	food := summary.ByParentCategory[0]
	assert.Equal(t, "food", food.CategoryID)
	assert.Equal(t, "Food", food.CategoryName)
	assert.Equal(t, int64(495000), food.Total)
	require.Len(t, food.Children, 2)
	assert.Equal(t, "groceries", food.Children[0].CategoryID)
	assert.Equal(t, "coffee", food.Children[1].CategoryID)
	bills := summary.ByParentCategory[1]
	assert.Equal(t, "bills", bills.CategoryID)
	assert.Empty(t, bills.Children)

	require.Len(t, summary.ByUser, 2)
	assert.Equal(t, "alice", summary.ByUser[0].UserID)
	assert.Equal(t, int64(900000), summary.ByUser[0].Total)
	assert.Equal(t, "Bob", summary.ByUser[1].DisplayName)

	assert.Equal(t, []*domain.DailyTotal{
		{Date: "2026-03-02", Total: 450000},
		{Date: "2026-03-05", Total: 245000},
		{Date: "2026-03-10", Total: 400000},
	}, summary.DailyTotals)

	require.Len(t, summary.TopMerchants, 2)
	assert.Equal(t, domain.MerchantSpend{Merchant: "Superindo", Total: 450000, Count: 2}, *summary.TopMerchants[0])

	require.Len(t, summary.BudgetStatus, 1)
	assert.Equal(t, int64(495000), summary.BudgetStatus[0].Used)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, domain.SeverityWarn, summary.Warnings[0].Severity)
}

func TestMonthlySummary_RestrictedToUser(t *testing.T) {
	s := newTestServices(t)
	seedMarch(s)

	summary, err := s.summaries.Monthly(context.Background(), "2026-03", testutil.StrPtr("bob"))
	require.NoError(t, err)

	assert.Equal(t, int64(195000), summary.TotalExpenses)
	assert.Equal(t, int64(0), summary.TotalIncome)
	require.Len(t, summary.ByUser, 1)
	assert.Equal(t, "bob", summary.ByUser[0].UserID)
	// budget status stays household-wide
	assert.Equal(t, int64(495000), summary.BudgetStatus[0].Used)
}

func TestMonthlySummary_IsIdempotent(t *testing.T) {
	s := newTestServices(t)
	seedMarch(s)

	first, err := s.summaries.Monthly(context.Background(), "2026-03", nil)
	require.NoError(t, err)
	second, err := s.summaries.Monthly(context.Background(), "2026-03", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMonthlySummary_TopMerchantsCapped(t *testing.T) {
	s := newTestServices(t)
	for i := 0; i < 12; i++ {
		tx := expense("alice", "groceries", "bca", int64(1000*(i+1)), march(3))
		tx.Merchant = testutil.StrPtr(fmt.Sprintf("Shop %02d", i))
		s.store.AddTransaction(tx)
	}

	summary, err := s.summaries.Monthly(context.Background(), "2026-03", nil)
	require.NoError(t, err)

	require.Len(t, summary.TopMerchants, domain.MaxTopMerchants)
	assert.Equal(t, "Shop 11", summary.TopMerchants[0].Merchant)
	assert.Equal(t, "Shop 02", summary.TopMerchants[9].Merchant)
}

func TestMonthlySummary_DanglingCategoryFallsBackToID(t *testing.T) {
	s := newTestServices(t)
	s.store.AddTransaction(expense("alice", "legacy", "bca", 1000, march(3)))

	summary, err := s.summaries.Monthly(context.Background(), "2026-03", nil)
	require.NoError(t, err)

	require.Len(t, summary.ByCategory, 1)
	assert.Equal(t, "legacy", summary.ByCategory[0].CategoryName)
	require.Len(t, summary.ByParentCategory, 1)
	assert.Equal(t, "legacy", summary.ByParentCategory[0].CategoryID)
}

func TestMonthlySummary_EmptyMonth(t *testing.T) {
	s := newTestServices(t)

	summary, err := s.summaries.Monthly(context.Background(), "2025-01", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.Net)
	assert.NotNil(t, summary.ByCategory)
	assert.NotNil(t, summary.ByParentCategory)
	assert.NotNil(t, summary.TopMerchants)
	assert.Empty(t, summary.BudgetStatus)
}

func TestMonthlySummary_Errors(t *testing.T) {
	s := newTestServices(t)

	_, err := s.summaries.Monthly(context.Background(), "March", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = s.summaries.Monthly(context.Background(), "2026-03", testutil.StrPtr("carol"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummaryService_CurrentMonth(t *testing.T) {
	s := newTestServices(t)
	assert.Equal(t, "2026-03", s.summaries.CurrentMonth())
}
