package service

import (
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
)

type testServices struct {
	store        *testutil.MemoryStore
	clock        util.FixedClock
	calc         *CalculationService
	budgets      *BudgetService
	summaries    *SummaryService
	transactions *TransactionService
	accounts     *AccountService
	categories   *CategoryService
	users        *UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store := testutil.NewMemoryStore()
	store.SeedHousehold()
	clock := util.FixedClock{At: testutil.Date(2026, time.March, 15, 12, 0), Loc: testutil.Jakarta}

	calc := NewCalculationService(store)
	budgets := NewBudgetService(store, clock)
	return &testServices{
		store:        store,
		clock:        clock,
		calc:         calc,
		budgets:      budgets,
		summaries:    NewSummaryService(store, clock, budgets),
		transactions: NewTransactionService(store, clock, calc, budgets, "IDR"),
		accounts:     NewAccountService(store, clock, calc, "IDR"),
		categories:   NewCategoryService(store),
		users:        NewUserService(store),
	}
}

func expense(user, category, account string, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		UserID:        user,
		Type:          domain.TransactionTypeExpense,
		Amount:        amount,
		CategoryID:    testutil.StrPtr(category),
		FromAccountID: testutil.StrPtr(account),
		EffectiveAt:   at,
	}
}

func income(user, account string, amount int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		UserID:      user,
		Type:        domain.TransactionTypeIncome,
		Amount:      amount,
		ToAccountID: testutil.StrPtr(account),
		EffectiveAt: at,
	}
}

func march(day int) time.Time {
	return testutil.Date(2026, time.March, day, 10, 0)
}
