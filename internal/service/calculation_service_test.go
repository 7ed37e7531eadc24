package service

import (
	"context"
	"testing"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountBalance_IncomeMinusExpense(t *testing.T) {
	s := newTestServices(t)
	s.store.AddTransaction(income("alice", "bca", 1000000, march(1)))
	s.store.AddTransaction(expense("alice", "groceries", "bca", 300000, march(2)))

	balance, err := s.calc.AccountBalance(context.Background(), "bca")

	require.NoError(t, err)
	assert.Equal(t, int64(700000), balance.Balance)
	assert.Equal(t, "BCA", balance.DisplayName)
	assert.Equal(t, "IDR", balance.Currency)
}

func TestAccountBalances_AllRules(t *testing.T) {
	s := newTestServices(t)
	s.store.AddTransaction(income("alice", "bca", 1000000, march(1)))
	s.store.AddTransaction(domain.Transaction{
		UserID: "alice", Type: domain.TransactionTypeTransfer, Amount: 250000,
		FromAccountID: testutil.StrPtr("bca"), ToAccountID: testutil.StrPtr("cash"), EffectiveAt: march(2),
	})
	s.store.AddTransaction(expense("bob", "coffee", "cash", 30000, march(3)))
	s.store.AddTransaction(domain.Transaction{
		UserID: "bob", Type: domain.TransactionTypeAdjustment, Amount: 5000,
		FromAccountID: testutil.StrPtr("cash"), EffectiveAt: march(4),
	})
	s.store.AddTransaction(domain.Transaction{
		UserID: "bob", Type: domain.TransactionTypeAdjustment, Amount: 12000,
		ToAccountID: testutil.StrPtr("gopay"), EffectiveAt: march(4),
	})
	voided := expense("alice", "groceries", "bca", 999999, march(5))
	voided.Status = domain.TransactionStatusVoided
	s.store.AddTransaction(voided)

	balances, err := s.calc.AccountBalances(context.Background(), BalanceFilter{})
	require.NoError(t, err)

	got := make(map[string]int64)
	var order []string
	for _, b := range balances {
		got[b.AccountID] = b.Balance
		order = append(order, b.AccountID)
	}

	assert.Equal(t, int64(750000), got["bca"])
	assert.Equal(t, int64(215000), got["cash"])
	assert.Equal(t, int64(12000), got["gopay"])
	// shared accounts first, then by owner
	assert.Equal(t, []string{"cash", "bca", "gopay"}, order)
	assert.Equal(t, int64(977000), TotalBalance(balances))
}

func TestAccountBalances_FilterByOwner(t *testing.T) {
	s := newTestServices(t)

	balances, err := s.calc.AccountBalances(context.Background(), BalanceFilter{OwnerID: testutil.StrPtr("bob")})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "gopay", balances[0].AccountID)
}

func TestAccountBalance_UnknownAccount(t *testing.T) {
	s := newTestServices(t)

	_, err := s.calc.AccountBalance(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
