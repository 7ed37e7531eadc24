package service

import (
	"context"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// CalculationService handles balance calculation logic
type CalculationService struct {
	tx domain.Transactor
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(tx domain.Transactor) *CalculationService {
	return &CalculationService{tx: tx}
}

// BalanceFilter narrows a balance listing. With no AccountIDs only active
// accounts are reported.
type BalanceFilter struct {
	OwnerID    *string
	AccountIDs []string
}

// AccountBalances calculates balances for every matching account, shared
// accounts first and then by display name.
func (s *CalculationService) AccountBalances(ctx context.Context, filter BalanceFilter) ([]*domain.AccountBalance, error) {
	var balances []*domain.AccountBalance
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		balances, err = s.accountBalances(ctx, store, filter)
		return err
	})
	return balances, err
}

// AccountBalance calculates the balance for a single account
func (s *CalculationService) AccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	var balance *domain.AccountBalance
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		account, err := store.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		balance, err = s.balanceOf(ctx, store, account)
		return err
	})
	return balance, err
}

func (s *CalculationService) accountBalances(ctx context.Context, store domain.Store, filter BalanceFilter) ([]*domain.AccountBalance, error) {
	accounts, err := store.Accounts().List(ctx, domain.AccountFilter{
		OwnerID:    filter.OwnerID,
		IDs:        filter.AccountIDs,
		ActiveOnly: len(filter.AccountIDs) == 0,
	})
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balance, err := s.balanceOf(ctx, store, account)
		if err != nil {
			return nil, err
		}
		balances = append(balances, balance)
	}
	return balances, nil
}

// balanceOf recomputes the balance from posted history; nothing is cached
func (s *CalculationService) balanceOf(ctx context.Context, store domain.Store, account *domain.Account) (*domain.AccountBalance, error) {
	components, err := store.Transactions().BalanceComponents(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AccountBalance{
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		OwnerID:     account.OwnerID,
		Currency:    account.Currency,
		Balance:     components.Balance(),
	}, nil
}

// TotalBalance sums the given balances
func TotalBalance(balances []*domain.AccountBalance) int64 {
	var total int64
	for _, b := range balances {
		total += b.Balance
	}
	return total
}
