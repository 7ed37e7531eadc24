package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AccountService handles account business logic
type AccountService struct {
	tx              domain.Transactor
	clock           util.Clock
	calcService     *CalculationService
	defaultCurrency string
}

// NewAccountService creates a new AccountService
func NewAccountService(tx domain.Transactor, clock util.Clock, calcService *CalculationService, defaultCurrency string) *AccountService {
	return &AccountService{
		tx:              tx,
		clock:           clock,
		calcService:     calcService,
		defaultCurrency: defaultCurrency,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	ID          string
	DisplayName string
	Type        domain.AccountType
	Currency    string
	OwnerID     *string
}

// AdjustInput is a signed correction of an account balance
type AdjustInput struct {
	Amount int64
	UserID string
	Note   *string
}

// Create creates a new account. An owner, when given, must be a known user.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	account := &domain.Account{
		ID:          strings.TrimSpace(input.ID),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Type:        input.Type,
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		OwnerID:     input.OwnerID,
		IsActive:    true,
	}
	if account.Currency == "" {
		account.Currency = s.defaultCurrency
	}
	if account.Type == "" {
		account.Type = domain.AccountTypeOther
	}

	if err := validateIdentity(account.ID, account.DisplayName); err != nil {
		return nil, err
	}
	if !account.Type.Valid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("unknown account type '%s'", account.Type))
	}
	if len(account.Currency) != 3 {
		return nil, domain.NewValidationError("currency", "currency must be a 3-letter code")
	}

	var created *domain.Account
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		if account.OwnerID != nil {
			if _, err := store.Users().GetByID(ctx, *account.OwnerID); err != nil {
				return err
			}
		}
		var err error
		created, err = store.Accounts().Create(ctx, account)
		return err
	})
	return created, err
}

// List returns active accounts, optionally only those owned by ownerID
func (s *AccountService) List(ctx context.Context, ownerID *string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		accounts, err = store.Accounts().List(ctx, domain.AccountFilter{OwnerID: ownerID, ActiveOnly: true})
		return err
	})
	return accounts, err
}

// Adjust posts an adjustment moving the balance by a signed amount and
// returns the fresh balance. A positive amount credits the account, a
// negative one debits its absolute value.
func (s *AccountService) Adjust(ctx context.Context, accountID string, input AdjustInput) (*domain.AccountBalance, error) {
	if input.Amount == 0 {
		return nil, domain.NewValidationError("amount", "adjustment amount must not be zero")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, domain.NewValidationError("userId", "user is required")
	}

	var balance *domain.AccountBalance
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		account, err := store.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if _, err := store.Users().GetByID(ctx, userID); err != nil {
			return err
		}

		description := "Balance adjustment for " + account.DisplayName
		txn := &domain.Transaction{
			ID:          uuid.NewString(),
			EffectiveAt: s.clock.Now(),
			UserID:      userID,
			Type:        domain.TransactionTypeAdjustment,
			Amount:      input.Amount,
			Currency:    account.Currency,
			Description: &description,
			Note:        input.Note,
			Status:      domain.TransactionStatusPosted,
		}
		if input.Amount > 0 {
			txn.ToAccountID = &account.ID
		} else {
			txn.Amount = -input.Amount
			txn.FromAccountID = &account.ID
		}
		if _, err := store.Transactions().Create(ctx, txn); err != nil {
			return err
		}

		balance, err = s.calcService.balanceOf(ctx, store, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("account_id", accountID).Int64("amount", input.Amount).Int64("balance", balance.Balance).Msg("Account balance adjusted")
	return balance, nil
}
