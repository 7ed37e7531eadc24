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

// TransactionService handles transaction-related business logic
type TransactionService struct {
	tx              domain.Transactor
	clock           util.Clock
	calcService     *CalculationService
	budgetService   *BudgetService
	defaultCurrency string
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	tx domain.Transactor,
	clock util.Clock,
	calcService *CalculationService,
	budgetService *BudgetService,
	defaultCurrency string,
) *TransactionService {
	return &TransactionService{
		tx:              tx,
		clock:           clock,
		calcService:     calcService,
		budgetService:   budgetService,
		defaultCurrency: defaultCurrency,
	}
}

// ListTransactionsInput filters a transaction listing. Status defaults to
// posted; CategoryID matches the whole category family.
type ListTransactionsInput struct {
	Month      string
	CategoryID string
	UserID     string
	AccountID  string
	Search     string
	Type       *domain.TransactionType
	Status     *domain.TransactionStatus
	Limit      int
	Offset     int
}

// Create posts a new transaction and returns it with the fresh balances of
// the accounts it touched and the budget context of its category.
func (s *TransactionService) Create(ctx context.Context, input domain.TransactionInput) (*domain.TransactionResult, error) {
	input = input.Normalize(s.defaultCurrency)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *domain.TransactionResult
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		if err := validateReferences(ctx, store, input); err != nil {
			return err
		}
		created, err := store.Transactions().Create(ctx, s.newTransaction(input, nil))
		if err != nil {
			return err
		}
		result, err = s.buildResult(ctx, store, created, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("transaction_id", result.Transaction.ID).
		Str("type", string(result.Transaction.Type)).
		Int64("amount", result.Transaction.Amount).
		Str("user_id", result.Transaction.UserID).
		Msg("Transaction created")
	return result, nil
}

// List returns one page of matching transactions, newest first, with the
// total number of matches.
func (s *TransactionService) List(ctx context.Context, input ListTransactionsInput) (*domain.TransactionPage, error) {
	filter, err := s.listFilter(input)
	if err != nil {
		return nil, err
	}

	page := &domain.TransactionPage{Limit: filter.Limit, Offset: filter.Offset}
	err = s.tx.WithinTx(ctx, func(store domain.Store) error {
		if input.CategoryID != "" {
			hierarchy, err := loadHierarchy(ctx, store)
			if err != nil {
				return err
			}
			filter.CategoryIDs = hierarchy.FamilyOf(input.CategoryID)
		}
		var err error
		if page.Transactions, err = store.Transactions().List(ctx, filter); err != nil {
			return err
		}
		page.Total, err = store.Transactions().Count(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *TransactionService) listFilter(input ListTransactionsInput) (domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{
		Type:   input.Type,
		Status: input.Status,
		Search: strings.TrimSpace(input.Search),
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if filter.Status == nil {
		posted := domain.TransactionStatusPosted
		filter.Status = &posted
	}
	if filter.Limit == 0 {
		filter.Limit = domain.DefaultPageSize
	}
	if filter.Limit < 1 || filter.Limit > domain.MaxPageSize {
		return filter, domain.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", domain.MaxPageSize))
	}
	if filter.Offset < 0 {
		return filter, domain.NewValidationError("offset", "offset must not be negative")
	}
	if input.Month != "" {
		start, end, err := util.MonthRange(input.Month, s.clock.Location())
		if err != nil {
			return filter, invalidMonth(err)
		}
		filter.From, filter.To = &start, &end
	}
	if input.UserID != "" {
		filter.UserID = &input.UserID
	}
	if input.AccountID != "" {
		filter.AccountID = &input.AccountID
	}
	return filter, nil
}

// Get returns one transaction, voided or not
func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		txn, err = store.Transactions().GetByID(ctx, id)
		return err
	})
	return txn, err
}

// Void marks a posted transaction as voided. Voiding twice is an error.
func (s *TransactionService) Void(ctx context.Context, id string) (*domain.Transaction, error) {
	var voided *domain.Transaction
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		voided, err = voidPosted(ctx, store, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("transaction_id", id).Msg("Transaction voided")
	return voided, nil
}

// Correct voids the original and posts its replacement in one unit of work.
// The replacement references the original through CorrectionOf.
func (s *TransactionService) Correct(ctx context.Context, id string, input domain.TransactionInput) (*domain.TransactionResult, error) {
	input = input.Normalize(s.defaultCurrency)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *domain.TransactionResult
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		original, err := voidPosted(ctx, store, id)
		if err != nil {
			return err
		}
		if err := validateReferences(ctx, store, input); err != nil {
			return err
		}
		created, err := store.Transactions().Create(ctx, s.newTransaction(input, &original.ID))
		if err != nil {
			return err
		}
		result, err = s.buildResult(ctx, store, created, original)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("transaction_id", result.Transaction.ID).Str("correction_of", id).Msg("Transaction corrected")
	return result, nil
}

func (s *TransactionService) newTransaction(input domain.TransactionInput, correctionOf *string) *domain.Transaction {
	effective := s.clock.Now()
	if input.EffectiveAt != nil {
		effective = *input.EffectiveAt
	}
	return &domain.Transaction{
		ID:            uuid.NewString(),
		EffectiveAt:   effective,
		UserID:        input.UserID,
		Type:          input.Type,
		Amount:        input.Amount,
		Currency:      input.Currency,
		CategoryID:    input.CategoryID,
		Description:   input.Description,
		Merchant:      input.Merchant,
		PaymentMethod: input.PaymentMethod,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Note:          input.Note,
		Status:        domain.TransactionStatusPosted,
		CorrectionOf:  correctionOf,
		Metadata:      input.Metadata,
	}
}

// buildResult reads balances and budget context inside the same unit of work
// as the write. For a correction the original's accounts and category are
// included too.
func (s *TransactionService) buildResult(ctx context.Context, store domain.Store, txn, original *domain.Transaction) (*domain.TransactionResult, error) {
	accountIDs := txn.AccountIDs()
	var categoryIDs []string
	if txn.CategoryID != nil {
		categoryIDs = append(categoryIDs, *txn.CategoryID)
	}
	if original != nil {
		for _, id := range original.AccountIDs() {
			if !containsID(accountIDs, id) {
				accountIDs = append(accountIDs, id)
			}
		}
		if original.CategoryID != nil && !containsID(categoryIDs, *original.CategoryID) {
			categoryIDs = append(categoryIDs, *original.CategoryID)
		}
	}

	balances, err := s.calcService.accountBalances(ctx, store, BalanceFilter{AccountIDs: accountIDs})
	if err != nil {
		return nil, err
	}
	month := util.MonthOf(txn.EffectiveAt, s.clock.Location())
	status, err := s.budgetService.statusForCategoriesWithin(ctx, store, month, categoryIDs)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionResult{
		Transaction:  txn,
		Balances:     balances,
		BudgetStatus: status.Budgets,
		Warnings:     status.Warnings,
	}, nil
}

func voidPosted(ctx context.Context, store domain.Store, id string) (*domain.Transaction, error) {
	txn, err := store.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status == domain.TransactionStatusVoided {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyVoided, id)
	}
	return store.Transactions().UpdateStatus(ctx, id, domain.TransactionStatusVoided)
}

// validateReferences checks every referenced entity exists before any write
func validateReferences(ctx context.Context, store domain.Store, input domain.TransactionInput) error {
	if _, err := store.Users().GetByID(ctx, input.UserID); err != nil {
		return err
	}
	if input.CategoryID != nil {
		if _, err := store.Categories().GetByID(ctx, *input.CategoryID); err != nil {
			return err
		}
	}
	for _, accountID := range []*string{input.FromAccountID, input.ToAccountID} {
		if accountID == nil {
			continue
		}
		if _, err := store.Accounts().GetByID(ctx, *accountID); err != nil {
			return err
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
