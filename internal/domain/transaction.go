package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionTypeExpense    TransactionType = "expense"
	TransactionTypeIncome     TransactionType = "income"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// TransactionTypes lists every transaction type
var TransactionTypes = []TransactionType{
	TransactionTypeExpense,
	TransactionTypeIncome,
	TransactionTypeTransfer,
	TransactionTypeAdjustment,
}

func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPosted TransactionStatus = "posted"
	TransactionStatusVoided TransactionStatus = "voided"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodQRIS         PaymentMethod = "qris"
	PaymentMethodDebit        PaymentMethod = "debit"
	PaymentMethodCredit       PaymentMethod = "credit"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEwallet      PaymentMethod = "ewallet"
	PaymentMethodOther        PaymentMethod = "other"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodQRIS,
	PaymentMethodDebit,
	PaymentMethodCredit,
	PaymentMethodBankTransfer,
	PaymentMethodEwallet,
	PaymentMethodOther,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Transaction is a posted fact. Only Status may change after creation.
// Amount is always positive; direction comes from Type and which account
// side is populated.
type Transaction struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"createdAt"`
	EffectiveAt   time.Time         `json:"effectiveAt"`
	UserID        string            `json:"userId"`
	Type          TransactionType   `json:"type"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	CategoryID    *string           `json:"categoryId,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Merchant      *string           `json:"merchant,omitempty"`
	PaymentMethod *PaymentMethod    `json:"paymentMethod,omitempty"`
	FromAccountID *string           `json:"fromAccountId,omitempty"`
	ToAccountID   *string           `json:"toAccountId,omitempty"`
	Note          *string           `json:"note,omitempty"`
	Status        TransactionStatus `json:"status"`
	CorrectionOf  *string           `json:"correctionOf,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// AccountIDs returns the populated account ids of the transaction
func (t *Transaction) AccountIDs() []string {
	var ids []string
	if t.FromAccountID != nil {
		ids = append(ids, *t.FromAccountID)
	}
	if t.ToAccountID != nil && (t.FromAccountID == nil || *t.ToAccountID != *t.FromAccountID) {
		ids = append(ids, *t.ToAccountID)
	}
	return ids
}

// TransactionInput carries the caller-supplied fields of a new transaction
type TransactionInput struct {
	EffectiveAt   *time.Time
	UserID        string
	Type          TransactionType
	Amount        int64
	Currency      string
	CategoryID    *string
	Description   *string
	Merchant      *string
	PaymentMethod *PaymentMethod
	FromAccountID *string
	ToAccountID   *string
	Note          *string
	Metadata      map[string]any
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Normalize trims optional text fields (blank becomes nil), upper-cases the
// currency and applies defaultCurrency when none was given.
func (in TransactionInput) Normalize(defaultCurrency string) TransactionInput {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}
	in.CategoryID = trimmedOrNil(in.CategoryID)
	in.Description = trimmedOrNil(in.Description)
	in.Merchant = trimmedOrNil(in.Merchant)
	in.FromAccountID = trimmedOrNil(in.FromAccountID)
	in.ToAccountID = trimmedOrNil(in.ToAccountID)
	in.Note = trimmedOrNil(in.Note)
	return in
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Validate checks structural rules first (returning a *ValidationError) and
// then type-specific required fields (returning a *ClarificationError).
func (in TransactionInput) Validate() error {
	var issues []FieldIssue
	if in.Amount <= 0 {
		issues = append(issues, FieldIssue{Field: "amount", Issue: "amount must be a positive integer"})
	}
	if !in.Type.Valid() {
		issues = append(issues, FieldIssue{Field: "transactionType", Issue: "unknown transaction type '" + string(in.Type) + "'"})
	}
	if in.UserID == "" {
		issues = append(issues, FieldIssue{Field: "userId", Issue: "user is required"})
	}
	if !currencyPattern.MatchString(in.Currency) {
		issues = append(issues, FieldIssue{Field: "currency", Issue: "currency must be a 3-letter code"})
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		issues = append(issues, FieldIssue{Field: "paymentMethod", Issue: "unknown payment method '" + string(*in.PaymentMethod) + "'"})
	}

	switch in.Type {
	case TransactionTypeExpense:
		if in.ToAccountID != nil {
			issues = append(issues, FieldIssue{Field: "toAccountId", Issue: "toAccountId must be null for expenses"})
		}
	case TransactionTypeTransfer:
		if in.CategoryID != nil {
			issues = append(issues, FieldIssue{Field: "categoryId", Issue: "transfers cannot carry a category"})
		}
		if in.FromAccountID != nil && in.ToAccountID != nil && *in.FromAccountID == *in.ToAccountID {
			issues = append(issues, FieldIssue{Field: "toAccountId", Issue: "cannot transfer to the same account"})
		}
	case TransactionTypeAdjustment:
		if in.FromAccountID != nil && in.ToAccountID != nil {
			issues = append(issues, FieldIssue{Field: "toAccountId", Issue: "an adjustment applies to exactly one account"})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Message: "Transaction validation failed", Issues: issues}
	}

	var missing []Clarification
	switch in.Type {
	case TransactionTypeExpense:
		if in.FromAccountID == nil {
			missing = append(missing, Clarification{Field: "fromAccountId", Question: "Which account did you pay from?"})
		}
		if in.CategoryID == nil {
			missing = append(missing, Clarification{Field: "categoryId", Question: "What category does this belong to?"})
		}
	case TransactionTypeIncome:
		if in.ToAccountID == nil {
			missing = append(missing, Clarification{Field: "toAccountId", Question: "Which account received this income?"})
		}
	case TransactionTypeTransfer:
		if in.FromAccountID == nil {
			missing = append(missing, Clarification{Field: "fromAccountId", Question: "Which account are you transferring from?"})
		}
		if in.ToAccountID == nil {
			missing = append(missing, Clarification{Field: "toAccountId", Question: "Which account are you transferring to?"})
		}
	case TransactionTypeAdjustment:
		if in.FromAccountID == nil && in.ToAccountID == nil {
			missing = append(missing, Clarification{Field: "toAccountId", Question: "Which account does this adjustment apply to?"})
		}
	}

	if len(missing) > 0 {
		return &ClarificationError{Message: "Missing required fields to log transaction", Details: missing}
	}
	return nil
}

// TransactionFilter selects transactions. Nil or empty fields do not filter.
// Effective time is matched on the half-open range [From, To).
type TransactionFilter struct {
	Status      *TransactionStatus
	Type        *TransactionType
	From        *time.Time
	To          *time.Time
	CategoryIDs []string
	UserID      *string
	AccountID   *string
	Search      string
	Limit       int
	Offset      int
}

// Matches reports whether t satisfies every predicate of the filter.
// Limit and Offset are ignored.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.From != nil && t.EffectiveAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.EffectiveAt.Before(*f.To) {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		if t.CategoryID == nil || !containsString(f.CategoryIDs, *t.CategoryID) {
			return false
		}
	}
	if f.UserID != nil && t.UserID != *f.UserID {
		return false
	}
	if f.AccountID != nil {
		from := t.FromAccountID != nil && *t.FromAccountID == *f.AccountID
		to := t.ToAccountID != nil && *t.ToAccountID == *f.AccountID
		if !from && !to {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hit := false
		for _, field := range []*string{t.Description, t.Merchant, t.Note} {
			if field != nil && strings.Contains(strings.ToLower(*field), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// TransactionPage is one page of a transaction listing
type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int64          `json:"total"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

// TransactionResult is returned by transaction writes: the written
// transaction plus fresh balances and budget context.
type TransactionResult struct {
	Transaction  *Transaction        `json:"transaction"`
	Balances     []*AccountBalance   `json:"balances"`
	BudgetStatus []*BudgetStatusItem `json:"budgetStatus"`
	Warnings     []*WarningItem      `json:"warnings"`
}

// TransactionRepository lists are ordered newest effective time first.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	UpdateStatus(ctx context.Context, id string, status TransactionStatus) (*Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
	SumAmount(ctx context.Context, filter TransactionFilter) (int64, error)
	BalanceComponents(ctx context.Context, accountID string) (BalanceComponents, error)
}
