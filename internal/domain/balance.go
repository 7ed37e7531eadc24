package domain

// BalanceComponents are the three posted sums an account balance is made of
type BalanceComponents struct {
	// Credits: income, transfer and adjustment amounts received by the account
	Credits int64
	// Debits: expense and transfer amounts sent from the account
	Debits int64
	// AdjustmentDebits: negative adjustments, stored as absolute values
	AdjustmentDebits int64
}

// Balance returns credits minus both kinds of debits
func (b BalanceComponents) Balance() int64 {
	return b.Credits - b.Debits - b.AdjustmentDebits
}

// Add folds one transaction into the components of accountID. Voided
// transactions are ignored.
func (b BalanceComponents) Add(accountID string, t *Transaction) BalanceComponents {
	if t.Status != TransactionStatusPosted {
		return b
	}
	if t.ToAccountID != nil && *t.ToAccountID == accountID {
		switch t.Type {
		case TransactionTypeIncome, TransactionTypeTransfer, TransactionTypeAdjustment:
			b.Credits += t.Amount
		}
	}
	if t.FromAccountID != nil && *t.FromAccountID == accountID {
		switch t.Type {
		case TransactionTypeExpense, TransactionTypeTransfer:
			b.Debits += t.Amount
		case TransactionTypeAdjustment:
			b.AdjustmentDebits += t.Amount
		}
	}
	return b
}

// BalanceComponentsFor computes the components of accountID over a full
// transaction history.
func BalanceComponentsFor(accountID string, transactions []*Transaction) BalanceComponents {
	var b BalanceComponents
	for _, t := range transactions {
		b = b.Add(accountID, t)
	}
	return b
}
