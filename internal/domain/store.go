package domain

import "context"

// Store gives access to every repository bound to one unit of work
type Store interface {
	Users() UserRepository
	Accounts() AccountRepository
	Categories() CategoryRepository
	Transactions() TransactionRepository
	Budgets() BudgetRepository
	BudgetSnapshots() BudgetSnapshotRepository
}

// Transactor runs fn inside a single store transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(store Store) error) error
}
