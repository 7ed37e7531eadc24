package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory domain.Transactor. Each WithinTx call works on
// a private copy of the state that replaces the shared state only when fn
// succeeds, so a failed unit of work leaves nothing behind.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	// Now stamps created rows; defaults to time.Now
	Now func() time.Time

	// Injected failures for atomicity tests
	TransactionCreateErr error
	SnapshotCreateErr    error
}

type memoryState struct {
	users          map[string]*domain.User
	accounts       map[string]*domain.Account
	categories     map[string]*domain.Category
	transactions   map[string]*domain.Transaction
	budgets        map[int64]*domain.Budget
	snapshots      []*domain.BudgetSnapshot
	nextBudgetID   int64
	nextSnapshotID int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			users:        make(map[string]*domain.User),
			accounts:     make(map[string]*domain.Account),
			categories:   make(map[string]*domain.Category),
			transactions: make(map[string]*domain.Transaction),
			budgets:      make(map[int64]*domain.Budget),
		},
		Now: time.Now,
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		users:          make(map[string]*domain.User, len(s.users)),
		accounts:       make(map[string]*domain.Account, len(s.accounts)),
		categories:     make(map[string]*domain.Category, len(s.categories)),
		transactions:   make(map[string]*domain.Transaction, len(s.transactions)),
		budgets:        make(map[int64]*domain.Budget, len(s.budgets)),
		snapshots:      make([]*domain.BudgetSnapshot, len(s.snapshots)),
		nextBudgetID:   s.nextBudgetID,
		nextSnapshotID: s.nextSnapshotID,
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range s.categories {
		cat := *v
		c.categories[k] = &cat
	}
	for k, v := range s.transactions {
		t := *v
		c.transactions[k] = &t
	}
	for k, v := range s.budgets {
		b := *v
		c.budgets[k] = &b
	}
	for i, v := range s.snapshots {
		snap := *v
		c.snapshots[i] = &snap
	}
	return c
}

// WithinTx runs fn against a private copy of the state and commits it when fn returns nil
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(store domain.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := m.state.clone()
	if err := fn(&memoryTx{store: m, state: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// memoryTx implements domain.Store over one working copy
type memoryTx struct {
	store *MemoryStore
	state *memoryState
}

func (t *memoryTx) Users() domain.UserRepository {
	return memoryUsers{t}
}

func (t *memoryTx) Accounts() domain.AccountRepository {
	return memoryAccounts{t}
}

func (t *memoryTx) Categories() domain.CategoryRepository {
	return memoryCategories{t}
}

func (t *memoryTx) Transactions() domain.TransactionRepository {
	return memoryTransactions{t}
}

func (t *memoryTx) Budgets() domain.BudgetRepository {
	return memoryBudgets{t}
}

func (t *memoryTx) BudgetSnapshots() domain.BudgetSnapshotRepository {
	return memorySnapshots{t}
}

// Users

type memoryUsers struct{ tx *memoryTx }

func (r memoryUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.tx.state.users[user.ID]; ok {
		return nil, fmt.Errorf("%w: user '%s'", domain.ErrAlreadyExists, user.ID)
	}
	u := *user
	u.CreatedAt = r.tx.store.Now()
	r.tx.state.users[u.ID] = &u
	out := u
	return &out, nil
}

func (r memoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.tx.state.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id)
	}
	out := *u
	return &out, nil
}

func (r memoryUsers) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.tx.state.users))
	for _, u := range r.tx.state.users {
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// Accounts

type memoryAccounts struct{ tx *memoryTx }

func (r memoryAccounts) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if _, ok := r.tx.state.accounts[account.ID]; ok {
		return nil, fmt.Errorf("%w: account '%s'", domain.ErrAlreadyExists, account.ID)
	}
	a := *account
	a.CreatedAt = r.tx.store.Now()
	r.tx.state.accounts[a.ID] = &a
	out := a
	return &out, nil
}

func (r memoryAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	a, ok := r.tx.state.accounts[id]
	if !ok {
		return nil, domain.NewNotFoundError("Account", id)
	}
	out := *a
	return &out, nil
}

func (r memoryAccounts) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, a := range r.tx.state.accounts {
		if filter.ActiveOnly && !a.IsActive {
			continue
		}
		if filter.OwnerID != nil && (a.OwnerID == nil || *a.OwnerID != *filter.OwnerID) {
			continue
		}
		if len(filter.IDs) > 0 && !contains(filter.IDs, a.ID) {
			continue
		}
		out := *a
		accounts = append(accounts, &out)
	}
	sort.Slice(accounts, func(i, j int) bool {
		oi, oj := accounts[i].OwnerID, accounts[j].OwnerID
		if (oi == nil) != (oj == nil) {
			return oi == nil
		}
		if oi != nil && *oi != *oj {
			return *oi < *oj
		}
		if accounts[i].DisplayName != accounts[j].DisplayName {
			return accounts[i].DisplayName < accounts[j].DisplayName
		}
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

// Categories

type memoryCategories struct{ tx *memoryTx }

func (r memoryCategories) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if _, ok := r.tx.state.categories[category.ID]; ok {
		return nil, fmt.Errorf("%w: category '%s'", domain.ErrAlreadyExists, category.ID)
	}
	c := *category
	r.tx.state.categories[c.ID] = &c
	out := c
	return &out, nil
}

func (r memoryCategories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, ok := r.tx.state.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError("Category", id)
	}
	out := *c
	return &out, nil
}

func (r memoryCategories) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, c := range r.tx.state.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out := *c
		categories = append(categories, &out)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].DisplayName != categories[j].DisplayName {
			return categories[i].DisplayName < categories[j].DisplayName
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r memoryCategories) SetActive(ctx context.Context, id string, active bool) (*domain.Category, error) {
	c, ok := r.tx.state.categories[id]
	if !ok {
		return nil, domain.NewNotFoundError("Category", id)
	}
	c.IsActive = active
	out := *c
	return &out, nil
}

// Transactions

type memoryTransactions struct{ tx *memoryTx }

func (r memoryTransactions) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if r.tx.store.TransactionCreateErr != nil {
		return nil, r.tx.store.TransactionCreateErr
	}
	t := *transaction
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, ok := r.tx.state.transactions[t.ID]; ok {
		return nil, fmt.Errorf("%w: transaction '%s'", domain.ErrAlreadyExists, t.ID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.tx.store.Now()
	}
	r.tx.state.transactions[t.ID] = &t
	out := t
	return &out, nil
}

func (r memoryTransactions) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	t, ok := r.tx.state.transactions[id]
	if !ok {
		return nil, domain.NewNotFoundError("Transaction", id)
	}
	out := *t
	return &out, nil
}

func (r memoryTransactions) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) (*domain.Transaction, error) {
	t, ok := r.tx.state.transactions[id]
	if !ok {
		return nil, domain.NewNotFoundError("Transaction", id)
	}
	t.Status = status
	out := *t
	return &out, nil
}

func (r memoryTransactions) matching(filter domain.TransactionFilter) []*domain.Transaction {
	var matched []*domain.Transaction
	for _, t := range r.tx.state.transactions {
		if filter.Matches(t) {
			out := *t
			matched = append(matched, &out)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.EffectiveAt.Equal(b.EffectiveAt) {
			return a.EffectiveAt.After(b.EffectiveAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return matched
}

func (r memoryTransactions) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	matched := r.matching(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*domain.Transaction{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r memoryTransactions) Count(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r memoryTransactions) SumAmount(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	var sum int64
	for _, t := range r.tx.state.transactions {
		if filter.Matches(t) {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (r memoryTransactions) BalanceComponents(ctx context.Context, accountID string) (domain.BalanceComponents, error) {
	all := make([]*domain.Transaction, 0, len(r.tx.state.transactions))
	for _, t := range r.tx.state.transactions {
		all = append(all, t)
	}
	return domain.BalanceComponentsFor(accountID, all), nil
}

// Budgets

type memoryBudgets struct{ tx *memoryTx }

func (r memoryBudgets) Find(ctx context.Context, month, categoryID string, scopeUserID *string) (*domain.Budget, error) {
	for _, b := range r.tx.state.budgets {
		if b.Month == month && b.CategoryID == categoryID && b.SameScope(scopeUserID) {
			out := *b
			return &out, nil
		}
	}
	return nil, domain.NewNotFoundError("Budget", month+"/"+categoryID)
}

func (r memoryBudgets) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if existing, _ := r.Find(ctx, budget.Month, budget.CategoryID, budget.ScopeUserID); existing != nil {
		return nil, fmt.Errorf("%w: budget %s/%s", domain.ErrAlreadyExists, budget.Month, budget.CategoryID)
	}
	r.tx.state.nextBudgetID++
	b := *budget
	b.ID = r.tx.state.nextBudgetID
	b.CreatedAt = r.tx.store.Now()
	b.UpdatedAt = b.CreatedAt
	r.tx.state.budgets[b.ID] = &b
	out := b
	return &out, nil
}

func (r memoryBudgets) UpdateLimit(ctx context.Context, id int64, limitAmount int64) (*domain.Budget, error) {
	b, ok := r.tx.state.budgets[id]
	if !ok {
		return nil, domain.NewNotFoundError("Budget", fmt.Sprint(id))
	}
	b.LimitAmount = limitAmount
	b.UpdatedAt = r.tx.store.Now()
	out := *b
	return &out, nil
}

func (r memoryBudgets) ListByMonth(ctx context.Context, month string) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, b := range r.tx.state.budgets {
		if b.Month == month {
			out := *b
			budgets = append(budgets, &out)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		a, b := budgets[i], budgets[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if (a.ScopeUserID == nil) != (b.ScopeUserID == nil) {
			return a.ScopeUserID == nil
		}
		if a.ScopeUserID != nil && *a.ScopeUserID != *b.ScopeUserID {
			return *a.ScopeUserID < *b.ScopeUserID
		}
		return a.ID < b.ID
	})
	return budgets, nil
}

// Snapshots

type memorySnapshots struct{ tx *memoryTx }

func (r memorySnapshots) Create(ctx context.Context, snapshot *domain.BudgetSnapshot) (*domain.BudgetSnapshot, error) {
	if r.tx.store.SnapshotCreateErr != nil {
		return nil, r.tx.store.SnapshotCreateErr
	}
	r.tx.state.nextSnapshotID++
	s := *snapshot
	s.ID = r.tx.state.nextSnapshotID
	s.CreatedAt = r.tx.store.Now()
	r.tx.state.snapshots = append(r.tx.state.snapshots, &s)
	out := s
	return &out, nil
}

func (r memorySnapshots) ListByMonth(ctx context.Context, month string, limit, offset int) ([]*domain.BudgetSnapshot, error) {
	var snapshots []*domain.BudgetSnapshot
	for i := len(r.tx.state.snapshots) - 1; i >= 0; i-- {
		s := r.tx.state.snapshots[i]
		if s.Month == month {
			out := *s
			snapshots = append(snapshots, &out)
		}
	}
	if offset >= len(snapshots) {
		return []*domain.BudgetSnapshot{}, nil
	}
	snapshots = snapshots[offset:]
	if limit > 0 && limit < len(snapshots) {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func (r memorySnapshots) CountByMonth(ctx context.Context, month string) (int64, error) {
	var n int64
	for _, s := range r.tx.state.snapshots {
		if s.Month == month {
			n++
		}
	}
	return n, nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
