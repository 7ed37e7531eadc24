package testutil

import (
	"context"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/google/uuid"
)

// Jakarta is the household zone used throughout tests (UTC+7, no DST)
var Jakarta = time.FixedZone("WIB", 7*60*60)

// StrPtr returns a pointer to s
func StrPtr(s string) *string { return &s }

// AddUser inserts a user directly into the committed state
func (m *MemoryStore) AddUser(id, name string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{ID: id, DisplayName: name, CreatedAt: m.Now()}
	m.state.users[id] = u
	out := *u
	return &out
}

// AddAccount inserts an active account; owner may be empty for a shared account
func (m *MemoryStore) AddAccount(id, name string, typ domain.AccountType, owner string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &domain.Account{ID: id, DisplayName: name, Type: typ, Currency: "IDR", IsActive: true, CreatedAt: m.Now()}
	if owner != "" {
		a.OwnerID = StrPtr(owner)
	}
	m.state.accounts[id] = a
	out := *a
	return &out
}

// AddCategory inserts an active category; parent may be empty for a parent category
func (m *MemoryStore) AddCategory(id, name, parent string) *domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &domain.Category{ID: id, DisplayName: name, IsActive: true}
	if parent != "" {
		c.ParentID = StrPtr(parent)
	}
	m.state.categories[id] = c
	out := *c
	return &out
}

// AddTransaction inserts a transaction as-is, filling id, status and timestamps when empty
func (m *MemoryStore) AddTransaction(t domain.Transaction) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TransactionStatusPosted
	}
	if t.Currency == "" {
		t.Currency = "IDR"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.Now()
	}
	m.state.transactions[t.ID] = &t
	out := t
	return &out
}

// AddBudget inserts a budget row without recording a snapshot
func (m *MemoryStore) AddBudget(month, categoryID string, limit int64, scope *string) *domain.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextBudgetID++
	b := &domain.Budget{
		ID: m.state.nextBudgetID, Month: month, CategoryID: categoryID,
		LimitAmount: limit, ScopeUserID: scope, CreatedAt: m.Now(), UpdatedAt: m.Now(),
	}
	m.state.budgets[b.ID] = b
	out := *b
	return &out
}

// SeedHousehold loads a small household: two users, shared and personal
// accounts, and a food/transport/bills category tree.
func (m *MemoryStore) SeedHousehold() {
	m.AddUser("alice", "Alice")
	m.AddUser("bob", "Bob")

	m.AddAccount("cash", "Cash", domain.AccountTypeCash, "")
	m.AddAccount("bca", "BCA", domain.AccountTypeBank, "alice")
	m.AddAccount("gopay", "GoPay", domain.AccountTypeEwallet, "bob")

	m.AddCategory("food", "Food", "")
	m.AddCategory("groceries", "Groceries", "food")
	m.AddCategory("coffee", "Coffee", "food")
	m.AddCategory("transport", "Transport", "")
	m.AddCategory("fuel", "Fuel", "transport")
	m.AddCategory("bills", "Bills", "")
	m.AddCategory("salary", "Salary", "")
}

// Transactions returns every committed transaction, newest effective time first
func (m *MemoryStore) Transactions() []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{store: m, state: m.state}
	out, _ := memoryTransactions{tx}.List(context.Background(), domain.TransactionFilter{})
	return out
}

// Budgets returns every committed budget of a month
func (m *MemoryStore) Budgets(month string) []*domain.Budget {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{store: m, state: m.state}
	out, _ := memoryBudgets{tx}.ListByMonth(context.Background(), month)
	return out
}

// Snapshots returns every committed snapshot of a month, newest first
func (m *MemoryStore) Snapshots(month string) []*domain.BudgetSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{store: m, state: m.state}
	out, _ := memorySnapshots{tx}.ListByMonth(context.Background(), month, 0, 0)
	return out
}

// Date returns a Jakarta-local instant
func Date(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, Jakarta)
}
