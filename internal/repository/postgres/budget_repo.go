package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	q querier
}

const budgetColumns = `id, month, category_id, limit_amount, scope_user_id, created_at, updated_at`

// Find retrieves the budget of one (month, category, scope) key
func (r *BudgetRepository) Find(ctx context.Context, month, categoryID string, scopeUserID *string) (*domain.Budget, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE month = $1 AND category_id = $2 AND scope_user_id IS NOT DISTINCT FROM $3`,
		month, categoryID, scopeUserID,
	)
	budget, err := scanBudget(row)
	if err != nil {
		return nil, notFoundOr(err, "Budget", month+"/"+categoryID)
	}
	return budget, nil
}

// Create creates a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO budgets (month, category_id, limit_amount, scope_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetColumns,
		budget.Month, budget.CategoryID, budget.LimitAmount, budget.ScopeUserID,
	)
	created, err := scanBudget(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("%w: budget %s/%s", domain.ErrAlreadyExists, budget.Month, budget.CategoryID)
		}
		return nil, err
	}
	return created, nil
}

// UpdateLimit replaces the limit of an existing budget
func (r *BudgetRepository) UpdateLimit(ctx context.Context, id int64, limitAmount int64) (*domain.Budget, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE budgets SET limit_amount = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+budgetColumns,
		id, limitAmount,
	)
	budget, err := scanBudget(row)
	if err != nil {
		return nil, notFoundOr(err, "Budget", strconv.FormatInt(id, 10))
	}
	return budget, nil
}

// ListByMonth retrieves the budgets of a month, household scope first per category
func (r *BudgetRepository) ListByMonth(ctx context.Context, month string) ([]*domain.Budget, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE month = $1
		ORDER BY category_id, scope_user_id NULLS FIRST`,
		month,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []*domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	if err := row.Scan(&b.ID, &b.Month, &b.CategoryID, &b.LimitAmount, &b.ScopeUserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// BudgetSnapshotRepository implements domain.BudgetSnapshotRepository using PostgreSQL
type BudgetSnapshotRepository struct {
	q querier
}

const snapshotColumns = `id, month, changed_category_id, changed_scope_user_id, previous_amount, new_amount, state, source, created_at`

// Create appends a snapshot
func (r *BudgetSnapshotRepository) Create(ctx context.Context, snapshot *domain.BudgetSnapshot) (*domain.BudgetSnapshot, error) {
	state := snapshot.State
	if state == nil {
		state = []domain.BudgetSnapshotEntry{}
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO budget_snapshots (month, changed_category_id, changed_scope_user_id, previous_amount, new_amount, state, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+snapshotColumns,
		snapshot.Month, snapshot.ChangedCategoryID, snapshot.ChangedScopeUserID,
		snapshot.PreviousAmount, snapshot.NewAmount, state, string(snapshot.Source),
	)
	return scanSnapshot(row)
}

// ListByMonth retrieves snapshots of a month, newest first. A zero limit returns all of them.
func (r *BudgetSnapshotRepository) ListByMonth(ctx context.Context, month string, limit, offset int) ([]*domain.BudgetSnapshot, error) {
	var pageLimit any
	if limit > 0 {
		pageLimit = limit
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM budget_snapshots
		WHERE month = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`,
		month, pageLimit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []*domain.BudgetSnapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// CountByMonth returns how many snapshots a month has
func (r *BudgetSnapshotRepository) CountByMonth(ctx context.Context, month string) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM budget_snapshots WHERE month = $1`, month).Scan(&count)
	return count, err
}

func scanSnapshot(row pgx.Row) (*domain.BudgetSnapshot, error) {
	var (
		s      domain.BudgetSnapshot
		source string
	)
	err := row.Scan(&s.ID, &s.Month, &s.ChangedCategoryID, &s.ChangedScopeUserID,
		&s.PreviousAmount, &s.NewAmount, &s.State, &source, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Source = domain.BudgetSource(source)
	return &s, nil
}
