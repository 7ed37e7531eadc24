package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
	"github.com/rs/zerolog/log"
)

// BudgetService maintains monthly budgets, their change history and their
// utilization.
type BudgetService struct {
	tx    domain.Transactor
	clock util.Clock
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(tx domain.Transactor, clock util.Clock) *BudgetService {
	return &BudgetService{tx: tx, clock: clock}
}

// UpsertBudgetInput sets one budget limit
type UpsertBudgetInput struct {
	Month       string
	CategoryID  string
	LimitAmount int64
	ScopeUserID *string
	Source      domain.BudgetSource
}

// BudgetChange is one household-wide limit inside a bulk upsert
type BudgetChange struct {
	CategoryID  string
	LimitAmount int64
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Upsert creates or updates the budget with exactly this (month, category,
// scope) and always records a snapshot, even when the amount is unchanged.
func (s *BudgetService) Upsert(ctx context.Context, input UpsertBudgetInput) (*domain.Budget, error) {
	if err := util.ValidateMonth(input.Month); err != nil {
		return nil, invalidMonth(err)
	}
	if input.LimitAmount <= 0 {
		return nil, invalidLimit("limitAmount")
	}
	if input.Source == "" {
		input.Source = domain.BudgetSourceAPI
	}

	var budget *domain.Budget
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		if err := requireParentCategory(ctx, store, input.CategoryID); err != nil {
			return err
		}
		if input.ScopeUserID != nil {
			if _, err := store.Users().GetByID(ctx, *input.ScopeUserID); err != nil {
				return err
			}
		}

		existing, err := findBudget(ctx, store, input.Month, input.CategoryID, input.ScopeUserID)
		if err != nil {
			return err
		}
		budget, err = s.apply(ctx, store, existing, input.Month, input.CategoryID, input.LimitAmount, input.ScopeUserID, input.Source)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("month", input.Month).Str("category_id", input.CategoryID).Int64("limit", input.LimitAmount).Str("source", string(input.Source)).Msg("Budget upserted")
	return budget, nil
}

// BulkUpsert applies household-wide limits in order. Unchanged amounts are
// skipped without a snapshot; every real change records its own snapshot of
// the state right after it.
func (s *BudgetService) BulkUpsert(ctx context.Context, month string, changes []BudgetChange, source domain.BudgetSource) ([]*domain.Budget, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}
	for _, c := range changes {
		if c.LimitAmount <= 0 {
			return nil, invalidLimit("limits." + c.CategoryID)
		}
	}
	if source == "" {
		source = domain.BudgetSourceDashboard
	}

	results := make([]*domain.Budget, 0, len(changes))
	changed := 0
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		for _, c := range changes {
			if err := requireParentCategory(ctx, store, c.CategoryID); err != nil {
				return err
			}
		}
		for _, c := range changes {
			existing, err := findBudget(ctx, store, month, c.CategoryID, nil)
			if err != nil {
				return err
			}
			if existing != nil && existing.LimitAmount == c.LimitAmount {
				results = append(results, existing)
				continue
			}
			budget, err := s.apply(ctx, store, existing, month, c.CategoryID, c.LimitAmount, nil, source)
			if err != nil {
				return err
			}
			results = append(results, budget)
			changed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("month", month).Int("requested", len(changes)).Int("changed", changed).Str("source", string(source)).Msg("Budgets bulk upserted")
	return results, nil
}

// apply writes the budget row and its snapshot inside the caller's unit of work
func (s *BudgetService) apply(ctx context.Context, store domain.Store, existing *domain.Budget, month, categoryID string, limit int64, scope *string, source domain.BudgetSource) (*domain.Budget, error) {
	var (
		budget   *domain.Budget
		previous *int64
		err      error
	)
	if existing != nil {
		prev := existing.LimitAmount
		previous = &prev
		budget, err = store.Budgets().UpdateLimit(ctx, existing.ID, limit)
	} else {
		budget, err = store.Budgets().Create(ctx, &domain.Budget{
			Month:       month,
			CategoryID:  categoryID,
			LimitAmount: limit,
			ScopeUserID: scope,
		})
	}
	if err != nil {
		return nil, err
	}

	state, err := store.Budgets().ListByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	_, err = store.BudgetSnapshots().Create(ctx, &domain.BudgetSnapshot{
		Month:              month,
		ChangedCategoryID:  categoryID,
		ChangedScopeUserID: scope,
		PreviousAmount:     previous,
		NewAmount:          limit,
		State:              domain.NewBudgetSnapshotState(state),
		Source:             source,
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// List returns the budgets of a month
func (s *BudgetService) List(ctx context.Context, month string) ([]*domain.Budget, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}
	var budgets []*domain.Budget
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		budgets, err = store.Budgets().ListByMonth(ctx, month)
		return err
	})
	return budgets, err
}

// Status computes utilization and warnings for every budget of a month
func (s *BudgetService) Status(ctx context.Context, month string) (*domain.BudgetStatusReport, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}
	var report *domain.BudgetStatusReport
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		report, err = s.statusWithin(ctx, store, month)
		return err
	})
	return report, err
}

// StatusForCategories narrows the month status to the budgets whose parent
// category covers one of categoryIDs. When nothing matches, the full status
// is returned with Fallback set.
func (s *BudgetService) StatusForCategories(ctx context.Context, month string, categoryIDs []string) (*domain.BudgetStatusReport, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}
	var report *domain.BudgetStatusReport
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		report, err = s.statusForCategoriesWithin(ctx, store, month, categoryIDs)
		return err
	})
	return report, err
}

// History lists the snapshots of a month, newest first
func (s *BudgetService) History(ctx context.Context, month string, limit, offset int) (*domain.BudgetHistoryPage, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 1 || limit > maxHistoryLimit {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
	}
	if offset < 0 {
		return nil, domain.NewValidationError("offset", "offset must not be negative")
	}

	page := &domain.BudgetHistoryPage{Month: month, Limit: limit, Offset: offset}
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		if page.Snapshots, err = store.BudgetSnapshots().ListByMonth(ctx, month, limit, offset); err != nil {
			return err
		}
		page.Total, err = store.BudgetSnapshots().CountByMonth(ctx, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BudgetService) statusWithin(ctx context.Context, store domain.Store, month string) (*domain.BudgetStatusReport, error) {
	start, end, err := util.MonthRange(month, s.clock.Location())
	if err != nil {
		return nil, invalidMonth(err)
	}
	hierarchy, err := loadHierarchy(ctx, store)
	if err != nil {
		return nil, err
	}
	budgets, err := store.Budgets().ListByMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	report := &domain.BudgetStatusReport{
		Month:    month,
		Budgets:  make([]*domain.BudgetStatusItem, 0, len(budgets)),
		Warnings: []*domain.WarningItem{},
	}
	posted := domain.TransactionStatusPosted
	expense := domain.TransactionTypeExpense

	for _, b := range budgets {
		used, err := store.Transactions().SumAmount(ctx, domain.TransactionFilter{
			Status:      &posted,
			Type:        &expense,
			From:        &start,
			To:          &end,
			CategoryIDs: hierarchy.FamilyOf(b.CategoryID),
			UserID:      b.ScopeUserID,
		})
		if err != nil {
			return nil, err
		}

		name := hierarchy.Name(b.CategoryID)
		eval := domain.EvaluateBudget(b.LimitAmount, used)
		item := &domain.BudgetStatusItem{
			BudgetID:     b.ID,
			CategoryID:   b.CategoryID,
			CategoryName: name,
			ScopeUserID:  b.ScopeUserID,
			Month:        month,
			Limit:        b.LimitAmount,
			Used:         used,
			Remaining:    b.LimitAmount - used,
			Percent:      eval.Percent,
			Severity:     eval.Severity,
		}
		if eval.Severity != nil {
			msg := domain.WarningMessage(name, b.LimitAmount, used, *eval.Severity)
			item.Warning = &msg
			report.Warnings = append(report.Warnings, &domain.WarningItem{
				Type:        "budget",
				Severity:    *eval.Severity,
				CategoryID:  b.CategoryID,
				ScopeUserID: b.ScopeUserID,
				Message:     msg,
			})
		}
		report.Budgets = append(report.Budgets, item)
	}
	return report, nil
}

func (s *BudgetService) statusForCategoriesWithin(ctx context.Context, store domain.Store, month string, categoryIDs []string) (*domain.BudgetStatusReport, error) {
	hierarchy, err := loadHierarchy(ctx, store)
	if err != nil {
		return nil, err
	}
	parents := make(map[string]bool)
	for _, id := range categoryIDs {
		if parent, ok := hierarchy.ResolveToParent(id); ok {
			parents[parent] = true
		}
	}

	full, err := s.statusWithin(ctx, store, month)
	if err != nil {
		return nil, err
	}

	filtered := &domain.BudgetStatusReport{
		Month:    month,
		Budgets:  []*domain.BudgetStatusItem{},
		Warnings: []*domain.WarningItem{},
	}
	for _, item := range full.Budgets {
		if parents[item.CategoryID] {
			filtered.Budgets = append(filtered.Budgets, item)
		}
	}
	for _, w := range full.Warnings {
		if parents[w.CategoryID] {
			filtered.Warnings = append(filtered.Warnings, w)
		}
	}

	if len(filtered.Budgets) == 0 && len(filtered.Warnings) == 0 {
		full.Fallback = true
		return full, nil
	}
	return filtered, nil
}

// requireParentCategory enforces that budgets only target top-level categories
func requireParentCategory(ctx context.Context, store domain.Store, categoryID string) error {
	category, err := store.Categories().GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if !category.IsParent() {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Budgets must target a parent category. '%s' is a subcategory of '%s'.", category.ID, *category.ParentID),
			Issues:  []domain.FieldIssue{{Field: "categoryId", Issue: "category is not a parent category"}},
			Cause:   domain.ErrNotParentCategory,
		}
	}
	return nil
}

// findBudget returns nil without error when no budget matches
func findBudget(ctx context.Context, store domain.Store, month, categoryID string, scope *string) (*domain.Budget, error) {
	budget, err := store.Budgets().Find(ctx, month, categoryID, scope)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return budget, err
}

func invalidMonth(err error) error {
	return &domain.ValidationError{
		Message: err.Error(),
		Issues:  []domain.FieldIssue{{Field: "month", Issue: "month must be in YYYY-MM format"}},
		Cause:   domain.ErrInvalidMonth,
	}
}

func invalidLimit(field string) error {
	return &domain.ValidationError{
		Message: "Invalid budget limit",
		Issues:  []domain.FieldIssue{{Field: field, Issue: "limit must be a positive integer"}},
		Cause:   domain.ErrInvalidLimit,
	}
}
