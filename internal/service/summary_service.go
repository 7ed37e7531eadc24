package service

import (
	"context"
	"sort"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/util"
)

// SummaryService builds monthly reports
type SummaryService struct {
	tx            domain.Transactor
	clock         util.Clock
	budgetService *BudgetService
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(tx domain.Transactor, clock util.Clock, budgetService *BudgetService) *SummaryService {
	return &SummaryService{
		tx:            tx,
		clock:         clock,
		budgetService: budgetService,
	}
}

// Monthly returns the report of one month, optionally restricted to one
// user's transactions. The budget section always covers the whole household.
func (s *SummaryService) Monthly(ctx context.Context, month string, userID *string) (*domain.MonthlySummary, error) {
	if err := util.ValidateMonth(month); err != nil {
		return nil, invalidMonth(err)
	}

	var summary *domain.MonthlySummary
	err := s.tx.WithinTx(ctx, func(store domain.Store) error {
		var err error
		summary, err = s.monthlyWithin(ctx, store, month, userID)
		return err
	})
	return summary, err
}

// CurrentMonth returns the month key of the clock's today
func (s *SummaryService) CurrentMonth() string {
	return util.MonthOf(s.clock.Now(), s.clock.Location())
}

func (s *SummaryService) monthlyWithin(ctx context.Context, store domain.Store, month string, userID *string) (*domain.MonthlySummary, error) {
	loc := s.clock.Location()
	start, end, err := util.MonthRange(month, loc)
	if err != nil {
		return nil, invalidMonth(err)
	}
	if userID != nil {
		if _, err := store.Users().GetByID(ctx, *userID); err != nil {
			return nil, err
		}
	}

	posted := domain.TransactionStatusPosted
	transactions, err := store.Transactions().List(ctx, domain.TransactionFilter{
		Status: &posted,
		From:   &start,
		To:     &end,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}
	hierarchy, err := loadHierarchy(ctx, store)
	if err != nil {
		return nil, err
	}
	users, err := store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.DisplayName
	}

	summary := &domain.MonthlySummary{Month: month, UserID: userID}
	byCategory := make(map[string]int64)
	byUser := make(map[string]int64)
	byDay := make(map[string]int64)
	byMerchant := make(map[string]*domain.MerchantSpend)

	for _, t := range transactions {
		switch t.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome += t.Amount
			continue
		case domain.TransactionTypeExpense:
		default:
			continue
		}

		summary.TotalExpenses += t.Amount
		byUser[t.UserID] += t.Amount
		byDay[util.DayOf(t.EffectiveAt, loc)] += t.Amount
		if t.CategoryID != nil {
			byCategory[*t.CategoryID] += t.Amount
		}
		if t.Merchant != nil {
			m, ok := byMerchant[*t.Merchant]
			if !ok {
				m = &domain.MerchantSpend{Merchant: *t.Merchant}
				byMerchant[*t.Merchant] = m
			}
			m.Total += t.Amount
			m.Count++
		}
	}
	summary.Net = summary.TotalIncome - summary.TotalExpenses

	summary.ByCategory = make([]*domain.CategorySpend, 0, len(byCategory))
	for id, total := range byCategory {
		summary.ByCategory = append(summary.ByCategory, &domain.CategorySpend{
			CategoryID:   id,
			CategoryName: hierarchy.Name(id),
			Total:        total,
		})
	}
	sortCategorySpend(summary.ByCategory)
	summary.ByParentCategory = rollUpToParents(hierarchy, summary.ByCategory)

	summary.ByUser = make([]*domain.UserSpend, 0, len(byUser))
	for id, total := range byUser {
		name, ok := userNames[id]
		if !ok {
			name = id
		}
		summary.ByUser = append(summary.ByUser, &domain.UserSpend{UserID: id, DisplayName: name, Total: total})
	}
	sort.Slice(summary.ByUser, func(i, j int) bool {
		a, b := summary.ByUser[i], summary.ByUser[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.UserID < b.UserID
	})

	summary.DailyTotals = make([]*domain.DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		summary.DailyTotals = append(summary.DailyTotals, &domain.DailyTotal{Date: day, Total: total})
	}
	sort.Slice(summary.DailyTotals, func(i, j int) bool {
		return summary.DailyTotals[i].Date < summary.DailyTotals[j].Date
	})

	summary.TopMerchants = make([]*domain.MerchantSpend, 0, len(byMerchant))
	for _, m := range byMerchant {
		summary.TopMerchants = append(summary.TopMerchants, m)
	}
	sort.Slice(summary.TopMerchants, func(i, j int) bool {
		a, b := summary.TopMerchants[i], summary.TopMerchants[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Merchant < b.Merchant
	})
	if len(summary.TopMerchants) > domain.MaxTopMerchants {
		summary.TopMerchants = summary.TopMerchants[:domain.MaxTopMerchants]
	}

	status, err := s.budgetService.statusWithin(ctx, store, month)
	if err != nil {
		return nil, err
	}
	summary.BudgetStatus = status.Budgets
	summary.Warnings = status.Warnings

	return summary, nil
}

// rollUpToParents folds child spend into parent buckets. A category without
// a known parent is its own bucket.
func rollUpToParents(hierarchy *domain.CategoryHierarchy, byCategory []*domain.CategorySpend) []*domain.ParentCategorySpend {
	buckets := make(map[string]*domain.ParentCategorySpend)
	var order []*domain.ParentCategorySpend

	for _, item := range byCategory {
		parentID := item.CategoryID
		isChild := false
		if c, ok := hierarchy.Get(item.CategoryID); ok && c.ParentID != nil {
			parentID = *c.ParentID
			isChild = true
		}

		bucket, ok := buckets[parentID]
		if !ok {
			bucket = &domain.ParentCategorySpend{
				CategoryID:   parentID,
				CategoryName: hierarchy.Name(parentID),
				Children:     []*domain.CategorySpend{},
			}
			buckets[parentID] = bucket
			order = append(order, bucket)
		}
		bucket.Total += item.Total
		if isChild {
			bucket.Children = append(bucket.Children, item)
		}
	}

	for _, bucket := range order {
		sortCategorySpend(bucket.Children)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Total != order[j].Total {
			return order[i].Total > order[j].Total
		}
		return order[i].CategoryID < order[j].CategoryID
	})
	if order == nil {
		order = []*domain.ParentCategorySpend{}
	}
	return order
}

func sortCategorySpend(items []*domain.CategorySpend) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total != items[j].Total {
			return items[i].Total > items[j].Total
		}
		return items[i].CategoryID < items[j].CategoryID
	})
}
