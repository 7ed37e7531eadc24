package domain

// CategorySpend is the expense total of one category
type CategorySpend struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        int64  `json:"total"`
}

// ParentCategorySpend rolls child spend into its parent bucket
type ParentCategorySpend struct {
	CategoryID   string           `json:"categoryId"`
	CategoryName string           `json:"categoryName"`
	Total        int64            `json:"total"`
	Children     []*CategorySpend `json:"children"`
}

// UserSpend is the expense total of one user
type UserSpend struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Total       int64  `json:"total"`
}

// DailyTotal is the expense total of one local calendar day (YYYY-MM-DD)
type DailyTotal struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// MerchantSpend is the expense total and count of one merchant
type MerchantSpend struct {
	Merchant string `json:"merchant"`
	Total    int64  `json:"total"`
	Count    int64  `json:"count"`
}

// MaxTopMerchants caps the merchant ranking of a summary
const MaxTopMerchants = 10

// MonthlySummary is the full report of one month
type MonthlySummary struct {
	Month            string                 `json:"month"`
	UserID           *string                `json:"userId,omitempty"`
	TotalExpenses    int64                  `json:"totalExpenses"`
	TotalIncome      int64                  `json:"totalIncome"`
	Net              int64                  `json:"net"`
	ByCategory       []*CategorySpend       `json:"byCategory"`
	ByParentCategory []*ParentCategorySpend `json:"byParentCategory"`
	ByUser           []*UserSpend           `json:"byUser"`
	DailyTotals      []*DailyTotal          `json:"dailyTotals"`
	TopMerchants     []*MerchantSpend       `json:"topMerchants"`
	BudgetStatus     []*BudgetStatusItem    `json:"budgetStatus"`
	Warnings         []*WarningItem         `json:"warnings"`
}
