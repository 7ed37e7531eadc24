package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit on a parent category. A nil ScopeUserID
// is household-wide; otherwise only that user's spend counts.
type Budget struct {
	ID          int64     `json:"id"`
	Month       string    `json:"month"`
	CategoryID  string    `json:"categoryId"`
	LimitAmount int64     `json:"limitAmount"`
	ScopeUserID *string   `json:"scopeUserId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SameScope reports whether the budget has exactly the given scope; a nil
// scope only matches a nil scope.
func (b *Budget) SameScope(scopeUserID *string) bool {
	if b.ScopeUserID == nil || scopeUserID == nil {
		return b.ScopeUserID == nil && scopeUserID == nil
	}
	return *b.ScopeUserID == *scopeUserID
}

type BudgetSource string

const (
	BudgetSourceAPI       BudgetSource = "api"
	BudgetSourceDashboard BudgetSource = "dashboard"
	BudgetSourceCLI       BudgetSource = "cli"
)

// BudgetSnapshotEntry is one budget row inside a snapshot
type BudgetSnapshotEntry struct {
	CategoryID  string  `json:"categoryId"`
	ScopeUserID *string `json:"scopeUserId"`
	LimitAmount int64   `json:"limitAmount"`
}

// BudgetSnapshot is an append-only record of the full budget state of a
// month right after one budget changed.
type BudgetSnapshot struct {
	ID                 int64                 `json:"id"`
	Month              string                `json:"month"`
	ChangedCategoryID  string                `json:"changedCategoryId"`
	ChangedScopeUserID *string               `json:"changedScopeUserId,omitempty"`
	PreviousAmount     *int64                `json:"previousAmount"`
	NewAmount          int64                 `json:"newAmount"`
	State              []BudgetSnapshotEntry `json:"state"`
	Source             BudgetSource          `json:"source"`
	CreatedAt          time.Time             `json:"createdAt"`
}

// NewBudgetSnapshotState captures the given budgets in order
func NewBudgetSnapshotState(budgets []*Budget) []BudgetSnapshotEntry {
	state := make([]BudgetSnapshotEntry, len(budgets))
	for i, b := range budgets {
		state[i] = BudgetSnapshotEntry{
			CategoryID:  b.CategoryID,
			ScopeUserID: b.ScopeUserID,
			LimitAmount: b.LimitAmount,
		}
	}
	return state
}

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// BudgetStatusItem is the utilization of one budget
type BudgetStatusItem struct {
	BudgetID     int64     `json:"budgetId"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	ScopeUserID  *string   `json:"scopeUserId,omitempty"`
	Month        string    `json:"month"`
	Limit        int64     `json:"limit"`
	Used         int64     `json:"used"`
	Remaining    int64     `json:"remaining"`
	Percent      float64   `json:"percent"`
	Warning      *string   `json:"warning,omitempty"`
	Severity     *Severity `json:"severity,omitempty"`
}

// WarningItem is a budget warning surfaced to the caller
type WarningItem struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	CategoryID  string   `json:"categoryId"`
	ScopeUserID *string  `json:"scopeUserId,omitempty"`
	Message     string   `json:"message"`
}

// BudgetStatusReport is the status of a month's budgets. Fallback is set when
// a category-restricted request matched nothing and the full status was
// returned instead.
type BudgetStatusReport struct {
	Month    string              `json:"month"`
	Budgets  []*BudgetStatusItem `json:"budgets"`
	Warnings []*WarningItem      `json:"warnings"`
	Fallback bool                `json:"fallback,omitempty"`
}

// BudgetHistoryPage is one page of snapshots, newest first
type BudgetHistoryPage struct {
	Month     string            `json:"month"`
	Snapshots []*BudgetSnapshot `json:"snapshots"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// BudgetEvaluation is the computed utilization of a limit
type BudgetEvaluation struct {
	Percent  float64
	Severity *Severity
}

// EvaluateBudget computes used/limit rounded to 4 decimal places and grades
// it: at or above 100% is an error, at or above 80% a warning. Thresholds are
// compared on exact integers so rounding never moves a boundary. A
// non-positive limit yields 0 with no severity.
func EvaluateBudget(limit, used int64) BudgetEvaluation {
	if limit <= 0 {
		return BudgetEvaluation{}
	}
	eval := BudgetEvaluation{
		Percent: decimal.NewFromInt(used).DivRound(decimal.NewFromInt(limit), 4).InexactFloat64(),
	}
	var sev Severity
	switch {
	case used >= limit:
		sev = SeverityError
		eval.Severity = &sev
	case used*5 >= limit*4:
		sev = SeverityWarn
		eval.Severity = &sev
	}
	return eval
}

// WarningMessage renders the human-readable warning for a graded budget
func WarningMessage(label string, limit, used int64, severity Severity) string {
	pct := decimal.NewFromInt(used).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(limit)).Round(0)
	if severity == SeverityError {
		return fmt.Sprintf("%s has EXCEEDED budget (%s%%)", label, pct.String())
	}
	return fmt.Sprintf("%s is at %s%% of budget", label, pct.String())
}

type BudgetRepository interface {
	// Find matches (month, category, scope) exactly; a nil scope matches only nil.
	Find(ctx context.Context, month, categoryID string, scopeUserID *string) (*Budget, error)
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	UpdateLimit(ctx context.Context, id int64, limitAmount int64) (*Budget, error)
	// ListByMonth orders by category id, household scope first.
	ListByMonth(ctx context.Context, month string) ([]*Budget, error)
}

type BudgetSnapshotRepository interface {
	Create(ctx context.Context, snapshot *BudgetSnapshot) (*BudgetSnapshot, error)
	// ListByMonth orders newest first.
	ListByMonth(ctx context.Context, month string, limit, offset int) ([]*BudgetSnapshot, error)
	CountByMonth(ctx context.Context, month string) (int64, error)
}
