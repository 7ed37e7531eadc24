package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBudget_SeverityBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		limit       int64
		used        int64
		wantPercent float64
		wantSev     *Severity
	}{
		{"well under budget", 500000, 100000, 0.2, nil},
		{"just under 80 percent", 10000, 7999, 0.7999, nil},
		{"exactly 80 percent", 500000, 400000, 0.8, sevPtr(SeverityWarn)},
		{"90 percent", 500000, 450000, 0.9, sevPtr(SeverityWarn)},
		{"just under 100 percent", 10000, 9999, 0.9999, sevPtr(SeverityWarn)},
		{"exactly 100 percent", 500000, 500000, 1.0, sevPtr(SeverityError)},
		{"over budget", 500000, 650000, 1.3, sevPtr(SeverityError)},
		{"nothing spent", 500000, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := EvaluateBudget(tt.limit, tt.used)
			assert.InDelta(t, tt.wantPercent, eval.Percent, 1e-9)
			if tt.wantSev == nil {
				assert.Nil(t, eval.Severity)
			} else {
				require.NotNil(t, eval.Severity)
				assert.Equal(t, *tt.wantSev, *eval.Severity)
			}
		})
	}
}

func TestEvaluateBudget_RoundingDoesNotMoveThreshold(t *testing.T) {
	// 0.79999 rounds to 0.8 at 4 decimal places but is still below the warn line
	eval := EvaluateBudget(100000, 79999)

	assert.InDelta(t, 0.8, eval.Percent, 1e-9)
	assert.Nil(t, eval.Severity)
}

func TestEvaluateBudget_ZeroLimit(t *testing.T) {
	eval := EvaluateBudget(0, 1000)

	assert.Equal(t, 0.0, eval.Percent)
	assert.Nil(t, eval.Severity)
}

func TestWarningMessage(t *testing.T) {
	assert.Equal(t, "Food is at 90% of budget", WarningMessage("Food", 500000, 450000, SeverityWarn))
	assert.Equal(t, "Food has EXCEEDED budget (130%)", WarningMessage("Food", 500000, 650000, SeverityError))
}

func TestBudget_SameScope(t *testing.T) {
	household := &Budget{CategoryID: "food"}
	scoped := &Budget{CategoryID: "food", ScopeUserID: strPtr("alice")}

	assert.True(t, household.SameScope(nil))
	assert.False(t, household.SameScope(strPtr("alice")))
	assert.True(t, scoped.SameScope(strPtr("alice")))
	assert.False(t, scoped.SameScope(strPtr("bob")))
	assert.False(t, scoped.SameScope(nil))
}

func TestNewBudgetSnapshotState(t *testing.T) {
	budgets := []*Budget{
		{CategoryID: "food", LimitAmount: 500000},
		{CategoryID: "food", LimitAmount: 200000, ScopeUserID: strPtr("alice")},
	}

	state := NewBudgetSnapshotState(budgets)

	require.Len(t, state, 2)
	assert.Equal(t, BudgetSnapshotEntry{CategoryID: "food", LimitAmount: 500000}, state[0])
	assert.Equal(t, "alice", *state[1].ScopeUserID)
}

func sevPtr(s Severity) *Severity { return &s }
