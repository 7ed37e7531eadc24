package postgres

import (
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransactionWhere_Empty(t *testing.T) {
	where, args := transactionWhere(domain.TransactionFilter{})

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestTransactionWhere_NumbersPlaceholdersInOrder(t *testing.T) {
	posted := domain.TransactionStatusPosted
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	account := "bca"

	where, args := transactionWhere(domain.TransactionFilter{
		Status:      &posted,
		From:        &from,
		To:          &to,
		CategoryIDs: []string{"food", "groceries"},
		AccountID:   &account,
		Search:      "50%_off",
	})

	assert.Equal(t, " WHERE status = $1 AND effective_at >= $2 AND effective_at < $3 AND category_id = ANY($4)"+
		" AND (from_account_id = $5 OR to_account_id = $5)"+
		" AND (description ILIKE $6 OR merchant ILIKE $6 OR note ILIKE $6)", where)
	assert.Equal(t, []any{"posted", from, to, []string{"food", "groceries"}, "bca", `%50\%\_off%`}, args)
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"kopi":      "kopi",
		"100%":      `100\%`,
		"a_b":       `a\_b`,
		`back\side`: `back\\side`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
