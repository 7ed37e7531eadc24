package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
)

func TestGetMonthly_Success(t *testing.T) {
	s := newTestServer(t)
	seedExpense(s, "alice", "groceries", "bca", 300000, march(2))
	seedExpense(s, "bob", "coffee", "gopay", 45000, march(5))
	s.store.AddBudget("2026-03", "food", 400000, nil)

	rec := s.do(http.MethodGet, "/api/v1/summary/monthly?month=2026-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary domain.MonthlySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if summary.TotalExpenses != 345000 {
		t.Errorf("Expected total expenses 345000, got %d", summary.TotalExpenses)
	}
	if len(summary.ByParentCategory) != 1 || summary.ByParentCategory[0].CategoryID != "food" {
		t.Errorf("Expected a single food bucket, got %+v", summary.ByParentCategory)
	}
	if len(summary.BudgetStatus) != 1 || len(summary.Warnings) != 1 {
		t.Errorf("Expected the food budget with one warning, got %d budgets and %d warnings", len(summary.BudgetStatus), len(summary.Warnings))
	}
}

func TestGetMonthly_PerUser(t *testing.T) {
	s := newTestServer(t)
	seedExpense(s, "alice", "groceries", "bca", 300000, march(2))
	seedExpense(s, "bob", "coffee", "gopay", 45000, march(5))

	rec := s.do(http.MethodGet, "/api/v1/summary/monthly?userId=bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary domain.MonthlySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if summary.Month != "2026-03" {
		t.Errorf("Expected the current month, got %s", summary.Month)
	}
	if summary.TotalExpenses != 45000 {
		t.Errorf("Expected bob's expenses 45000, got %d", summary.TotalExpenses)
	}
}

func TestGetMonthly_InvalidMonth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/summary/monthly?month=2026-13", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestConvert(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/convert?amount=2.5&from=usd", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var conversion service.Conversion
	if err := json.Unmarshal(rec.Body.Bytes(), &conversion); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if conversion.To != "IDR" {
		t.Errorf("Expected default target IDR, got %s", conversion.To)
	}
	if conversion.Result != 40625 {
		t.Errorf("Expected 40625, got %d", conversion.Result)
	}
}

func TestConvert_InvalidInput(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"amount=abc&from=USD", "amount=1&from=USD&to=EUR"} {
		rec := s.do(http.MethodGet, "/api/v1/convert?"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", query, rec.Code)
		}
	}
}
