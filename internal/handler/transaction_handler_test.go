package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/testutil"
)

func TestCreateTransaction_Success(t *testing.T) {
	s := newTestServer(t)

	body := `{"userId": "alice", "transactionType": "expense", "amount": 50000, "categoryId": "groceries",
		"fromAccountId": "cash", "merchant": "Superindo", "paymentMethod": "qris", "effectiveAt": "2026-03-14T10:00:00+07:00"}`
	rec := s.do(http.MethodPost, "/api/v1/transactions", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.TransactionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Transaction.Type != domain.TransactionTypeExpense {
		t.Errorf("Expected type 'expense', got %s", response.Transaction.Type)
	}
	if response.Transaction.Currency != "IDR" {
		t.Errorf("Expected default currency 'IDR', got %s", response.Transaction.Currency)
	}
	if response.Transaction.Status != domain.TransactionStatusPosted {
		t.Errorf("Expected status 'posted', got %s", response.Transaction.Status)
	}
	if len(response.Balances) != 1 || response.Balances[0].AccountID != "cash" {
		t.Fatalf("Expected the cash balance only, got %+v", response.Balances)
	}
	if response.Balances[0].Balance != -50000 {
		t.Errorf("Expected cash balance -50000, got %d", response.Balances[0].Balance)
	}
}

func TestCreateTransaction_NeedsClarification(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/transactions", `{"userId": "alice", "transactionType": "expense", "amount": 50000}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeClarification {
		t.Errorf("Expected type %s, got %s", ErrorTypeClarification, problem.Type)
	}
	if len(problem.Clarifications) != 2 {
		t.Fatalf("Expected 2 clarifications, got %d", len(problem.Clarifications))
	}
	if problem.Clarifications[0].Field != "fromAccountId" || problem.Clarifications[1].Field != "categoryId" {
		t.Errorf("Unexpected clarification fields: %+v", problem.Clarifications)
	}
	if len(s.store.Transactions()) != 0 {
		t.Error("Expected nothing to be written")
	}
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"zero amount", `{"userId": "alice", "transactionType": "expense", "amount": 0, "categoryId": "food", "fromAccountId": "cash"}`, http.StatusBadRequest, "amount"},
		{"unknown type", `{"userId": "alice", "transactionType": "gift", "amount": 10}`, http.StatusBadRequest, "transactionType"},
		{"bad currency", `{"userId": "alice", "transactionType": "income", "amount": 10, "currency": "rupiah", "toAccountId": "cash"}`, http.StatusBadRequest, "currency"},
		{"malformed body", `{"amount": "lots"`, http.StatusBadRequest, ""},
		{"unknown category", `{"userId": "alice", "transactionType": "expense", "amount": 10, "categoryId": "toys", "fromAccountId": "cash"}`, http.StatusNotFound, ""},
		{"unknown user", `{"userId": "carol", "transactionType": "income", "amount": 10, "toAccountId": "cash"}`, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(http.MethodPost, "/api/v1/transactions", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.field == "" {
				return
			}

			var problem ProblemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			found := false
			for _, e := range problem.Errors {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected an error on %s, got %+v", tt.field, problem.Errors)
			}
		})
	}
}

func TestCreateTransaction_RequiresAPIKey(t *testing.T) {
	s := newTestServer(t)

	req := s.do(http.MethodGet, "/api/v1/transactions", "")
	if req.Code != http.StatusOK {
		t.Fatalf("Expected status 200 with a key, got %d", req.Code)
	}

	rec := s.doWithoutKey(http.MethodGet, "/api/v1/transactions")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetTransactions_Filters(t *testing.T) {
	s := newTestServer(t)
	seedExpense(s, "alice", "groceries", "bca", 300000, march(2))
	seedExpense(s, "bob", "coffee", "gopay", 45000, march(5))
	seedExpense(s, "alice", "fuel", "bca", 200000, march(6))
	seedExpense(s, "bob", "groceries", "cash", 88000, testutil.Date(2026, time.April, 1, 0, 30))

	rec := s.do(http.MethodGet, "/api/v1/transactions?month=2026-03&categoryId=food", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page domain.TransactionPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected 2 food transactions in March, got %d", page.Total)
	}
	if len(page.Transactions) != 2 || page.Transactions[0].Amount != 45000 {
		t.Errorf("Expected newest first, got %+v", page.Transactions)
	}
	if page.Limit != domain.DefaultPageSize {
		t.Errorf("Expected default limit %d, got %d", domain.DefaultPageSize, page.Limit)
	}

	rec = s.do(http.MethodGet, "/api/v1/transactions?month=2026-03&userId=alice&limit=1", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if page.Total != 2 || len(page.Transactions) != 1 {
		t.Errorf("Expected 1 of 2 transactions, got %d of %d", len(page.Transactions), page.Total)
	}
}

func TestGetTransactions_InvalidQuery(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"limit=abc", "offset=-x", "type=gift", "status=pending", "month=2026-3"} {
		rec := s.do(http.MethodGet, "/api/v1/transactions?"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", query, rec.Code)
		}
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/transactions/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestVoidTransaction_Twice(t *testing.T) {
	s := newTestServer(t)
	txn := seedExpense(s, "alice", "groceries", "bca", 300000, march(2))

	rec := s.do(http.MethodPost, "/api/v1/transactions/"+txn.ID+"/void", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var voided domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &voided); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if voided.Status != domain.TransactionStatusVoided {
		t.Errorf("Expected status 'voided', got %s", voided.Status)
	}

	rec = s.do(http.MethodPost, "/api/v1/transactions/"+txn.ID+"/void", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeAlreadyVoided {
		t.Errorf("Expected type %s, got %s", ErrorTypeAlreadyVoided, problem.Type)
	}
}

func TestCorrectTransaction_Success(t *testing.T) {
	s := newTestServer(t)
	txn := seedExpense(s, "alice", "groceries", "bca", 300000, march(2))

	body := `{"userId": "alice", "transactionType": "expense", "amount": 30000, "categoryId": "groceries", "fromAccountId": "bca"}`
	rec := s.do(http.MethodPost, "/api/v1/transactions/"+txn.ID+"/correct", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response domain.TransactionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Transaction.CorrectionOf == nil || *response.Transaction.CorrectionOf != txn.ID {
		t.Errorf("Expected correctionOf %s, got %v", txn.ID, response.Transaction.CorrectionOf)
	}

	rec = s.do(http.MethodGet, "/api/v1/transactions/"+txn.ID, "")
	var original domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &original); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if original.Status != domain.TransactionStatusVoided {
		t.Errorf("Expected the original to be voided, got %s", original.Status)
	}
}
