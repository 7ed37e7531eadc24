package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantDetail string
	}{
		{"valid key", "s3cret", http.StatusOK, ""},
		{"missing key", "", http.StatusUnauthorized, "Missing API key"},
		{"wrong key", "guess", http.StatusUnauthorized, "Invalid API key"},
		{"prefix of key", "s3c", http.StatusUnauthorized, "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handlerCalled := false
			handler := func(c echo.Context) error {
				handlerCalled = true
				return c.String(http.StatusOK, "OK")
			}

			if err := APIKeyAuth("s3cret")(handler)(c); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if handlerCalled != (tt.wantStatus == http.StatusOK) {
				t.Errorf("Handler called = %v, want %v", handlerCalled, tt.wantStatus == http.StatusOK)
			}
			if tt.wantDetail == "" {
				return
			}

			var body problemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body.Detail != tt.wantDetail {
				t.Errorf("Expected detail %q, got %q", tt.wantDetail, body.Detail)
			}
			if body.Type != errorTypeUnauthorized {
				t.Errorf("Expected type %q, got %q", errorTypeUnauthorized, body.Type)
			}
		})
	}
}
