package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// RateProvider returns the exchange rates of one base currency
type RateProvider interface {
	Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// Conversion is the outcome of converting an amount between currencies
type Conversion struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
	Result int64           `json:"result"`
}

// ConversionService converts foreign amounts into whole units of another currency
type ConversionService struct {
	rates RateProvider
}

// NewConversionService creates a new ConversionService
func NewConversionService(rates RateProvider) *ConversionService {
	return &ConversionService{rates: rates}
}

// Convert multiplies amount by the from->to rate and rounds half away from
// zero. Converting to the same currency uses rate 1 without a lookup.
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	var issues []domain.FieldIssue
	if !amount.IsPositive() {
		issues = append(issues, domain.FieldIssue{Field: "amount", Issue: "amount must be greater than zero"})
	}
	if len(from) != 3 {
		issues = append(issues, domain.FieldIssue{Field: "from", Issue: "currency must be a 3-letter code"})
	}
	if len(to) != 3 {
		issues = append(issues, domain.FieldIssue{Field: "to", Issue: "currency must be a 3-letter code"})
	}
	if len(issues) > 0 {
		return nil, &domain.ValidationError{Message: "Validation failed", Issues: issues}
	}

	conversion := &Conversion{From: from, To: to, Amount: amount, Rate: decimal.NewFromInt(1)}
	if from != to {
		rates, err := s.rates.Latest(ctx, from)
		if err != nil {
			return nil, err
		}
		rate, ok := rates[to]
		if !ok {
			return nil, domain.NewValidationError("to", fmt.Sprintf("Unknown target currency: %s", to))
		}
		conversion.Rate = rate
	}

	conversion.Result = amount.Mul(conversion.Rate).Round(0).IntPart()
	return conversion, nil
}
