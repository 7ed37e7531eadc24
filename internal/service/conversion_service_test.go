package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (s *stubRates) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	s.calls++
	return s.rates, s.err
}

func TestConvert(t *testing.T) {
	rates := &stubRates{rates: map[string]decimal.Decimal{"IDR": decimal.RequireFromString("16250.5")}}
	svc := NewConversionService(rates)

	got, err := svc.Convert(context.Background(), decimal.RequireFromString("12.5"), "usd", "idr")
	require.NoError(t, err)

	assert.Equal(t, "USD", got.From)
	assert.Equal(t, "IDR", got.To)
	// 12.5 * 16250.5 = 203131.25
	assert.Equal(t, int64(203131), got.Result)
}

func TestConvert_RoundsHalfAwayFromZero(t *testing.T) {
	rates := &stubRates{rates: map[string]decimal.Decimal{"IDR": decimal.RequireFromString("0.5")}}
	svc := NewConversionService(rates)

	got, err := svc.Convert(context.Background(), decimal.NewFromInt(3), "USD", "IDR")
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.Result)
}

func TestConvert_SameCurrencySkipsLookup(t *testing.T) {
	rates := &stubRates{}
	svc := NewConversionService(rates)

	got, err := svc.Convert(context.Background(), decimal.NewFromInt(1500), "IDR", "IDR")
	require.NoError(t, err)

	assert.Equal(t, int64(1500), got.Result)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 0, rates.calls)
}

func TestConvert_Errors(t *testing.T) {
	upstream := &domain.UpstreamError{Op: "fetch rates", Err: errors.New("timeout")}

	tests := []struct {
		name    string
		rates   *stubRates
		amount  decimal.Decimal
		from    string
		to      string
		wantErr error
	}{
		{"zero amount", &stubRates{}, decimal.Zero, "USD", "IDR", domain.ErrInvalidInput},
		{"bad currency", &stubRates{}, decimal.NewFromInt(1), "US", "IDR", domain.ErrInvalidInput},
		{"unknown target", &stubRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}}, decimal.NewFromInt(1), "USD", "IDR", domain.ErrInvalidInput},
		{"provider down", &stubRates{err: upstream}, decimal.NewFromInt(1), "USD", "IDR", domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConversionService(tt.rates)

			_, err := svc.Convert(context.Background(), tt.amount, tt.from, tt.to)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
