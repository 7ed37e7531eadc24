// Package rates fetches exchange rates from an open.er-api.com compatible endpoint.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Client talks to the rate provider. Lookups are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for baseURL (e.g. https://open.er-api.com/v6/latest)
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Result    string                     `json:"result"`
	ErrorType string                     `json:"error-type"`
	BaseCode  string                     `json:"base_code"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Latest returns the rates of base against every known currency. Transport
// failures, non-2xx responses and provider errors come back as
// *domain.UpstreamError.
func (c *Client) Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	const op = "fetch exchange rates"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.ToUpper(base), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("base", base).Msg("Exchange rate request failed")
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Str("base", base).Msg("Exchange rate provider returned an error status")
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Result != "success" {
		errorType := body.ErrorType
		if errorType == "" {
			errorType = "unknown"
		}
		return nil, &domain.UpstreamError{Op: op, Err: fmt.Errorf("exchange rate API error: %s", errorType)}
	}

	log.Debug().Str("base", base).Int("rates", len(body.Rates)).Msg("Fetched exchange rates")
	return body.Rates, nil
}
