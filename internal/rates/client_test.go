package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest_Success(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","base_code":"AUD","rates":{"AUD":1,"IDR":10512.34,"USD":0.66}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v6/latest/", time.Second)
	rates, err := client.Latest(context.Background(), "aud")

	require.NoError(t, err)
	assert.Equal(t, "/v6/latest/AUD", gotPath)
	assert.True(t, rates["IDR"].Equal(decimal.RequireFromString("10512.34")))
	assert.Len(t, rates, 3)
}

func TestLatest_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Latest(context.Background(), "XXX")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Contains(t, err.Error(), "unsupported-code")
}

func TestLatest_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Latest(context.Background(), "AUD")

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestLatest_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Latest(context.Background(), "AUD")

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestLatest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 20*time.Millisecond).Latest(context.Background(), "AUD")

	require.Error(t, err)
	var upstream *domain.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}
