package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClient_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades/ord-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state":"SUCCESS","trade_no":"trade-7"}`))
	}))
	defer srv.Close()

	trade, err := NewGatewayClient(srv.URL).QueryTrade(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, TradeSuccess, trade.State)
	assert.Equal(t, "trade-7", trade.TradeNo)
}

func TestGatewayClient_UnknownTradeIsPending(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	trade, err := NewGatewayClient(srv.URL).QueryTrade(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, TradePending, trade.State)
}

func TestGatewayClient_ServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewGatewayClient(srv.URL).QueryTrade(context.Background(), "ord-1")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGatewayClient_ConnectionRefusedIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewGatewayClient(srv.URL).QueryTrade(context.Background(), "ord-1")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}
