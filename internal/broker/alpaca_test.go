package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker(handler http.HandlerFunc) (*AlpacaBroker, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewAlpacaBroker(srv.URL, "test-key", "test-secret", srv.Client()), srv
}

func TestGetOpenPosition(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/positions/AAPL", r.URL.Path)
		w.Write([]byte(`{"symbol":"AAPL","qty":"10","avg_entry_price":"178.25"}`))
	})
	defer srv.Close()

	pos, err := b.GetOpenPosition(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 10.0, pos.Qty)
	assert.Equal(t, 178.25, pos.AvgEntryPrice)
}

func TestGetOpenPosition_NoneIsNotAnError(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":40410000,"message":"position does not exist"}`, http.StatusNotFound)
	})
	defer srv.Close()

	pos, err := b.GetOpenPosition(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestGetCashAvailable(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		w.Write([]byte(`{"cash":"5000.50","status":"ACTIVE"}`))
	})
	defer srv.Close()

	cash, err := b.GetCashAvailable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000.50, cash)
}

func TestIsMarketOpen(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/clock", r.URL.Path)
		w.Write([]byte(`{"is_open":true,"timestamp":"2025-06-16T10:00:00-04:00"}`))
	})
	defer srv.Close()

	open, err := b.IsMarketOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
}

func TestSubmitOrder_Notional(t *testing.T) {
	var got alpacaOrderRequest
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"abc-123","client_order_id":"` + got.ClientOrderID + `","symbol":"SPY","side":"buy","status":"accepted","submitted_at":"2025-06-16T14:30:00Z"}`))
	})
	defer srv.Close()

	receipt, err := b.SubmitOrder(context.Background(), &model.OrderIntent{
		Symbol:        "SPY",
		Side:          model.SideBuy,
		Notional:      2000,
		ClientOrderID: "cid-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", receipt.OrderID)
	assert.Equal(t, "cid-1", receipt.ClientOrderID)

	assert.Equal(t, "2000.00", got.Notional)
	assert.Empty(t, got.Qty)
	assert.Equal(t, "market", got.Type)
	assert.Equal(t, "day", got.TimeInForce)
	assert.Empty(t, got.OrderClass)
}

func TestSubmitOrder_Bracket(t *testing.T) {
	var got alpacaOrderRequest
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"abc-456","symbol":"SPY","side":"buy","status":"accepted"}`))
	})
	defer srv.Close()

	_, err := b.SubmitOrder(context.Background(), &model.OrderIntent{
		Symbol:     "SPY",
		Side:       model.SideBuy,
		Qty:        40,
		StopLoss:   48.5,
		TakeProfit: 53,
	})
	require.NoError(t, err)

	assert.Equal(t, "bracket", got.OrderClass)
	assert.Equal(t, "40", got.Qty)
	require.NotNil(t, got.StopLoss)
	assert.Equal(t, "48.50", got.StopLoss.StopPrice)
	require.NotNil(t, got.TakeProfit)
	assert.Equal(t, "53.00", got.TakeProfit.LimitPrice)
}

func TestSubmitOrder_Rejected(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"insufficient buying power"}`, http.StatusForbidden)
	})
	defer srv.Close()

	_, err := b.SubmitOrder(context.Background(), &model.OrderIntent{
		Symbol: "SPY", Side: model.SideBuy, Notional: 2000,
	})
	require.Error(t, err)
	assert.True(t, boterr.IsOrderRejected(err))
	assert.False(t, boterr.IsTransport(err))
}

func TestSubmitOrder_EmptyIntentIsInvariant(t *testing.T) {
	b, srv := newTestBroker(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("an unsized intent must never reach the wire")
	})
	defer srv.Close()

	_, err := b.SubmitOrder(context.Background(), &model.OrderIntent{Symbol: "SPY", Side: model.SideBuy})
	require.Error(t, err)
	assert.True(t, boterr.IsInvariant(err))
}
