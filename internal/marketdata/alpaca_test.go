package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	boterr "TradeSentry/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(handler http.HandlerFunc) (*AlpacaFetcher, *httptest.Server) {
	srv := httptest.NewServer(handler)
	f := NewAlpacaFetcher(srv.URL, "test-key", "test-secret", "iex", srv.Client())
	return f, srv
}

func TestFetchDailyBars_ParsesAndOrders(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "test-secret", r.Header.Get("APCA-API-SECRET-KEY"))
		assert.Equal(t, "/v2/stocks/SPY/bars", r.URL.Path)
		assert.Equal(t, "1Day", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "iex", r.URL.Query().Get("feed"))

		// Out of order on purpose, plus one null bar.
		w.Write([]byte(`{"bars":[
			{"t":"2025-06-13T04:00:00Z","o":101,"h":102,"l":100,"c":101.5,"v":1200},
			{"t":"2025-06-12T04:00:00Z","o":100,"h":101,"l":99,"c":100.5,"v":1000},
			{"t":"2025-06-14T04:00:00Z","o":0,"h":0,"l":0,"c":0,"v":0}
		],"symbol":"SPY","next_page_token":null}`))
	})
	defer srv.Close()

	bars, err := f.FetchDailyBars(context.Background(), "SPY", 100)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bars must be dropped")
	assert.True(t, bars[0].Time.Before(bars[1].Time), "bars must be ascending")
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 101.5, bars[1].Close)
}

func TestFetchDailyBars_EmptyRangeIsNotAnError(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bars":[],"symbol":"SPY","next_page_token":null}`))
	})
	defer srv.Close()

	bars, err := f.FetchDailyBars(context.Background(), "SPY", 100)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchDailyBars_UnknownSymbol(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"symbol not found"}`, http.StatusNotFound)
	})
	defer srv.Close()

	_, err := f.FetchDailyBars(context.Background(), "NOPE", 100)
	require.Error(t, err)
	assert.True(t, boterr.IsDataUnavailable(err))
}

func TestFetchDailyBars_ServerErrorIsTransport(t *testing.T) {
	f, srv := newTestFetcher(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := f.FetchDailyBars(context.Background(), "SPY", 100)
	require.Error(t, err)
	assert.True(t, boterr.IsTransport(err))
}

func TestFetchDailyBars_ConnectionFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	f := NewAlpacaFetcher(srv.URL, "k", "s", "iex", srv.Client())
	srv.Close() // connection refused from here on

	_, err := f.FetchDailyBars(context.Background(), "SPY", 100)
	require.Error(t, err)
	assert.True(t, boterr.IsTransport(err))
}
