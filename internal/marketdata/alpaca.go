package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca Data API v2.
type AlpacaFetcher struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Feed      string
	Client    *http.Client
}

// NewAlpacaFetcher creates a data client. The http.Client is shared
// with the broker client so both respect the same timeout ceiling.
func NewAlpacaFetcher(baseURL, apiKey, apiSecret, feed string, client *http.Client) *AlpacaFetcher {
	return &AlpacaFetcher{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Feed:      feed,
		Client:    client,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca:" + f.Feed }

// alpacaBar is one bar in the Data API response.
type alpacaBar struct {
	T time.Time `json:"t"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

type alpacaBarsResponse struct {
	Bars          []alpacaBar `json:"bars"`
	Symbol        string      `json:"symbol"`
	NextPageToken *string     `json:"next_page_token"`
}

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	// Wide enough start window that `limit` daily bars exist even across
	// weekends and holidays; the API caps the result at limit anyway.
	start := time.Now().UTC().AddDate(0, 0, -(limit*2 + 10))
	q := url.Values{}
	q.Set("timeframe", "1Day")
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("feed", f.Feed)
	q.Set("adjustment", "raw")
	q.Set("start", start.Format(time.RFC3339))
	u := fmt.Sprintf("%s/v2/stocks/%s/bars?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &boterr.TransportError{Op: "bars request", Err: err}
	}
	req.Header.Set("APCA-API-KEY-ID", f.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", f.APISecret)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &boterr.TransportError{Op: "fetch bars " + symbol, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &boterr.TransportError{Op: "read bars " + symbol, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		// Unknown symbol or a query the feed cannot serve.
		return nil, &boterr.DataUnavailableError{Symbol: symbol, Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))}
	case resp.StatusCode == http.StatusForbidden:
		// No entitlement for the requested feed/range.
		return nil, &boterr.DataUnavailableError{Symbol: symbol, Reason: "feed not entitled: " + string(body)}
	default:
		// 401, 429, 5xx: environment problems, retried next cycle.
		return nil, &boterr.TransportError{Op: "fetch bars " + symbol, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var parsed alpacaBarsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &boterr.TransportError{Op: "decode bars " + symbol, Err: err}
	}

	bars := make([]model.Bar, 0, len(parsed.Bars))
	for _, b := range parsed.Bars {
		if b.O == 0 && b.H == 0 && b.L == 0 && b.C == 0 {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, model.Bar{
			Time:   b.T,
			Open:   b.O,
			High:   b.H,
			Low:    b.L,
			Close:  b.C,
			Volume: b.V,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}
