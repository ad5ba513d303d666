package marketdata

import (
	"context"
	"time"

	"TradeSentry/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchDailyBars returns up to limit completed and in-progress daily
	// bars for the symbol, ordered ascending by time. A valid symbol
	// with no bars in range yields an empty slice and a nil error.
	FetchDailyBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.Bar
	Errs map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, limit int) ([]model.Bar, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	bars := m.Bars[symbol]
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// GenerateBars builds count synthetic daily bars ending the day before
// end's UTC day, so the newest bar is already complete.
func GenerateBars(closes []float64, end time.Time) []model.Bar {
	day := end.UTC().Truncate(24 * time.Hour)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:   day.AddDate(0, 0, i-len(closes)),
			Open:   c * 0.999,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}
