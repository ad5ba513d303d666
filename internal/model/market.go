package model

import "time"

// Bar represents a single daily OHLCV candlestick.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds one symbol's bars for a single cycle, ordered
// ascending by time. It is fetched fresh every cycle and never merged
// across fetches.
type PriceSeries struct {
	Symbol    string
	Bars      []Bar
	FetchedAt time.Time
}

// Closes extracts the closing prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// TrimIncomplete drops trailing bars whose UTC day is not strictly
// before now's UTC day. Signal derivation must only ever see completed
// daily bars.
func (s *PriceSeries) TrimIncomplete(now time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	n := len(s.Bars)
	for n > 0 && !s.Bars[n-1].Time.UTC().Truncate(24*time.Hour).Before(today) {
		n--
	}
	s.Bars = s.Bars[:n]
}

// Position is a snapshot of an open brokerage position. Snapshots are
// read once per cycle and never cached across cycles.
type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
}
