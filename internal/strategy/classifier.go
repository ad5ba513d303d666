// Package strategy turns an oscillator reading into a trading decision.
package strategy

import (
	"math"

	"TradeSentry/internal/model"
)

// Thresholds are the mean-reversion trigger levels. They arrive as
// explicit inputs so the classifier stays independently testable.
type Thresholds struct {
	Lower float64
	Upper float64
}

// Classify maps the latest RSI reading to a decision.
// Evaluation order matters: an unavailable RSI is SKIP before any
// threshold comparison is attempted.
func Classify(lastRSI float64, rsiAvailable bool, th Thresholds) model.Signal {
	switch {
	case !rsiAvailable || math.IsNaN(lastRSI):
		return model.SignalSkip
	case lastRSI <= th.Lower:
		return model.SignalBuy
	case lastRSI >= th.Upper:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
