package calculator

import (
	"errors"
	"math"
)

// RSISeries computes the Wilder-smoothed RSI over the given closes.
//
// Smoothing variant: Wilder's exponential smoothing, seeded with a
// simple mean of the first `period` changes and then
// avg = (avg*(period-1) + x) / period for every later bar. This is the
// textbook definition; equivalent to ewm(alpha=1/period).
//
// The result is aligned with the input: same length, with the first
// `period` entries set to NaN because no meaningful average exists yet.
// Callers must treat NaN as "no signal", never as a value.
// Fewer than 2 closes yields an empty result.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < 2 {
		return nil, nil
	}

	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) < period+1 {
		return out, nil
	}

	// Seed: simple mean of the first `period` changes.
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

// LastRSI returns the RSI at the final close. ok is false when the
// series is too short to produce a value there.
func LastRSI(closes []float64, period int) (float64, bool) {
	series, err := RSISeries(closes, period)
	if err != nil || len(series) == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// All-gain window: RSI saturates at 100 rather than dividing by zero.
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
