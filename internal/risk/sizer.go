// Package risk turns a decision into a bounded order, or into nothing.
// It owns every dollar that leaves the account: per-trade cap, cash
// ceiling, minimum viable order, and protective bracket legs.
package risk

import (
	"fmt"
	"math"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"

	"github.com/google/uuid"
)

// Params bound a single trade.
type Params struct {
	MaxTradeUSD    float64
	SafetyFraction float64 // fraction of cash ever deployed in one order
	MinOrderUSD    float64 // below this the trade is not worth transacting
	StopLossPct    float64 // 0 disables the stop leg
	TakeProfitPct  float64 // 0 disables the take-profit leg
}

// Brackets reports whether entries carry protective exit legs.
func (p Params) Brackets() bool {
	return p.StopLossPct > 0 || p.TakeProfitPct > 0
}

// Size builds at most one order intent for the signal. A nil intent
// with a nil error means "nothing to do" (HOLD, SKIP, or an entry too
// small to transact).
//
// Entries are notional-sized, unless bracket legs are configured, in
// which case the intent is converted to whole shares (the broker only
// accepts quantity-sized bracket orders). Exits always liquidate the
// full current quantity and carry no legs.
func Size(signal model.Signal, symbol string, lastClose, currentQty, cashAvailable float64, p Params) (*model.OrderIntent, error) {
	switch signal {
	case model.SignalSell:
		if currentQty <= 0 {
			return nil, nil
		}
		return &model.OrderIntent{
			Symbol:        symbol,
			Side:          model.SideSell,
			Qty:           currentQty,
			ClientOrderID: uuid.NewString(),
		}, nil

	case model.SignalBuy:
		if currentQty != 0 {
			// Entries only from flat; adding to a position is never sized.
			return nil, nil
		}
		if lastClose <= 0 {
			return nil, &boterr.DataUnavailableError{Symbol: symbol, Reason: "non-positive close"}
		}
		notional := math.Min(cashAvailable*p.SafetyFraction, p.MaxTradeUSD)
		if notional < p.MinOrderUSD {
			return nil, nil
		}

		intent := &model.OrderIntent{
			Symbol:        symbol,
			Side:          model.SideBuy,
			Notional:      round2(notional),
			ClientOrderID: uuid.NewString(),
		}
		if p.Brackets() {
			qty := math.Floor(notional / lastClose)
			if qty < 1 {
				return nil, nil
			}
			intent.Notional = 0
			intent.Qty = qty
			if p.StopLossPct > 0 {
				intent.StopLoss = round2(lastClose * (1 - p.StopLossPct))
			}
			if p.TakeProfitPct > 0 {
				intent.TakeProfit = round2(lastClose * (1 + p.TakeProfitPct))
			}
			if err := checkBracket(intent, lastClose); err != nil {
				return nil, err
			}
		}
		return intent, nil

	default:
		return nil, nil
	}
}

// checkBracket enforces stop < entry < take-profit for long entries.
func checkBracket(intent *model.OrderIntent, entry float64) error {
	if intent.StopLoss > 0 && intent.StopLoss >= entry {
		return &boterr.InvariantViolation{
			Msg: fmt.Sprintf("%s: stop %.2f not below entry %.2f", intent.Symbol, intent.StopLoss, entry),
		}
	}
	if intent.TakeProfit > 0 && intent.TakeProfit <= entry {
		return &boterr.InvariantViolation{
			Msg: fmt.Sprintf("%s: take-profit %.2f not above entry %.2f", intent.Symbol, intent.TakeProfit, entry),
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
