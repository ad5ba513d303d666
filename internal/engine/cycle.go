// Package engine runs the trading cycle: fetch history, derive the
// signal, reconcile against broker state, size and submit at most one
// order per symbol.
package engine

import (
	"context"
	"log"
	"time"

	"TradeSentry/internal/broker"
	"TradeSentry/internal/calculator"
	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/marketdata"
	"TradeSentry/internal/model"
	"TradeSentry/internal/risk"
	"TradeSentry/internal/strategy"
)

// Controller orchestrates one cycle across the watchlist. All state is
// cycle-scoped; the controller itself carries only collaborators and
// parameters.
type Controller struct {
	Data       marketdata.Fetcher
	Broker     broker.Broker
	RSIPeriod  int
	Lookback   int
	Thresholds strategy.Thresholds
	Risk       risk.Params

	// Now is the clock used for completed-bar selection; injectable so
	// look-ahead behavior is testable. Defaults to time.Now.
	Now func() time.Time
}

// NewController wires a cycle controller.
func NewController(data marketdata.Fetcher, b broker.Broker, period, lookback int, th strategy.Thresholds, rp risk.Params) *Controller {
	return &Controller{
		Data:       data,
		Broker:     b,
		RSIPeriod:  period,
		Lookback:   lookback,
		Thresholds: th,
		Risk:       rp,
		Now:        time.Now,
	}
}

// RunCycle processes every watchlist symbol sequentially. A failing
// symbol never aborts the rest; cancellation takes effect between
// symbols, never mid-submission.
func (c *Controller) RunCycle(ctx context.Context, watchlist []string) *model.CycleResult {
	cycle := &model.CycleResult{StartedAt: c.Now()}
	exec := NewExecutor(c.Broker, NewSubmissionGuard())

	for _, symbol := range watchlist {
		if ctx.Err() != nil {
			log.Printf("[WARN] cycle cancelled before %s", symbol)
			break
		}
		res := c.ProcessSymbol(ctx, exec, symbol)
		if res.Err != nil {
			log.Printf("[ERROR] %s: %v", symbol, res.Err)
		} else {
			log.Printf("[INFO] %s: close=%.2f rsi=%.1f qty=%g action=%s", symbol, res.LastClose, res.RSI, res.Qty, res.Action)
		}
		cycle.Results = append(cycle.Results, res)
	}

	cycle.FinishedAt = c.Now()
	return cycle
}

// ProcessSymbol runs the per-symbol state machine once. The executor
// carries the cycle's submission guard, so calling this twice for the
// same symbol within one cycle cannot place two orders.
func (c *Controller) ProcessSymbol(ctx context.Context, exec *Executor, symbol string) model.SymbolResult {
	res := model.SymbolResult{Symbol: symbol, Signal: model.SignalSkip, Action: model.ActionSkip}

	// FETCH_BARS
	bars, err := c.Data.FetchDailyBars(ctx, symbol, c.Lookback)
	if err != nil {
		return fail(res, err)
	}
	series := &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: c.Now()}
	series.TrimIncomplete(c.Now())

	closes := series.Closes()
	if len(closes) < c.RSIPeriod+1 {
		// Not enough completed bars for a meaningful oscillator value.
		res.Err = &boterr.DataUnavailableError{Symbol: symbol, Reason: "insufficient bars for RSI"}
		return res
	}
	res.LastClose = closes[len(closes)-1]

	// DERIVE_SIGNAL
	lastRSI, ok := calculator.LastRSI(closes, c.RSIPeriod)
	if ok {
		res.RSI = lastRSI
	}

	pos, err := c.Broker.GetOpenPosition(ctx, symbol)
	if err != nil {
		return fail(res, err)
	}
	if pos != nil {
		res.Qty = pos.Qty
	}

	res.Signal = strategy.Classify(lastRSI, ok, c.Thresholds)
	if res.Signal == model.SignalHold {
		res.Action = model.ActionHeld
		return res
	}
	if res.Signal == model.SignalSkip {
		return res
	}

	// SIZE_ORDER
	var cash float64
	if res.Signal == model.SignalBuy {
		cash, err = c.Broker.GetCashAvailable(ctx)
		if err != nil {
			return fail(res, err)
		}
	}
	intent, err := risk.Size(res.Signal, symbol, res.LastClose, res.Qty, cash, c.Risk)
	if err != nil {
		return fail(res, err)
	}
	if intent == nil {
		// Signal fired but there is nothing actionable: already long on
		// BUY, flat on SELL, or an entry below the minimum order value.
		res.Action = model.ActionHeld
		return res
	}

	// SUBMIT_ORDER
	receipt, err := exec.Submit(ctx, intent)
	if err != nil {
		return fail(res, err)
	}
	res.Receipt = receipt
	if intent.Side == model.SideBuy {
		res.Action = model.ActionBought
	} else {
		res.Action = model.ActionSold
	}
	return res
}

func fail(res model.SymbolResult, err error) model.SymbolResult {
	res.Err = err
	if boterr.IsDataUnavailable(err) {
		res.Action = model.ActionSkip
	} else {
		res.Action = model.ActionError
	}
	return res
}
