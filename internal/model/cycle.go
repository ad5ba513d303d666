package model

import "time"

// Action is what the cycle controller ended up doing for one symbol.
type Action string

const (
	ActionBought Action = "BOUGHT"
	ActionSold   Action = "SOLD"
	ActionHeld   Action = "HELD"
	ActionSkip   Action = "SKIPPED"
	ActionError  Action = "ERROR"
)

// SymbolResult is the outcome of processing a single symbol.
type SymbolResult struct {
	Symbol    string
	Action    Action
	Signal    Signal
	RSI       float64 // 0 when unavailable
	LastClose float64
	Qty       float64 // position quantity observed this cycle
	Receipt   *OrderReceipt
	Err       error
}

// CycleResult aggregates one full pass over the watchlist.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Skipped    bool // market-closed gate, no symbol was processed
	Results    []SymbolResult
}

// Errors counts the per-symbol failures in the cycle.
func (c *CycleResult) Errors() int {
	n := 0
	for _, r := range c.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Orders counts the symbols for which an order was actually submitted.
func (c *CycleResult) Orders() int {
	n := 0
	for _, r := range c.Results {
		if r.Receipt != nil {
			n++
		}
	}
	return n
}
