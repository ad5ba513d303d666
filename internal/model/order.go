package model

import "time"

// Signal is the decision derived from the oscillator for one symbol.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
	SignalSkip Signal = "SKIP" // RSI unavailable or data insufficient
)

// OrderSide is the side of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderIntent describes exactly one order to submit for one symbol in
// one cycle. Sizing is either notional (USD, entries) or quantity
// (shares, liquidations), never both.
type OrderIntent struct {
	Symbol        string
	Side          OrderSide
	Notional      float64 // > 0 for notional-sized entries
	Qty           float64 // > 0 for quantity-sized exits
	TakeProfit    float64 // bracket limit price, 0 = no leg
	StopLoss      float64 // bracket stop price, 0 = no leg
	ClientOrderID string
}

// Bracket reports whether the intent carries protective exit legs.
func (o *OrderIntent) Bracket() bool {
	return o.TakeProfit > 0 || o.StopLoss > 0
}

// OrderReceipt is the broker's acknowledgement of a submitted order.
type OrderReceipt struct {
	OrderID       string
	ClientOrderID string
	Symbol        string
	Side          OrderSide
	Status        string
	SubmittedAt   time.Time
}
