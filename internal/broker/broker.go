// Package broker abstracts the brokerage account service behind the
// minimal surface the trading cycle needs: position snapshot, cash,
// market clock, and order submission.
package broker

import (
	"context"

	"TradeSentry/internal/model"
)

// Broker is the brokerage surface consumed by the cycle controller.
type Broker interface {
	Name() string
	// GetOpenPosition returns the open position for the symbol, or
	// (nil, nil) when there is none. That is a normal outcome, not an
	// error.
	GetOpenPosition(ctx context.Context, symbol string) (*model.Position, error)
	GetCashAvailable(ctx context.Context) (float64, error)
	IsMarketOpen(ctx context.Context) (bool, error)
	SubmitOrder(ctx context.Context, intent *model.OrderIntent) (*model.OrderReceipt, error)
}

// MockBroker is an in-memory broker for tests and dry runs.
type MockBroker struct {
	Positions   map[string]*model.Position
	Cash        float64
	MarketOpen  bool
	PositionErr error
	CashErr     error
	ClockErr    error
	SubmitErr   error

	Submitted []model.OrderIntent
}

func (m *MockBroker) Name() string { return "mock" }

func (m *MockBroker) GetOpenPosition(_ context.Context, symbol string) (*model.Position, error) {
	if m.PositionErr != nil {
		return nil, m.PositionErr
	}
	return m.Positions[symbol], nil
}

func (m *MockBroker) GetCashAvailable(context.Context) (float64, error) {
	if m.CashErr != nil {
		return 0, m.CashErr
	}
	return m.Cash, nil
}

func (m *MockBroker) IsMarketOpen(context.Context) (bool, error) {
	if m.ClockErr != nil {
		return false, m.ClockErr
	}
	return m.MarketOpen, nil
}

func (m *MockBroker) SubmitOrder(_ context.Context, intent *model.OrderIntent) (*model.OrderReceipt, error) {
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	m.Submitted = append(m.Submitted, *intent)
	return &model.OrderReceipt{
		OrderID:       "mock-" + intent.Symbol,
		ClientOrderID: intent.ClientOrderID,
		Symbol:        intent.Symbol,
		Side:          intent.Side,
		Status:        "accepted",
	}, nil
}
