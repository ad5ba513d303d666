package risk

import (
	"testing"

	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params() Params {
	return Params{
		MaxTradeUSD:    2000,
		SafetyFraction: 0.95,
		MinOrderUSD:    10,
	}
}

func TestSize_BuyCappedByMaxTrade(t *testing.T) {
	intent, err := Size(model.SignalBuy, "SPY", 50.0, 0, 5000, params())
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, model.SideBuy, intent.Side)
	assert.Equal(t, 2000.0, intent.Notional) // min(5000*0.95, 2000)
	assert.Zero(t, intent.Qty)
	assert.NotEmpty(t, intent.ClientOrderID)
	assert.False(t, intent.Bracket())
}

func TestSize_BuyCappedByCash(t *testing.T) {
	intent, err := Size(model.SignalBuy, "SPY", 50.0, 0, 1000, params())
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, 950.0, intent.Notional) // 1000*0.95 < 2000
}

func TestSize_BuyBelowMinimumIsNothing(t *testing.T) {
	intent, err := Size(model.SignalBuy, "SPY", 50.0, 0, 5, params())
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestSize_BuyOnlyFromFlat(t *testing.T) {
	intent, err := Size(model.SignalBuy, "SPY", 50.0, 3, 5000, params())
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestSize_SellLiquidatesFullQuantity(t *testing.T) {
	intent, err := Size(model.SignalSell, "AAPL", 180.0, 10, 0, params())
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, model.SideSell, intent.Side)
	assert.Equal(t, 10.0, intent.Qty)
	assert.Zero(t, intent.Notional)
	assert.False(t, intent.Bracket(), "closing trades carry no protective legs")
}

func TestSize_SellWithoutPositionIsNothing(t *testing.T) {
	intent, err := Size(model.SignalSell, "AAPL", 180.0, 0, 0, params())
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestSize_HoldAndSkipAreNothing(t *testing.T) {
	for _, sig := range []model.Signal{model.SignalHold, model.SignalSkip} {
		intent, err := Size(sig, "SPY", 50.0, 0, 5000, params())
		require.NoError(t, err)
		assert.Nil(t, intent)
	}
}

func TestSize_BracketLegs(t *testing.T) {
	p := params()
	p.StopLossPct = 0.03
	p.TakeProfitPct = 0.06

	intent, err := Size(model.SignalBuy, "SPY", 50.0, 0, 5000, p)
	require.NoError(t, err)
	require.NotNil(t, intent)

	// Bracket entries are share-sized: floor(2000/50).
	assert.Equal(t, 40.0, intent.Qty)
	assert.Zero(t, intent.Notional)
	assert.Equal(t, 48.5, intent.StopLoss)
	assert.Equal(t, 53.0, intent.TakeProfit)

	// stop < entry < take-profit
	assert.Less(t, intent.StopLoss, 50.0)
	assert.Greater(t, intent.TakeProfit, 50.0)
}

func TestSize_BracketTooSmallForOneShare(t *testing.T) {
	p := params()
	p.StopLossPct = 0.03
	p.MaxTradeUSD = 100

	intent, err := Size(model.SignalBuy, "NVDA", 900.0, 0, 5000, p)
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestSize_NonPositiveClose(t *testing.T) {
	_, err := Size(model.SignalBuy, "SPY", 0, 0, 5000, params())
	require.Error(t, err)
	assert.True(t, boterr.IsDataUnavailable(err))
}
