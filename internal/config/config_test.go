package config

import (
	"os"
	"path/filepath"
	"testing"

	boterr "TradeSentry/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY", "QQQ", "AAPL", "MSFT"}, cfg.Strategy.Watchlist)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
	assert.Equal(t, 30.0, cfg.Strategy.RSILower)
	assert.Equal(t, 70.0, cfg.Strategy.RSIUpper)
	assert.Equal(t, 2000.0, cfg.Risk.MaxTradeUSD)
	assert.Equal(t, 0.95, cfg.Risk.SafetyFraction)
	assert.Equal(t, 0.03, cfg.Risk.StopLossPct)
	assert.Equal(t, 0.06, cfg.Risk.TakeProfitPct)
	assert.Equal(t, "iex", cfg.Alpaca.Feed)
	assert.Equal(t, "https://paper-api.alpaca.markets", cfg.Alpaca.BaseURL)
	assert.Equal(t, GateFailOpen, cfg.Schedule.GateFailPolicy)
	assert.True(t, cfg.MarketGateEnabled())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
strategy:
  watchlist: [SPY]
  rsi_lower: 25
risk:
  max_trade_usd: 500
schedule:
  market_gate: false
`)
	t.Setenv("APCA_API_KEY_ID", "key-from-env")
	t.Setenv("APCA_API_SECRET_KEY", "secret-from-env")
	t.Setenv("APCA_API_DATA_FEED", "sip")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY"}, cfg.Strategy.Watchlist)
	assert.Equal(t, 25.0, cfg.Strategy.RSILower)
	assert.Equal(t, 500.0, cfg.Risk.MaxTradeUSD)
	assert.Equal(t, "key-from-env", cfg.Alpaca.APIKey)
	assert.Equal(t, "sip", cfg.Alpaca.Feed)
	assert.False(t, cfg.MarketGateEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingCredentialsIsFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Alpaca.APIKey = ""
	cfg.Alpaca.APISecret = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, boterr.IsConfig(err))
}

func TestValidate_Rejections(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Alpaca.APIKey = "k"
		cfg.Alpaca.APISecret = "s"
		return cfg
	}

	t.Run("empty watchlist", func(t *testing.T) {
		cfg := base(t)
		cfg.Strategy.Watchlist = nil
		assert.True(t, boterr.IsConfig(cfg.Validate()))
	})
	t.Run("inverted thresholds", func(t *testing.T) {
		cfg := base(t)
		cfg.Strategy.RSILower = 70
		cfg.Strategy.RSIUpper = 30
		assert.True(t, boterr.IsConfig(cfg.Validate()))
	})
	t.Run("lookback below period", func(t *testing.T) {
		cfg := base(t)
		cfg.Strategy.LookbackDays = 10
		assert.True(t, boterr.IsConfig(cfg.Validate()))
	})
	t.Run("bad gate policy", func(t *testing.T) {
		cfg := base(t)
		cfg.Schedule.GateFailPolicy = "maybe"
		assert.True(t, boterr.IsConfig(cfg.Validate()))
	})
	t.Run("stop loss out of range", func(t *testing.T) {
		cfg := base(t)
		cfg.Risk.StopLossPct = 1.5
		assert.True(t, boterr.IsConfig(cfg.Validate()))
	})
}
