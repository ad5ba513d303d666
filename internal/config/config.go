package config

import (
	"fmt"
	"os"
	"time"

	boterr "TradeSentry/internal/errors"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Gate failure policies for the market-open check.
const (
	GateFailOpen   = "open"   // check failed -> trade anyway (paper default)
	GateFailClosed = "closed" // check failed -> skip the cycle
)

// AlpacaConfig holds API credentials and endpoints. The envconfig tags
// match the standard APCA_* variables so credentials never need to live
// in the YAML file.
type AlpacaConfig struct {
	APIKey      string `yaml:"api_key" envconfig:"APCA_API_KEY_ID"`
	APISecret   string `yaml:"api_secret" envconfig:"APCA_API_SECRET_KEY"`
	BaseURL     string `yaml:"base_url" envconfig:"APCA_API_BASE_URL"`
	DataBaseURL string `yaml:"data_base_url" envconfig:"APCA_API_DATA_URL"`
	Feed        string `yaml:"feed" envconfig:"APCA_API_DATA_FEED"`
}

// Config holds all application configuration.
type Config struct {
	Alpaca   AlpacaConfig `yaml:"alpaca"`
	Strategy struct {
		Watchlist    []string `yaml:"watchlist"`
		RSIPeriod    int      `yaml:"rsi_period"`
		RSILower     float64  `yaml:"rsi_lower"`
		RSIUpper     float64  `yaml:"rsi_upper"`
		LookbackDays int      `yaml:"lookback_days"`
	} `yaml:"strategy"`
	Risk struct {
		MaxTradeUSD    float64 `yaml:"max_trade_usd"`
		SafetyFraction float64 `yaml:"safety_fraction"`
		MinOrderUSD    float64 `yaml:"min_order_usd"`
		StopLossPct    float64 `yaml:"stop_loss_pct"`
		TakeProfitPct  float64 `yaml:"take_profit_pct"`
	} `yaml:"risk"`
	Schedule struct {
		IntervalSeconds    int    `yaml:"interval_seconds"`
		Cron               string `yaml:"cron"` // optional, overrides the fixed interval
		MarketGate         *bool  `yaml:"market_gate"`
		GateFailPolicy     string `yaml:"gate_fail_policy"`
		HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
}

// Load reads config from a YAML file, then applies environment
// variables (a .env file is honored when present).
func Load(path string) (*Config, error) {
	// .env is optional; its absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg.Alpaca); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Alpaca.BaseURL == "" {
		c.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Alpaca.DataBaseURL == "" {
		c.Alpaca.DataBaseURL = "https://data.alpaca.markets"
	}
	if c.Alpaca.Feed == "" {
		c.Alpaca.Feed = "iex"
	}
	if len(c.Strategy.Watchlist) == 0 {
		c.Strategy.Watchlist = []string{"SPY", "QQQ", "AAPL", "MSFT"}
	}
	if c.Strategy.RSIPeriod == 0 {
		c.Strategy.RSIPeriod = 14
	}
	if c.Strategy.RSILower == 0 {
		c.Strategy.RSILower = 30
	}
	if c.Strategy.RSIUpper == 0 {
		c.Strategy.RSIUpper = 70
	}
	if c.Strategy.LookbackDays == 0 {
		c.Strategy.LookbackDays = 200
	}
	if c.Risk.MaxTradeUSD == 0 {
		c.Risk.MaxTradeUSD = 2000
	}
	if c.Risk.SafetyFraction == 0 {
		c.Risk.SafetyFraction = 0.95
	}
	if c.Risk.MinOrderUSD == 0 {
		c.Risk.MinOrderUSD = 10
	}
	if c.Risk.StopLossPct == 0 {
		c.Risk.StopLossPct = 0.03
	}
	if c.Risk.TakeProfitPct == 0 {
		c.Risk.TakeProfitPct = 0.06
	}
	if c.Schedule.IntervalSeconds == 0 {
		c.Schedule.IntervalSeconds = 300
	}
	if c.Schedule.MarketGate == nil {
		gate := true
		c.Schedule.MarketGate = &gate
	}
	if c.Schedule.GateFailPolicy == "" {
		c.Schedule.GateFailPolicy = GateFailOpen
	}
	if c.Schedule.HTTPTimeoutSeconds == 0 {
		c.Schedule.HTTPTimeoutSeconds = 30
	}
}

// Validate checks that the configuration can actually start a bot.
// Every failure here is fatal; nothing is retried at cycle level.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" {
		return &boterr.ConfigError{Field: "alpaca.api_key", Reason: "APCA_API_KEY_ID is required"}
	}
	if c.Alpaca.APISecret == "" {
		return &boterr.ConfigError{Field: "alpaca.api_secret", Reason: "APCA_API_SECRET_KEY is required"}
	}
	if c.Alpaca.Feed != "iex" && c.Alpaca.Feed != "sip" {
		return &boterr.ConfigError{Field: "alpaca.feed", Reason: "must be iex or sip"}
	}
	if len(c.Strategy.Watchlist) == 0 {
		return &boterr.ConfigError{Field: "strategy.watchlist", Reason: "must not be empty"}
	}
	for _, sym := range c.Strategy.Watchlist {
		if sym == "" {
			return &boterr.ConfigError{Field: "strategy.watchlist", Reason: "contains an empty symbol"}
		}
	}
	if c.Strategy.RSIPeriod < 2 {
		return &boterr.ConfigError{Field: "strategy.rsi_period", Reason: "must be at least 2"}
	}
	if c.Strategy.RSILower >= c.Strategy.RSIUpper {
		return &boterr.ConfigError{Field: "strategy.rsi_lower", Reason: "must be below rsi_upper"}
	}
	if c.Strategy.LookbackDays < c.Strategy.RSIPeriod+1 {
		return &boterr.ConfigError{Field: "strategy.lookback_days", Reason: "must cover at least rsi_period+1 bars"}
	}
	if c.Risk.MaxTradeUSD <= 0 {
		return &boterr.ConfigError{Field: "risk.max_trade_usd", Reason: "must be positive"}
	}
	if c.Risk.SafetyFraction <= 0 || c.Risk.SafetyFraction > 1 {
		return &boterr.ConfigError{Field: "risk.safety_fraction", Reason: "must be in (0, 1]"}
	}
	if c.Risk.StopLossPct < 0 || c.Risk.StopLossPct >= 1 {
		return &boterr.ConfigError{Field: "risk.stop_loss_pct", Reason: "must be in [0, 1)"}
	}
	if c.Risk.TakeProfitPct < 0 {
		return &boterr.ConfigError{Field: "risk.take_profit_pct", Reason: "must not be negative"}
	}
	if p := c.Schedule.GateFailPolicy; p != GateFailOpen && p != GateFailClosed {
		return &boterr.ConfigError{Field: "schedule.gate_fail_policy", Reason: "must be open or closed"}
	}
	if c.Schedule.IntervalSeconds < 1 {
		return &boterr.ConfigError{Field: "schedule.interval_seconds", Reason: "must be positive"}
	}
	return nil
}

// Interval is the loop cadence.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Schedule.IntervalSeconds) * time.Second
}

// HTTPTimeout bounds every external call.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Schedule.HTTPTimeoutSeconds) * time.Second
}

// MarketGateEnabled reports whether cycles are gated on market hours.
func (c *Config) MarketGateEnabled() bool {
	return c.Schedule.MarketGate != nil && *c.Schedule.MarketGate
}
