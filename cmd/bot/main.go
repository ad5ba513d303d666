package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"TradeSentry/internal/broker"
	"TradeSentry/internal/config"
	"TradeSentry/internal/engine"
	"TradeSentry/internal/marketdata"
	"TradeSentry/internal/model"
	"TradeSentry/internal/monitoring"
	"TradeSentry/internal/notifier"
	"TradeSentry/internal/recorder"
	"TradeSentry/internal/risk"
	"TradeSentry/internal/scheduler"
	"TradeSentry/internal/strategy"

	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	once := flag.Bool("once", false, "run a single cycle and exit")
	loop := flag.Bool("loop", false, "run cycles continuously until terminated")
	flag.Parse()
	if *once == *loop {
		fmt.Fprintln(os.Stderr, "exactly one of --once or --loop is required")
		os.Exit(2)
	}

	log.Println("[INFO] TradeSentry starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// One HTTP client for both Alpaca surfaces: a single timeout ceiling
	// bounds every external call.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	fetcher := marketdata.NewAlpacaFetcher(cfg.Alpaca.DataBaseURL, cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.Feed, httpClient)
	brk := broker.NewAlpacaBroker(cfg.Alpaca.BaseURL, cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, httpClient)
	log.Printf("[INFO] data source: %s, broker: %s", fetcher.Name(), brk.Name())

	ctrl := engine.NewController(fetcher, brk,
		cfg.Strategy.RSIPeriod, cfg.Strategy.LookbackDays,
		strategy.Thresholds{Lower: cfg.Strategy.RSILower, Upper: cfg.Strategy.RSIUpper},
		risk.Params{
			MaxTradeUSD:    cfg.Risk.MaxTradeUSD,
			SafetyFraction: cfg.Risk.SafetyFraction,
			MinOrderUSD:    cfg.Risk.MinOrderUSD,
			StopLossPct:    cfg.Risk.StopLossPct,
			TakeProfitPct:  cfg.Risk.TakeProfitPct,
		})

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, ctrl, brk, tn, rec, scheduler.Options{
		Watchlist:  cfg.Strategy.Watchlist,
		Interval:   cfg.Interval(),
		CronSpec:   cfg.Schedule.Cron,
		MarketGate: cfg.MarketGateEnabled(),
		FailOpen:   cfg.Schedule.GateFailPolicy == config.GateFailOpen,
	})

	if *once {
		res := sched.RunOnce(ctx)
		printCycleTable(res)
		// Per-symbol errors do not fail a completed single-shot run.
		return
	}

	if cfg.Metrics.ListenAddr != "" {
		go monitoring.Serve(cfg.Metrics.ListenAddr)
	}
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[INFO] %s received, stopping after the current cycle...", sig)
		cancel()
	}()

	if err := sched.RunLoop(ctx); err != nil {
		log.Fatalf("[FATAL] scheduler: %v", err)
	}
	log.Println("[INFO] TradeSentry stopped")
}

func printCycleTable(res *model.CycleResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Symbol", "Close", "RSI", "Pos Qty", "Signal", "Action", "Order", "Error"})
	for _, r := range res.Results {
		orderID, errMsg := "", ""
		if r.Receipt != nil {
			orderID = r.Receipt.OrderID
		}
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		rsi := "n/a"
		if r.RSI > 0 {
			rsi = fmt.Sprintf("%.1f", r.RSI)
		}
		t.AppendRow(table.Row{r.Symbol, fmt.Sprintf("%.2f", r.LastClose), rsi, r.Qty, r.Signal, r.Action, orderID, errMsg})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "orders", res.Orders()})
	t.Render()
}
