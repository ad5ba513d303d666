// Package scheduler drives the cycle controller: once, on a fixed
// interval, or on a cron cadence, with an optional market-open gate.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"TradeSentry/internal/broker"
	"TradeSentry/internal/engine"
	boterr "TradeSentry/internal/errors"
	"TradeSentry/internal/model"
	"TradeSentry/internal/monitoring"
	"TradeSentry/internal/notifier"
	"TradeSentry/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Options configure the scheduler's cadence and gating policy.
type Options struct {
	Watchlist  []string
	Interval   time.Duration
	CronSpec   string // non-empty overrides the fixed interval in loop mode
	MarketGate bool
	// FailOpen: when the market-open check itself errors, true means
	// trade anyway (paper default), false means skip the cycle.
	FailOpen bool
}

// Scheduler runs trading cycles and owns everything around them:
// gating, recording, notification, metrics, and the Telegram commands.
type Scheduler struct {
	Engine   *engine.Controller
	Broker   broker.Broker
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Opts     Options
	Ctx      context.Context

	mu        sync.Mutex
	lastCycle *model.CycleResult
	runNow    chan struct{}
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, eng *engine.Controller, b broker.Broker, tn *notifier.TelegramNotifier, rec recorder.Recorder, opts Options) *Scheduler {
	return &Scheduler{
		Engine:   eng,
		Broker:   b,
		Notifier: tn,
		Recorder: rec,
		Opts:     opts,
		Ctx:      ctx,
		runNow:   make(chan struct{}, 1),
	}
}

// RunOnce executes a single ungated cycle and returns its result. The
// market gate only applies to the continuous loop; an operator running
// --once asked for exactly one evaluation.
func (s *Scheduler) RunOnce(ctx context.Context) *model.CycleResult {
	return s.cycle(ctx, false)
}

// RunLoop runs cycles until ctx is cancelled: immediately, then on
// every tick (or cron firing), plus on-demand /run triggers.
// Cancellation takes effect between cycles.
func (s *Scheduler) RunLoop(ctx context.Context) error {
	if s.Opts.CronSpec != "" {
		return s.runCron(ctx)
	}

	log.Printf("[INFO] loop started, interval %s", s.Opts.Interval)
	s.cycle(ctx, s.Opts.MarketGate)

	ticker := time.NewTicker(s.Opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] loop stopped")
			return nil
		case <-ticker.C:
			s.cycle(ctx, s.Opts.MarketGate)
		case <-s.runNow:
			s.cycle(ctx, s.Opts.MarketGate)
		}
	}
}

// runCron runs cycles on the configured cron expression instead of a
// fixed interval.
func (s *Scheduler) runCron(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.Opts.CronSpec, func() { s.cycle(ctx, s.Opts.MarketGate) }); err != nil {
		return &boterr.ConfigError{Field: "schedule.cron", Reason: err.Error()}
	}
	c.Start()
	log.Printf("[INFO] cron schedule started: %s", s.Opts.CronSpec)

	for {
		select {
		case <-ctx.Done():
			<-c.Stop().Done()
			log.Println("[INFO] cron schedule stopped")
			return nil
		case <-s.runNow:
			s.cycle(ctx, s.Opts.MarketGate)
		}
	}
}

// cycle runs one gated or ungated pass and fans the result out to the
// recorder, notifier, and metrics. Per-symbol errors stay inside the
// result; nothing here ever aborts the loop.
func (s *Scheduler) cycle(ctx context.Context, gated bool) *model.CycleResult {
	if gated && !s.gateAllows(ctx) {
		now := time.Now()
		res := &model.CycleResult{StartedAt: now, FinishedAt: now, Skipped: true}
		log.Println("[INFO] market closed, cycle skipped")
		monitoring.RecordCycle(true, 0)
		s.store(res)
		return res
	}

	res := s.Engine.RunCycle(ctx, s.Opts.Watchlist)
	monitoring.RecordCycle(false, res.FinishedAt.Sub(res.StartedAt))
	for _, r := range res.Results {
		if r.Receipt != nil {
			monitoring.RecordOrder(r.Symbol, string(r.Receipt.Side))
		}
		if r.Err != nil {
			monitoring.RecordError(boterr.Kind(r.Err))
		}
		if r.RSI > 0 {
			monitoring.RecordRSI(r.Symbol, r.RSI)
		}
	}

	if err := s.Recorder.RecordCycle(res); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	if res.Orders() > 0 || res.Errors() > 0 {
		s.trySend(notifier.FormatCycleReport(res))
	}

	log.Printf("[INFO] cycle done: %d symbols, %d orders, %d errors",
		len(res.Results), res.Orders(), res.Errors())
	s.store(res)
	return res
}

// gateAllows consults the broker clock, applying the configured policy
// when the check itself fails.
func (s *Scheduler) gateAllows(ctx context.Context) bool {
	open, err := s.Broker.IsMarketOpen(ctx)
	if err != nil {
		if s.Opts.FailOpen {
			log.Printf("[WARN] market-open check failed, trading anyway (fail-open): %v", err)
			return true
		}
		log.Printf("[WARN] market-open check failed, skipping cycle (fail-closed): %v", err)
		return false
	}
	return open
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		s.mu.Lock()
		last := s.lastCycle
		s.mu.Unlock()
		if last == nil {
			return "No cycle has run yet."
		}
		return notifier.FormatCycleReport(last)
	case "/run":
		select {
		case s.runNow <- struct{}{}:
			return "Cycle triggered."
		default:
			return "A cycle trigger is already pending."
		}
	case "/positions":
		return s.formatPositions()
	default:
		return "Commands:\n• /status – last cycle summary\n• /run – trigger a cycle now\n• /positions – open positions"
	}
}

func (s *Scheduler) formatPositions() string {
	var positions []model.Position
	for _, symbol := range s.Opts.Watchlist {
		pos, err := s.Broker.GetOpenPosition(s.Ctx, symbol)
		if err != nil {
			return fmt.Sprintf("Position query failed: %v", err)
		}
		if pos != nil {
			positions = append(positions, *pos)
		}
	}
	return notifier.FormatPositions(positions)
}

func (s *Scheduler) store(res *model.CycleResult) {
	s.mu.Lock()
	s.lastCycle = res
	s.mu.Unlock()
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
