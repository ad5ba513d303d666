package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesentry_cycles_total",
			Help: "Trading cycles executed, by outcome",
		},
		[]string{"outcome"}, // "run" or "gated"
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradesentry_cycle_duration_seconds",
			Help:    "Wall time of one full watchlist pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesentry_orders_submitted_total",
			Help: "Orders accepted by the broker",
		},
		[]string{"symbol", "side"},
	)

	symbolRSI = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradesentry_symbol_rsi",
			Help: "Last computed RSI per symbol",
		},
		[]string{"symbol"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesentry_errors_total",
			Help: "Per-symbol cycle errors by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(symbolRSI)
	prometheus.MustRegister(errorsTotal)
}

// RecordCycle records one completed cycle's wall time.
func RecordCycle(gated bool, elapsed time.Duration) {
	if gated {
		cyclesTotal.WithLabelValues("gated").Inc()
		return
	}
	cyclesTotal.WithLabelValues("run").Inc()
	cycleDuration.Observe(elapsed.Seconds())
}

// RecordOrder records a broker-accepted order.
func RecordOrder(symbol, side string) {
	ordersTotal.WithLabelValues(symbol, side).Inc()
}

// RecordRSI tracks the latest oscillator value per symbol.
func RecordRSI(symbol string, rsi float64) {
	symbolRSI.WithLabelValues(symbol).Set(rsi)
}

// RecordError counts a classified per-symbol error.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// Serve exposes /metrics on addr until the process exits. Errors are
// logged, not fatal: metrics are observability, never a gate.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("[INFO] metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
