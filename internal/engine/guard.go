package engine

import (
	"sync"

	boterr "TradeSentry/internal/errors"
)

// SubmissionGuard enforces at most one order submission per symbol per
// cycle. A fresh guard is created for every cycle; a second acquisition
// for the same symbol is a programming defect, not an environment
// failure, and surfaces as an InvariantViolation.
//
// The mutex keeps the guarantee intact if symbol processing is ever
// moved onto a worker pool.
type SubmissionGuard struct {
	mu   sync.Mutex
	used map[string]bool
}

// NewSubmissionGuard creates an empty guard for one cycle.
func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{used: make(map[string]bool)}
}

// Acquire consumes the symbol's single submission token.
func (g *SubmissionGuard) Acquire(symbol string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used[symbol] {
		return &boterr.InvariantViolation{Msg: "second order submission for " + symbol + " within one cycle"}
	}
	g.used[symbol] = true
	return nil
}
