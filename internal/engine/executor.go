package engine

import (
	"context"

	"TradeSentry/internal/broker"
	"TradeSentry/internal/model"
)

// Executor submits order intents, consuming the symbol's submission
// token first so an upstream bug can never double-submit. Failures are
// returned classified and are never retried within the cycle; the next
// scheduled cycle re-evaluates state from scratch.
type Executor struct {
	broker broker.Broker
	guard  *SubmissionGuard
}

// NewExecutor binds a broker to a cycle-scoped guard.
func NewExecutor(b broker.Broker, guard *SubmissionGuard) *Executor {
	return &Executor{broker: b, guard: guard}
}

// Submit sends exactly the given intent and returns the broker receipt.
// Loop cancellation must not abort a submission already on the wire, so
// the broker call is detached from ctx cancellation; the HTTP client's
// timeout still bounds it.
func (e *Executor) Submit(ctx context.Context, intent *model.OrderIntent) (*model.OrderReceipt, error) {
	if err := e.guard.Acquire(intent.Symbol); err != nil {
		return nil, err
	}
	return e.broker.SubmitOrder(context.WithoutCancel(ctx), intent)
}
