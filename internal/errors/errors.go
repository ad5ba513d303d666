// Package errors defines the error taxonomy shared by the trading
// pipeline. Every per-symbol failure is one of these types so the cycle
// controller can record it without guessing, and so a programming
// defect (InvariantViolation) is never mistaken for environment
// flakiness.
package errors

import (
	"errors"
	"fmt"
)

// ConfigError is fatal and can only occur at startup: missing
// credentials, empty watchlist, nonsensical thresholds. It aborts the
// process before any cycle runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DataUnavailableError means the market data provider has no usable
// bars for a symbol: unknown ticker, no feed entitlement, or fewer bars
// than the indicator needs. The symbol is skipped for this cycle.
type DataUnavailableError struct {
	Symbol string
	Reason string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: data unavailable: %s: %v", e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: data unavailable: %s", e.Symbol, e.Reason)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// TransportError covers timeouts, connection failures, auth failures
// and rate limiting on either external service. Recoverable: the next
// cycle retries naturally.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// OrderRejectedError means the broker understood and refused the order
// (insufficient buying power, invalid symbol, market closed for the
// order type). Never retried within the cycle.
type OrderRejectedError struct {
	Symbol string
	Status int
	Reason string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("%s: order rejected (status %d): %s", e.Symbol, e.Status, e.Reason)
}

// InvariantViolation indicates a programming defect, e.g. a second
// submission attempt for the same symbol within one cycle. It must fail
// loudly and is surfaced distinctly from external errors.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Msg
}

func IsConfig(err error) bool {
	var t *ConfigError
	return errors.As(err, &t)
}

func IsDataUnavailable(err error) bool {
	var t *DataUnavailableError
	return errors.As(err, &t)
}

func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

func IsOrderRejected(err error) bool {
	var t *OrderRejectedError
	return errors.As(err, &t)
}

func IsInvariant(err error) bool {
	var t *InvariantViolation
	return errors.As(err, &t)
}

// Kind returns a short stable label for metrics and persistence.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsConfig(err):
		return "config"
	case IsDataUnavailable(err):
		return "data_unavailable"
	case IsTransport(err):
		return "transport"
	case IsOrderRejected(err):
		return "order_rejected"
	case IsInvariant(err):
		return "invariant"
	default:
		return "unknown"
	}
}
