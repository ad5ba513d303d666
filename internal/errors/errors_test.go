package errors

import (
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ConfigError{Field: "watchlist", Reason: "empty"}, "config"},
		{&DataUnavailableError{Symbol: "SPY", Reason: "no bars"}, "data_unavailable"},
		{&TransportError{Op: "fetch bars", Err: fmt.Errorf("timeout")}, "transport"},
		{&OrderRejectedError{Symbol: "SPY", Status: 403, Reason: "insufficient buying power"}, "order_rejected"},
		{&InvariantViolation{Msg: "duplicate submission"}, "invariant"},
		{fmt.Errorf("plain"), "unknown"},
	}
	for _, c := range cases {
		if got := Kind(c.err); got != c.want {
			t.Errorf("Kind(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	inner := &DataUnavailableError{Symbol: "QQQ", Reason: "unknown symbol"}
	wrapped := fmt.Errorf("cycle: %w", inner)

	if !IsDataUnavailable(wrapped) {
		t.Error("IsDataUnavailable should match a wrapped error")
	}
	if IsTransport(wrapped) {
		t.Error("IsTransport should not match a DataUnavailableError")
	}

	// TransportError wrapping another error keeps its own identity.
	te := &TransportError{Op: "get clock", Err: fmt.Errorf("connection refused")}
	if !IsTransport(te) || IsDataUnavailable(te) {
		t.Error("TransportError misclassified")
	}
}
