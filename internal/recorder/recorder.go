package recorder

import "TradeSentry/internal/model"

// Recorder persists cycle history for later analysis. Recording is
// observability only: failures are logged by callers and never gate or
// abort trading.
type Recorder interface {
	RecordCycle(cycle *model.CycleResult) error
	Close() error
}
