package recorder

import "TradeSentry/internal/model"

// NoopRecorder discards all records. Used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(*model.CycleResult) error { return nil }

func (n *NoopRecorder) Close() error { return nil }
