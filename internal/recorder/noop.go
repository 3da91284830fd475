package recorder

import "DrawdownSentinel/internal/model"

// NoopRecorder is used when history is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *model.Board) []model.Transition { return nil }
func (n *NoopRecorder) History() []CycleRecord                       { return nil }
