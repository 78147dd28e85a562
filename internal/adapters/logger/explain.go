package logger

import (
	"fmt"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
)

var _ ports.EventSink = (*ExplainSink)(nil)

// ExplainSink forwards rebuild-reason diagnostics to a Logger.
type ExplainSink struct {
	log ports.Logger
}

// NewExplainSink creates an EventSink backed by the given logger.
func NewExplainSink(log ports.Logger) *ExplainSink {
	return &ExplainSink{log: log}
}

// Explain reports why an action is being re-executed.
func (s *ExplainSink) Explain(action *domain.Action, message string) {
	s.log.Info(fmt.Sprintf("executing %s: %s", action.Describe(), message))
}
