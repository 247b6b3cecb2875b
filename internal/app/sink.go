package app

import (
	"context"
	"log/slog"

	"github.com/chatvault/chatvault/internal/infrastructure/observability"
)

// DecisionSink logs every retention decision and feeds the decision
// counters. Implements retention.DecisionSink.
type DecisionSink struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDecisionSink creates a decision sink. metrics may be nil.
func NewDecisionSink(logger *slog.Logger, metrics *observability.Metrics) *DecisionSink {
	return &DecisionSink{logger: logger, metrics: metrics}
}

// Decision records one evaluator decision.
func (s *DecisionSink) Decision(rule string, ignore bool, keysAndValues ...any) {
	args := append([]any{"rule", rule, "ignore", ignore}, keysAndValues...)
	s.logger.Debug("retention decision", args...)

	if s.metrics != nil {
		s.metrics.RecordDecision(context.Background(), rule, ignore)
	}
}
