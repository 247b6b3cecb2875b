package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
type Metrics struct {
	meter metric.Meter

	// Decision metrics
	DecisionsTotal   metric.Int64Counter
	DecisionDuration metric.Float64Histogram

	// Archive metrics
	MessagesArchivedTotal metric.Int64Counter
	TombstonesTotal       metric.Int64Counter

	// Reconciliation metrics
	ReconcileRunsTotal     metric.Int64Counter
	ReconcileInsertedTotal metric.Int64Counter
	ReconcileDuration      metric.Float64Histogram

	// Settings metrics
	SettingsReloadsTotal metric.Int64Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.DecisionsTotal, err = meter.Int64Counter(
		"retention.decisions.total",
		metric.WithDescription("Total number of retention decisions, by rule and outcome"),
		metric.WithUnit("{decisions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decisions_total: %w", err)
	}

	m.DecisionDuration, err = meter.Float64Histogram(
		"retention.decision.duration",
		metric.WithDescription("Retention decision duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decision_duration: %w", err)
	}

	m.MessagesArchivedTotal, err = meter.Int64Counter(
		"archive.messages.total",
		metric.WithDescription("Total number of message bodies archived"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages_archived_total: %w", err)
	}

	m.TombstonesTotal, err = meter.Int64Counter(
		"archive.tombstones.total",
		metric.WithDescription("Total number of ids recorded without a retained body"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tombstones_total: %w", err)
	}

	m.ReconcileRunsTotal, err = meter.Int64Counter(
		"reconcile.runs.total",
		metric.WithDescription("Total number of history reconciliation passes"),
		metric.WithUnit("{runs}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconcile_runs_total: %w", err)
	}

	m.ReconcileInsertedTotal, err = meter.Int64Counter(
		"reconcile.inserted.total",
		metric.WithDescription("Total number of deleted messages spliced into history pages"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconcile_inserted_total: %w", err)
	}

	m.ReconcileDuration, err = meter.Float64Histogram(
		"reconcile.duration",
		metric.WithDescription("History reconciliation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconcile_duration: %w", err)
	}

	m.SettingsReloadsTotal, err = meter.Int64Counter(
		"settings.reloads.total",
		metric.WithDescription("Total number of settings file reloads"),
		metric.WithUnit("{reloads}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating settings_reloads_total: %w", err)
	}

	return m, nil
}

// RecordDecision counts one evaluator decision.
func (m *Metrics) RecordDecision(ctx context.Context, rule string, ignored bool) {
	outcome := "kept"
	if ignored {
		outcome = "ignored"
	}
	m.DecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rule", rule),
		attribute.String("outcome", outcome),
	))
}

// RecordReconcile counts one reconciliation pass.
func (m *Metrics) RecordReconcile(ctx context.Context, inserted int, seconds float64) {
	m.ReconcileRunsTotal.Add(ctx, 1)
	if inserted > 0 {
		m.ReconcileInsertedTotal.Add(ctx, int64(inserted))
	}
	m.ReconcileDuration.Record(ctx, seconds)
}
