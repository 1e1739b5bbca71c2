// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/metislabs/metis/pkg/errors"
)

// OrchestrationMetrics tracks task, skill, and error rates for production
// monitoring. A nil receiver is a no-op so callers never guard.
type OrchestrationMetrics struct {
	taskCounter   metric.Int64Counter
	skillCounter  metric.Int64Counter
	skillDuration metric.Float64Histogram
	loadGauge     metric.Float64Gauge
	errorCounter  metric.Int64Counter
}

// NewOrchestrationMetrics creates the orchestration metrics instruments.
func NewOrchestrationMetrics() (*OrchestrationMetrics, error) {
	meter := otel.Meter("metis/orchestrator")

	taskCounter, err := meter.Int64Counter(
		"metis.tasks.total",
		metric.WithDescription("Completed orchestrations by category and status"),
	)
	if err != nil {
		return nil, err
	}

	skillCounter, err := meter.Int64Counter(
		"metis.skills.executions",
		metric.WithDescription("Skill executions by skill id and outcome"),
	)
	if err != nil {
		return nil, err
	}

	skillDuration, err := meter.Float64Histogram(
		"metis.skills.duration_ms",
		metric.WithDescription("Skill execution duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	loadGauge, err := meter.Float64Gauge(
		"metis.cognitive_load",
		metric.WithDescription("Estimated cognitive load of the active task"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"metis.errors.total",
		metric.WithDescription("Structural and internal errors by code"),
	)
	if err != nil {
		return nil, err
	}

	return &OrchestrationMetrics{
		taskCounter:   taskCounter,
		skillCounter:  skillCounter,
		skillDuration: skillDuration,
		loadGauge:     loadGauge,
		errorCounter:  errorCounter,
	}, nil
}

// RecordTask counts one completed orchestration.
func (m *OrchestrationMetrics) RecordTask(ctx context.Context, category, status string) {
	if m == nil {
		return
	}
	m.taskCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("category", category),
			attribute.String("status", status),
		),
	)
}

// RecordSkill counts one skill execution and its duration.
func (m *OrchestrationMetrics) RecordSkill(ctx context.Context, skillID string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("skill.id", skillID),
		attribute.Bool("success", success),
	)
	m.skillCounter.Add(ctx, 1, attrs)
	m.skillDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordLoad records the estimated cognitive load of the active task.
func (m *OrchestrationMetrics) RecordLoad(ctx context.Context, category string, load float64) {
	if m == nil {
		return
	}
	m.loadGauge.Record(ctx, load,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordError counts an error by code and component.
func (m *OrchestrationMetrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}
	me := errors.AsMetisError(err)
	m.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", string(me.Code)),
			attribute.String("component", component),
			attribute.String("recoverable", me.RecoverableString()),
		),
	)
}
