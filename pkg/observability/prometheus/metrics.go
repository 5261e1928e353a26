// Package prometheus collects pipeline run metrics and optionally
// exposes them over HTTP.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus metrics, bound to a private
// registry owned by the caller.
type Metrics struct {
	registry *prometheus.Registry

	StageDuration  *prometheus.HistogramVec
	StageFailures  *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
	PublishesTotal *prometheus.CounterVec

	GenerationRetries prometheus.Counter
	RulesAdded        prometheus.Counter
	RecordsArchived   prometheus.Counter
}

// NewMetrics creates a metrics collection on its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": "growthloop"}, registry)

	return &Metrics{
		registry: registry,

		StageDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "growthloop_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		StageFailures: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "growthloop_stage_failures_total",
				Help: "Total pipeline stage failures",
			},
			[]string{"stage", "severity"}, // severity: fatal, nonfatal
		),
		RunsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "growthloop_runs_total",
				Help: "Total pipeline runs",
			},
			[]string{"outcome"}, // outcome: published, aborted, degraded
		),
		PublishesTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "growthloop_publishes_total",
				Help: "Total publish attempts",
			},
			[]string{"outcome", "image_mode"}, // image_mode: generated, organic, none
		),

		GenerationRetries: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "growthloop_generation_retries_total",
				Help: "Total rate-limit retries across generation stages",
			},
		),
		RulesAdded: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "growthloop_rules_added_total",
				Help: "Total style rules persisted from review feedback",
			},
		),
		RecordsArchived: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "growthloop_records_archived_total",
				Help: "Total post records moved to the cold archive",
			},
		),
	}
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordStageFailure records a stage failure with its severity.
func (m *Metrics) RecordStageFailure(stage string, fatal bool) {
	severity := "nonfatal"
	if fatal {
		severity = "fatal"
	}
	m.StageFailures.WithLabelValues(stage, severity).Inc()
}

// RecordPublish records a publish attempt outcome.
func (m *Metrics) RecordPublish(success bool, imageMode string) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.PublishesTotal.WithLabelValues(outcome, imageMode).Inc()
}

// Handler returns an exposition handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
