// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records synthesis runs, section outcomes, and generation
// calls as Prometheus collectors on a private registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/synthesis-engine/internal/oracle"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const namespace = "synthesis"

// Generation call results.
const (
	ResultSuccess     = "success"
	ResultTimeout     = "timeout"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// Recorder holds the engine's collectors. It is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	SectionsTotal      *prometheus.CounterVec
	GenerationCalls    *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
}

// New returns a Recorder registered on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Synthesis runs by terminal status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "End-to-end synthesis run duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		SectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sections_total",
				Help:      "Planned sections by synthesis outcome",
			},
			[]string{"outcome"},
		),
		GenerationCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_calls_total",
				Help:      "Generation capability calls by result",
			},
			[]string{"result"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Generation capability call latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
			},
		),
	}
	r.registry.MustRegister(r.RunsTotal, r.RunDuration, r.SectionsTotal, r.GenerationCalls, r.GenerationDuration)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun counts a finished run.
func (r *Recorder) ObserveRun(status types.DocumentStatus, elapsed time.Duration) {
	r.RunsTotal.WithLabelValues(string(status)).Inc()
	r.RunDuration.Observe(elapsed.Seconds())
}

// ObserveSection counts one planned section by outcome.
func (r *Recorder) ObserveSection(outcome string) {
	r.SectionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration counts one generation call and its latency.
func (r *Recorder) ObserveGeneration(err error, elapsed time.Duration) {
	r.GenerationCalls.WithLabelValues(Result(err)).Inc()
	r.GenerationDuration.Observe(elapsed.Seconds())
}

// Result classifies a generation call error as a label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	case errors.Is(err, oracle.ErrUnavailable):
		return ResultUnavailable
	default:
		return ResultError
	}
}

// WriteTextfile writes the current metrics to path in the text exposition
// format read by the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
