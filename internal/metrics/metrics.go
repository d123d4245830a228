// SPDX-License-Identifier: MPL-2.0

// Package metrics records per-run analysis counters and writes them in the
// Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "topomap"

// Recorder holds the collectors of one run. A nil *Recorder discards
// everything, so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	classesDiscovered *prometheus.CounterVec
	classesClassified *prometheus.CounterVec
	attachments       *prometheus.CounterVec
	diagnostics       *prometheus.CounterVec
	channels          prometheus.Gauge
	runDuration       prometheus.Gauge
	lastRun           prometheus.Gauge
}

// New returns a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classesDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classes_discovered_total",
			Help:      "Classes found in marker subtrees, per service.",
		}, []string{"service"}),
		classesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classes_classified_total",
			Help:      "Classes classified, per service and role.",
		}, []string{"service", "role"}),
		attachments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_total",
			Help:      "Service-to-channel attachments, per role.",
		}, []string{"role"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported, per severity and code.",
		}, []string{"severity", "code"}),
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels",
			Help:      "Channels in the registry of the last run.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last analysis run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last analysis run finished.",
		}),
	}
	r.registry.MustRegister(
		r.classesDiscovered,
		r.classesClassified,
		r.attachments,
		r.diagnostics,
		r.channels,
		r.runDuration,
		r.lastRun,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ClassesDiscovered adds n discovered classes for service.
func (r *Recorder) ClassesDiscovered(service string, n int) {
	if r == nil {
		return
	}
	r.classesDiscovered.WithLabelValues(service).Add(float64(n))
}

// ClassClassified counts one classification.
func (r *Recorder) ClassClassified(service, role string) {
	if r == nil {
		return
	}
	r.classesClassified.WithLabelValues(service, role).Inc()
}

// Attached adds n attachments for role.
func (r *Recorder) Attached(role string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.attachments.WithLabelValues(role).Add(float64(n))
}

// Diagnostic counts one diagnostic.
func (r *Recorder) Diagnostic(severity, code string) {
	if r == nil {
		return
	}
	r.diagnostics.WithLabelValues(severity, code).Inc()
}

// Channels sets the registry size.
func (r *Recorder) Channels(n int) {
	if r == nil {
		return
	}
	r.channels.Set(float64(n))
}

// RunFinished records the run duration and completion time.
func (r *Recorder) RunFinished(started, finished time.Time) {
	if r == nil {
		return
	}
	r.runDuration.Set(finished.Sub(started).Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
