// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subflow_engine_requests_total",
		Help: "Engine API requests by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|failure

	engineRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "subflow_engine_request_duration_seconds",
		Help:    "Engine API request latency by operation",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"operation"})

	jobsTriggeredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subflow_jobs_triggered_total",
		Help: "Asynchronous wizard jobs triggered by kind",
	}, []string{"kind"}) // kind=translate|embed

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subflow_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// ObserveEngineRequest records one engine call with its duration.
func ObserveEngineRequest(operation string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	engineRequestsTotal.WithLabelValues(operation, outcome).Inc()
	engineRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncJobTriggered counts one triggered translation or embed job.
func IncJobTriggered(kind string) {
	jobsTriggeredTotal.WithLabelValues(kind).Inc()
}

// IncLogin counts one login attempt.
func IncLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	loginsTotal.WithLabelValues(outcome).Inc()
}
