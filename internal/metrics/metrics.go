// Package metrics defines the Prometheus collectors for the fleet manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Reconciliation sweep metrics
	sweepTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "reconciler",
			Name:      "sweep_total",
			Help:      "Total number of per-cloud reconciliation sweeps by result",
		},
		[]string{"cloud", "result"},
	)

	sweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildfleet",
			Subsystem: "reconciler",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of per-cloud reconciliation sweeps in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"cloud"},
	)

	orphansTerminated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "reconciler",
			Name:      "orphans_terminated_total",
			Help:      "Total number of orphaned instances for which a terminate was issued",
		},
		[]string{"cloud"},
	)

	terminateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "reconciler",
			Name:      "terminate_failures_total",
			Help:      "Total number of failed terminate calls during sweeps",
		},
		[]string{"cloud"},
	)

	// Operation tracker metrics
	pendingOperations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "buildfleet",
			Subsystem: "tracker",
			Name:      "pending_operations",
			Help:      "Number of in-flight asynchronous operations by kind",
		},
		[]string{"kind"},
	)

	operationsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "tracker",
			Name:      "operations_completed_total",
			Help:      "Total number of completed asynchronous operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	operationsExpired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "tracker",
			Name:      "operations_expired_total",
			Help:      "Total number of operations dropped after exceeding the max-age policy",
		},
		[]string{"kind"},
	)

	// Allocator metrics
	allocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildfleet",
			Subsystem: "allocator",
			Name:      "allocations_total",
			Help:      "Total number of allocation decisions by config and phase",
		},
		[]string{"config", "phase"},
	)
)

func init() {
	prometheus.MustRegister(
		sweepTotal,
		sweepDuration,
		orphansTerminated,
		terminateFailures,
		pendingOperations,
		operationsCompleted,
		operationsExpired,
		allocationsTotal,
	)
}

// RecordSweep records the outcome and duration of one per-cloud sweep.
func RecordSweep(cloud, result string, seconds float64) {
	sweepTotal.WithLabelValues(cloud, result).Inc()
	sweepDuration.WithLabelValues(cloud).Observe(seconds)
}

// RecordOrphanTerminated records a terminate issued for an orphaned instance.
func RecordOrphanTerminated(cloud string) {
	orphansTerminated.WithLabelValues(cloud).Inc()
}

// RecordTerminateFailure records a failed terminate call during a sweep.
func RecordTerminateFailure(cloud string) {
	terminateFailures.WithLabelValues(cloud).Inc()
}

// SetPendingOperations records the current pending-set size for one kind.
func SetPendingOperations(kind string, n int) {
	pendingOperations.WithLabelValues(kind).Set(float64(n))
}

// RecordOperationCompleted records a completed operation.
func RecordOperationCompleted(kind, outcome string) {
	operationsCompleted.WithLabelValues(kind, outcome).Inc()
}

// RecordOperationExpired records an operation dropped by the max-age policy.
func RecordOperationExpired(kind string) {
	operationsExpired.WithLabelValues(kind).Inc()
}

// RecordAllocation records an allocation decision.
func RecordAllocation(config, phase string) {
	allocationsTotal.WithLabelValues(config, phase).Inc()
}
