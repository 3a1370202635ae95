/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metrics defines Prometheus metrics for the aivcs control plane.
//
// All metrics are registered with the controller-runtime default registry
// so they are automatically served on the metrics endpoint.
//
// Metric naming follows Prometheus conventions:
//   - aivcs_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// EventsProcessedTotal counts run-ledger events appended, by kind.
	EventsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_events_processed_total",
			Help: "Total run events appended to the ledger, by event kind.",
		},
		[]string{"kind"},
	)

	// ReplaysExecutedTotal counts replay_run invocations by outcome.
	ReplaysExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_replays_executed_total",
			Help: "Total replay_run invocations, by golden-match outcome.",
		},
		[]string{"outcome"},
	)

	// ForksCreatedTotal counts fork_run invocations by agent.
	ForksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_forks_created_total",
			Help: "Total forked runs created, by agent.",
		},
		[]string{"agent"},
	)

	// RunDurationSeconds is a histogram of completed run wall-clock duration.
	RunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aivcs_run_duration_seconds",
			Help:    "Duration of completed runs in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2400},
		},
		[]string{"agent"},
	)

	// GateBlocksTotal counts actions blocked by a compat/publish/eval gate.
	GateBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_gate_blocks_total",
			Help: "Total actions blocked by a compat, publish, or eval gate.",
		},
		[]string{"gate", "agent"},
	)

	// CheckpointDecisionsTotal counts HITL checkpoint resolutions by outcome.
	CheckpointDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_checkpoint_decisions_total",
			Help: "Total HITL checkpoints resolved, by outcome.",
		},
		[]string{"risk_tier", "outcome"},
	)

	// SandboxDeniesTotal counts sandbox policy denials by role and capability.
	SandboxDeniesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aivcs_sandbox_denies_total",
			Help: "Total tool requests denied by the sandbox policy.",
		},
		[]string{"role", "capability"},
	)

	// ScheduleLagSeconds is the delay between scheduled time and actual start.
	ScheduleLagSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aivcs_schedule_lag_seconds",
			Help: "Seconds between scheduled deploy time and actual trigger.",
		},
		[]string{"agent"},
	)

	// ActiveRuns is the number of currently in-progress runs.
	ActiveRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aivcs_active_runs",
			Help: "Number of runs currently in progress.",
		},
	)
)

func init() {
	ctrlmetrics.Registry.MustRegister(
		EventsProcessedTotal,
		ReplaysExecutedTotal,
		ForksCreatedTotal,
		RunDurationSeconds,
		GateBlocksTotal,
		CheckpointDecisionsTotal,
		SandboxDeniesTotal,
		ScheduleLagSeconds,
		ActiveRuns,
	)
}

// counters holds the process-global atomic counters that back flush()'s
// diagnostic snapshot. These are independent of the Prometheus vectors
// above: they exist for the trace-level/flush diagnostic path fed by this
// package's Record* functions, not for scraping.
type counters struct {
	eventsProcessed atomic.Uint64
	replaysExecuted atomic.Uint64
	forksCreated    atomic.Uint64
}

var globalCounters = &counters{}

// Snapshot is the point-in-time value of the process-global counters, as
// emitted by Flush.
type Snapshot struct {
	EventsProcessed uint64
	ReplaysExecuted uint64
	ForksCreated    uint64
}

// Flush emits a single info-level record containing every current counter
// value. Call at run boundaries (e.g. once per deploy_by_digest
// invocation), never per-event — per-event logging belongs on the
// trace-level span/Record* path, not here.
func Flush() Snapshot {
	snap := Snapshot{
		EventsProcessed: globalCounters.eventsProcessed.Load(),
		ReplaysExecuted: globalCounters.replaysExecuted.Load(),
		ForksCreated:    globalCounters.forksCreated.Load(),
	}
	zap.L().Info("aivcs observability counters",
		zap.Uint64("events_processed", snap.EventsProcessed),
		zap.Uint64("replays_executed", snap.ReplaysExecuted),
		zap.Uint64("forks_created", snap.ForksCreated),
	)
	return snap
}

// Reset zeroes the process-global atomic counters, so a test that asserts
// on Snapshot values can start from zero regardless of earlier tests in
// the same process.
func Reset() {
	globalCounters.eventsProcessed.Store(0)
	globalCounters.replaysExecuted.Store(0)
	globalCounters.forksCreated.Store(0)
}

// RecordEventAppended records a single ledger event append.
func RecordEventAppended(kind string) {
	EventsProcessedTotal.WithLabelValues(kind).Inc()
	globalCounters.eventsProcessed.Add(1)
	zap.L().Debug("event appended", zap.String("kind", kind))
}

// RecordReplay records a replay_run invocation; outcome is "match" or "mismatch".
func RecordReplay(outcome string) {
	ReplaysExecutedTotal.WithLabelValues(outcome).Inc()
	globalCounters.replaysExecuted.Add(1)
	zap.L().Debug("replay executed", zap.String("outcome", outcome))
}

// RecordFork records a single fork_run invocation.
func RecordFork(agent string) {
	ForksCreatedTotal.WithLabelValues(agent).Inc()
	globalCounters.forksCreated.Add(1)
	zap.L().Debug("fork created", zap.String("agent", agent))
}

// RecordRunComplete records the wall-clock duration of a completed run.
func RecordRunComplete(agent string, duration time.Duration) {
	RunDurationSeconds.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordGateBlock records a single gate rejection.
func RecordGateBlock(gate, agent string) {
	GateBlocksTotal.WithLabelValues(gate, agent).Inc()
}

// RecordCheckpointDecision records a resolved HITL checkpoint.
func RecordCheckpointDecision(riskTier, outcome string) {
	CheckpointDecisionsTotal.WithLabelValues(riskTier, outcome).Inc()
}

// RecordSandboxDeny records a single sandbox policy denial.
func RecordSandboxDeny(role, capability string) {
	SandboxDeniesTotal.WithLabelValues(role, capability).Inc()
}

// RecordScheduleLag records the scheduling delay for a deploy trigger.
func RecordScheduleLag(agent string, lag time.Duration) {
	ScheduleLagSeconds.WithLabelValues(agent).Set(lag.Seconds())
}
