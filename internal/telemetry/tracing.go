/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package telemetry configures OpenTelemetry tracing for the aivcs
// control plane.
//
// Custom span attributes use the `aivcs.` prefix.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "aivcs.dev/control-plane"

// Tracer returns the package-level tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InitTraceProvider initialises the OTel trace provider with an OTLP gRPC
// exporter. If endpoint is empty, tracing is disabled (noop provider is
// used). Returns a shutdown function that must be called on application exit.
func InitTraceProvider(ctx context.Context, endpoint string, version string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // TLS configurable via env (OTEL_EXPORTER_OTLP_INSECURE)
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("aivcs-control-plane"),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// --- Span helpers ---

// StartLedgerAppendSpan creates a span around a single run-event append.
func StartLedgerAppendSpan(ctx context.Context, runID, kind string, seq uint64) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "ledger.append",
		trace.WithAttributes(
			attribute.String("aivcs.run_id", runID),
			attribute.String("aivcs.event_kind", kind),
			attribute.Int64("aivcs.seq", int64(seq)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartReplaySpan creates the parent span for a replay_run invocation.
func StartReplaySpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "ledger.replay",
		trace.WithAttributes(attribute.String("aivcs.run_id", runID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndReplaySpan enriches the replay span with the computed digest and
// whether it matched the golden digest on record.
func EndReplaySpan(span trace.Span, digest string, matched bool) {
	span.SetAttributes(
		attribute.String("aivcs.replay_digest", digest),
		attribute.Bool("aivcs.replay_matched", matched),
	)
	span.End()
}

// StartDeploySpan creates the parent span for a deploy_by_digest invocation.
func StartDeploySpan(ctx context.Context, agent, specDigest string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "deploy.by_digest",
		trace.WithAttributes(
			attribute.String("aivcs.agent", agent),
			attribute.String("aivcs.spec_digest", specDigest),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartGateSpan creates a child span for a compat/publish/eval gate evaluation.
func StartGateSpan(ctx context.Context, gate, agent string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "gate.evaluate",
		trace.WithAttributes(
			attribute.String("aivcs.gate", gate),
			attribute.String("aivcs.agent", agent),
		),
	)
}

// EndGateSpan enriches the gate span with its verdict.
func EndGateSpan(span trace.Span, passed bool, violationCount int) {
	span.SetAttributes(
		attribute.Bool("aivcs.gate_passed", passed),
		attribute.Int("aivcs.violation_count", violationCount),
	)
	span.End()
}

// StartSandboxExecSpan creates a child span for a sandboxed tool execution.
func StartSandboxExecSpan(ctx context.Context, tool, role string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "sandbox.execute",
		trace.WithAttributes(
			attribute.String("aivcs.tool", tool),
			attribute.String("aivcs.role", role),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSandboxExecSpan enriches the sandbox span with the execution result.
func EndSandboxExecSpan(span trace.Span, success bool, attempts uint32) {
	span.SetAttributes(
		attribute.Bool("aivcs.success", success),
		attribute.Int("aivcs.attempts", int(attempts)),
	)
	span.End()
}

// StartCheckpointSpan creates a span around a HITL checkpoint evaluation.
func StartCheckpointSpan(ctx context.Context, checkpointID, riskTier string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "hitl.checkpoint",
		trace.WithAttributes(
			attribute.String("aivcs.checkpoint_id", checkpointID),
			attribute.String("aivcs.risk_tier", riskTier),
		),
	)
}

// EndCheckpointSpan enriches the checkpoint span with its outcome.
func EndCheckpointSpan(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("aivcs.outcome", outcome))
	span.End()
}
