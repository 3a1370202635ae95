package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marcus-qen/aivcs/internal/telemetry"
)

// SandboxConfig parameterises execute_with_controls. Tool and Role are
// optional and used only to label the execution span.
type SandboxConfig struct {
	Timeout     time.Duration
	MaxRetries  uint32
	BackoffBase time.Duration
	Tool        string
	Role        string
}

// CircuitBreaker tracks consecutive tool-execution failures and rejects
// calls once threshold is reached, until a subsequent success resets it.
// Safe for concurrent use.
type CircuitBreaker struct {
	mu                  sync.Mutex
	threshold           uint32
	consecutiveFailures uint32
}

// NewCircuitBreaker creates a breaker that opens after threshold
// consecutive failures.
func NewCircuitBreaker(threshold uint32) *CircuitBreaker {
	return &CircuitBreaker{threshold: threshold}
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (b *CircuitBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures >= b.threshold
}

// RecordSuccess resets the consecutive-failure counter.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
}

// RecordFailure increments the consecutive-failure counter.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
}

// ConsecutiveFailures reports the current streak, for diagnostics.
func (b *CircuitBreaker) ConsecutiveFailures() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}

// ToolExecutionResult is the outcome of execute_with_controls.
type ToolExecutionResult struct {
	Success  bool
	Attempts uint32
	Output   any
	Error    string
}

// Executor is the opaque tool invocation wrapped by execute_with_controls.
type Executor func(ctx context.Context) (any, error)

// TimeoutError is returned when an attempt exceeds config.Timeout.
type TimeoutError struct {
	ElapsedMs uint64
	LimitMs   uint64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tool execution timed out after %dms (limit %dms)", e.ElapsedMs, e.LimitMs)
}

// CircuitBreakerOpenError is returned when the breaker rejects a call
// before the executor runs.
type CircuitBreakerOpenError struct {
	ConsecutiveFailures uint32
	Threshold           uint32
}

func (e *CircuitBreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open: %d consecutive failures (threshold %d)", e.ConsecutiveFailures, e.Threshold)
}

// ExecuteWithControls wraps executor with a timeout per attempt, retry
// with exponential backoff, and a shared circuit breaker.
//
// Total attempts equal config.MaxRetries+1. The backoff policy reproduces
// config.BackoffBase * 2^n exactly (no jitter), delegated to
// backoff.ExponentialBackOff.
func ExecuteWithControls(ctx context.Context, config SandboxConfig, breaker *CircuitBreaker, executor Executor) (ToolExecutionResult, error) {
	ctx, span := telemetry.StartSandboxExecSpan(ctx, config.Tool, config.Role)
	defer span.End()

	if breaker.IsOpen() {
		err := &CircuitBreakerOpenError{ConsecutiveFailures: breaker.ConsecutiveFailures(), Threshold: breaker.threshold}
		telemetry.EndSandboxExecSpan(span, false, 0)
		return ToolExecutionResult{}, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = config.BackoffBase
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Reset()

	var lastErr error
	for attempt := uint32(0); attempt <= config.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, config.Timeout)
		start := time.Now()
		output, err := executor(attemptCtx)
		elapsed := time.Since(start)
		cancel()

		if attemptCtx.Err() != nil {
			telemetry.EndSandboxExecSpan(span, false, attempt+1)
			return ToolExecutionResult{}, &TimeoutError{ElapsedMs: uint64(elapsed.Milliseconds()), LimitMs: uint64(config.Timeout.Milliseconds())}
		}

		if err == nil {
			breaker.RecordSuccess()
			telemetry.EndSandboxExecSpan(span, true, attempt+1)
			return ToolExecutionResult{Success: true, Attempts: attempt + 1, Output: output}, nil
		}

		lastErr = err
		if attempt == config.MaxRetries {
			breaker.RecordFailure()
			telemetry.EndSandboxExecSpan(span, false, attempt+1)
			return ToolExecutionResult{Success: false, Attempts: attempt + 1, Error: err.Error()}, nil
		}

		select {
		case <-time.After(policy.NextBackOff()):
		case <-ctx.Done():
			telemetry.EndSandboxExecSpan(span, false, attempt+1)
			return ToolExecutionResult{}, ctx.Err()
		}
	}

	return ToolExecutionResult{}, lastErr
}
