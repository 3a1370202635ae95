// Package deploy implements deploy-by-digest: a thin orchestration that
// resolves an agent's current release, runs it through the ledger with a
// deterministic two-event lifecycle, and replays it for a golden digest.
package deploy

import (
	"context"
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/storage"
	"github.com/marcus-qen/aivcs/internal/telemetry"
)

// Result is the outcome of a deploy-by-digest invocation.
type Result struct {
	RunID      domain.RunID
	SpecDigest string
	Summary    domain.ReplaySummary
}

// ByDigest resolves agentName's current release via registry, runs it
// through ledger emitting graph_started/graph_completed at timestamp (or
// now, if zero), and replays the run to produce a golden-comparable
// ReplaySummary. inputs is carried verbatim under the graph_started
// payload's "inputs" key: two invocations with identical (spec digest, inputs, fixed
// timestamp) must produce identical replay digests, and two invocations
// that differ only in inputs must not.
func ByDigest(ctx context.Context, registry storage.ReleaseRegistry, ledger storage.RunLedger, agentName string, inputs map[string]any, timestamp time.Time) (Result, error) {
	release, err := registry.Current(ctx, agentName)
	if err != nil {
		return Result{}, domain.NewStorageError("looking up current release", err)
	}
	if release == nil {
		return Result{}, &domain.ReleaseConflictError{Msg: "no current release for agent '" + agentName + "'"}
	}

	ctx, deploySpan := telemetry.StartDeploySpan(ctx, agentName, release.SpecDigest)
	defer deploySpan.End()

	start := time.Now()
	if timestamp.IsZero() {
		timestamp = start.UTC()
	}

	runID, err := ledger.CreateRun(ctx, release.SpecDigest, domain.RunMetadata{
		AgentName: agentName,
		Tags:      map[string]any{"mode": "deploy_by_digest"},
	})
	if err != nil {
		return Result{}, domain.NewStorageError("creating run", err)
	}

	if inputs == nil {
		inputs = map[string]any{}
	}

	events := []domain.RunEvent{
		{
			Seq:       1,
			Kind:      "graph_started",
			Payload:   map[string]any{"graph_name": agentName, "entry_point": "deploy_by_digest", "inputs": inputs},
			Timestamp: timestamp,
		},
		{
			Seq:       2,
			Kind:      "graph_completed",
			Payload:   map[string]any{"iterations": 0, "duration_ms": 0},
			Timestamp: timestamp,
		},
	}
	for _, event := range events {
		if err := ledger.AppendEvent(ctx, runID, event); err != nil {
			return Result{}, domain.NewStorageError("appending deploy lifecycle event", err)
		}
	}

	if err := ledger.CompleteRun(ctx, runID, domain.RunSummary{TotalEvents: uint64(len(events)), Success: true}); err != nil {
		return Result{}, domain.NewStorageError("completing run", err)
	}

	_, replaySpan := telemetry.StartReplaySpan(ctx, string(runID))
	allEvents, err := ledger.GetEvents(ctx, runID)
	if err != nil {
		replaySpan.End()
		metrics.RecordReplay("error")
		return Result{}, domain.NewStorageError("reading events for replay", err)
	}
	replayDigest, err := domain.ComputeReplayDigest(allEvents)
	if err != nil {
		telemetry.EndReplaySpan(replaySpan, "", false)
		metrics.RecordReplay("error")
		return Result{}, err
	}
	telemetry.EndReplaySpan(replaySpan, replayDigest, true)
	metrics.RecordReplay("match")
	metrics.RecordRunComplete(agentName, time.Since(start))
	metrics.Flush()

	return Result{
		RunID:      runID,
		SpecDigest: release.SpecDigest,
		Summary:    domain.ReplaySummary{RunID: runID, TotalEvents: uint64(len(allEvents)), ReplayDigest: replayDigest},
	}, nil
}
