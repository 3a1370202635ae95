// Package schedule wires a cron-triggered deploy loop on top of
// deploy.ByDigest, for agents that promote on a fixed cadence rather than
// on explicit manual trigger.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marcus-qen/aivcs/internal/deploy"
	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// DeployTrigger runs deploy.ByDigest for one agent on a cron schedule.
type DeployTrigger struct {
	cron      *cron.Cron
	registry  storage.ReleaseRegistry
	ledger    storage.RunLedger
	agentName string
	inputs    map[string]any
	onResult  func(deploy.Result, error)

	mu       sync.Mutex
	schedule cron.Schedule
	expected time.Time
}

// NewDeployTrigger builds a trigger that deploys agentName on the cron
// expression later given to Start, passing inputs to every deploy and
// invoking onResult with the outcome of each run.
func NewDeployTrigger(registry storage.ReleaseRegistry, ledger storage.RunLedger, agentName string, inputs map[string]any, onResult func(deploy.Result, error)) *DeployTrigger {
	return &DeployTrigger{
		cron:      cron.New(),
		registry:  registry,
		ledger:    ledger,
		agentName: agentName,
		inputs:    inputs,
		onResult:  onResult,
	}
}

// Start schedules the deploy job and begins running it in the background.
// Each firing records the delay between its scheduled and actual trigger
// time to metrics.ScheduleLagSeconds.
func (t *DeployTrigger) Start(ctx context.Context, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return err
	}
	now := time.Now()
	t.mu.Lock()
	t.schedule = schedule
	t.expected = schedule.Next(now)
	t.mu.Unlock()

	_, err = t.cron.AddFunc(spec, func() {
		fired := time.Now()
		t.mu.Lock()
		lag := fired.Sub(t.expected)
		t.expected = t.schedule.Next(fired)
		t.mu.Unlock()
		if lag < 0 {
			lag = 0
		}
		metrics.RecordScheduleLag(t.agentName, lag)

		result, err := deploy.ByDigest(ctx, t.registry, t.ledger, t.agentName, t.inputs, time.Now().UTC())
		if t.onResult != nil {
			t.onResult(result, err)
		}
	})
	if err != nil {
		return err
	}
	t.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for any in-flight run to finish.
func (t *DeployTrigger) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}
