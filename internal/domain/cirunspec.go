package domain

import (
	"time"

	"github.com/google/uuid"
)

// CITrigger identifies what initiated a CI run.
type CITrigger string

const (
	TriggerManual     CITrigger = "manual"
	TriggerPreMerge   CITrigger = "pre_merge"
	TriggerPostCommit CITrigger = "post_commit"
	TriggerScheduled  CITrigger = "scheduled"
)

// CIRunSpecFields are the digest-input fields of a CIRunSpec.
type CIRunSpecFields struct {
	GitSHA         string    `json:"git_sha"`
	Stages         []string  `json:"stages"`
	Trigger        CITrigger `json:"trigger"`
	StageTimeoutMs uint64    `json:"stage_timeout_ms"`
	TotalTimeoutMs uint64    `json:"total_timeout_ms"`
}

// CIRunSpec is the immutable identity of a CI run request.
type CIRunSpec struct {
	RunID          uuid.UUID `json:"run_id"`
	SpecDigest     string    `json:"spec_digest"`
	GitSHA         string    `json:"git_sha"`
	Stages         []string  `json:"stages"`
	Trigger        CITrigger `json:"trigger"`
	StageTimeoutMs uint64    `json:"stage_timeout_ms"`
	TotalTimeoutMs uint64    `json:"total_timeout_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	defaultStageTimeoutMs uint64 = 300_000
	defaultTotalTimeoutMs uint64 = 1_200_000
)

// NewCIRunSpec creates a CIRunSpec, rejecting an empty git_sha or an empty
// stages list.
func NewCIRunSpec(gitSHA string, stages []string, trigger CITrigger) (*CIRunSpec, error) {
	if gitSHA == "" {
		return nil, &InvalidAgentSpecError{Reason: "git_sha cannot be empty"}
	}
	if len(stages) == 0 {
		return nil, &InvalidAgentSpecError{Reason: "stages cannot be empty"}
	}

	fields := CIRunSpecFields{
		GitSHA:         gitSHA,
		Stages:         stages,
		Trigger:        trigger,
		StageTimeoutMs: defaultStageTimeoutMs,
		TotalTimeoutMs: defaultTotalTimeoutMs,
	}

	digest, err := ComputeCIRunSpecDigest(fields)
	if err != nil {
		return nil, err
	}

	return &CIRunSpec{
		RunID:          uuid.New(),
		SpecDigest:     digest,
		GitSHA:         gitSHA,
		Stages:         stages,
		Trigger:        trigger,
		StageTimeoutMs: defaultStageTimeoutMs,
		TotalTimeoutMs: defaultTotalTimeoutMs,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ComputeCIRunSpecDigest computes the canonical digest over a CIRunSpec's
// identity fields.
func ComputeCIRunSpecDigest(fields CIRunSpecFields) (string, error) {
	d, err := CanonicalDigest(fields)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// VerifyDigest recomputes c's spec digest and compares it to the stored one.
func (c *CIRunSpec) VerifyDigest() error {
	computed, err := ComputeCIRunSpecDigest(CIRunSpecFields{
		GitSHA:         c.GitSHA,
		Stages:         c.Stages,
		Trigger:        c.Trigger,
		StageTimeoutMs: c.StageTimeoutMs,
		TotalTimeoutMs: c.TotalTimeoutMs,
	})
	if err != nil {
		return err
	}
	if computed != c.SpecDigest {
		return &DigestMismatchError{Expected: c.SpecDigest, Actual: computed}
	}
	return nil
}
